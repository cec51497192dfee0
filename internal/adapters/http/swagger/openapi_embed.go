package swagger

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// OpenAPI contains the embedded OpenAPI YAML document.
//
//go:embed openapi.yaml
var OpenAPI []byte

// Info is the subset of the document header the docs page needs.
type Info struct {
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
}

// Document parses the embedded document header and path list.
func Document() (Info, []string, error) {
	var doc struct {
		Info  Info                   `yaml:"info"`
		Paths map[string]interface{} `yaml:"paths"`
	}
	if err := yaml.Unmarshal(OpenAPI, &doc); err != nil {
		return Info{}, nil, fmt.Errorf("%w: %v", ErrServe, err)
	}
	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	return doc.Info, paths, nil
}
