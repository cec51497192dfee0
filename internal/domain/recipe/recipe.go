// Package recipe loads the Swing Recipe knowledge base used to enrich
// metric insights.
package recipe

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyBook is returned when a recipe file defines no entries.
var ErrEmptyBook = errors.New("recipe book has no entries")

//go:embed recipes.yaml
var builtinYAML []byte

// Entry is the reference recipe for one metric.
type Entry struct {
	Metric       string   `yaml:"metric"`
	Summary      string   `yaml:"summary"`
	Checkpoints  []string `yaml:"checkpoints"`
	CommonFaults []string `yaml:"common_faults"`
	Drills       []string `yaml:"drills"`
	FeelCues     []string `yaml:"feel_cues"`
}

type file struct {
	Recipes []Entry `yaml:"recipes"`
}

// Book indexes recipe entries by metric key.
type Book struct {
	entries map[string]Entry
}

// Parse decodes a recipe YAML document.
func Parse(data []byte) (*Book, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse recipe yaml: %w", err)
	}
	b := &Book{entries: make(map[string]Entry, len(f.Recipes))}
	for _, e := range f.Recipes {
		key := strings.TrimSpace(e.Metric)
		if key == "" {
			continue
		}
		e.Metric = key
		b.entries[key] = e
	}
	if len(b.entries) == 0 {
		return nil, ErrEmptyBook
	}
	return b, nil
}

// Load reads a recipe file from disk.
func Load(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	return Parse(data)
}

// Builtin returns the recipe book shipped with the binary.
func Builtin() *Book {
	b, err := Parse(builtinYAML)
	if err != nil {
		panic(fmt.Sprintf("recipe: invalid built-in book: %v", err))
	}
	return b
}

// LoadOrBuiltin loads path when set and falls back to the built-in book.
func LoadOrBuiltin(path string) (*Book, error) {
	if strings.TrimSpace(path) == "" {
		return Builtin(), nil
	}
	return Load(path)
}

// Lookup returns the entry for a metric key.
func (b *Book) Lookup(key string) (Entry, bool) {
	if b == nil {
		return Entry{}, false
	}
	e, ok := b.entries[key]
	return e, ok
}

// Len returns the number of entries.
func (b *Book) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
