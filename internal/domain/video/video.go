// Package video derives stable signatures, hosted-platform URLs, display URLs
// and analysis ids for submitted swing videos.
package video

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/okian/swingcoach/internal/domain/model"
)

// Defaults for hosted videos.
const (
	DefaultURITemplate = "https://www.youtube.com/watch?v=%s"
	EmbedURLPrefix     = "https://www.youtube.com/embed/"
	hostedPrefix       = "hosted:"
	filePrefix         = "file:"
	analysisIDPrefix   = "swing-"
)

// FileSignature identifies a local file by name, size and modification time.
func FileSignature(f *model.VideoFile) string {
	if f == nil {
		return ""
	}
	return filePrefix + f.Name + ":" + strconv.FormatInt(f.Size, 10) + ":" + strconv.FormatInt(f.ModTime.UnixMilli(), 10)
}

// HostedSignature identifies a hosted video by its platform id.
func HostedSignature(id string) string {
	return hostedPrefix + id
}

// EmbedURL returns the embeddable player URL for a hosted id.
func EmbedURL(id string) string {
	return EmbedURLPrefix + id
}

// Hosted builds LLM-resolvable URIs for hosted videos.
type Hosted struct {
	template string
}

// NewHosted validates template. An empty template selects DefaultURITemplate.
func NewHosted(template string) (*Hosted, error) {
	if template == "" {
		template = DefaultURITemplate
	}
	if strings.Count(template, "%s") != 1 || strings.Count(template, "%") != 1 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTemplate, template)
	}
	return &Hosted{template: template}, nil
}

// URI returns the provider URI for id.
func (h *Hosted) URI(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrEmptyHostedID
	}
	return fmt.Sprintf(h.template, id), nil
}

// Ref returns the video reference attached to analyses of hosted id.
func (h *Hosted) Ref(id string) model.VideoRef {
	return model.VideoRef{
		Kind:      model.VideoHosted,
		Signature: HostedSignature(id),
		HostedID:  id,
		EmbedURL:  EmbedURL(id),
	}
}

// IDGenerator issues opaque analysis ids that increase within a process.
type IDGenerator struct {
	seq atomic.Uint64
	now func() time.Time
}

// NewIDGenerator creates a generator using the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns swing-<unixnano>-<seq>.
func (g *IDGenerator) Next() string {
	n := g.seq.Add(1)
	return analysisIDPrefix + strconv.FormatInt(g.now().UnixNano(), 10) + "-" + strconv.FormatUint(n, 10)
}
