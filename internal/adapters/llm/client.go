// Package llm submits swing prompts to Gemini, either with the video inline
// or as a hosted URI.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/pkg/logger"
	"github.com/okian/swingcoach/pkg/metrics"
)

// ContentGenerator is the subset of genai.Models the client uses.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client calls the model and classifies its failures.
type Client struct {
	models    ContentGenerator
	model     string
	maxInline int64
	jsonOut   bool
	log       logger.Logger
}

// New creates a Gemini-backed client.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrAPIKeyMissing
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return NewWithGenerator(gc.Models, opts...), nil
}

// NewWithGenerator wraps an existing generator.
func NewWithGenerator(g ContentGenerator, opts ...Option) *Client {
	c := &Client{
		models:    g,
		model:     DefaultModel,
		maxInline: DefaultMaxInlineBytes,
		log:       logger.Named("llm"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate submits req and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, req model.LLMRequest) (string, error) {
	start := time.Now()
	text, err := c.generate(ctx, req)
	metrics.RecordLLMLatency(req.Op, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordLLMError(Kind(err))
	}
	return text, err
}

func (c *Client) generate(ctx context.Context, req model.LLMRequest) (string, error) {
	parts, err := c.parts(ctx, req)
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(req.Temperature)}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = req.MaxTokens
	}
	if c.jsonOut {
		cfg.ResponseMIMEType = jsonMIMEType
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	resp, err := c.models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	if err != nil {
		return "", classify(ctx, err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *Client) parts(ctx context.Context, req model.LLMRequest) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, 2)
	switch {
	case req.Video != nil:
		v := req.Video
		if len(v.Data) == 0 {
			return nil, fmt.Errorf("%w: %s has no bytes", ErrEncoding, v.Name)
		}
		if int64(len(v.Data)) > c.maxInline {
			c.log.Warn(ctx, "inline video exceeds limit",
				logger.String("file", v.Name), logger.Int("size", len(v.Data)), logger.Int64("limit", c.maxInline))
			return nil, fmt.Errorf("%w: %d bytes", ErrSizeRejected, len(v.Data))
		}
		mime := v.MIMEType
		if mime == "" {
			mime = DefaultMIMEType
		}
		parts = append(parts, genai.NewPartFromBytes(v.Data, mime))
	case req.VideoURI != "":
		parts = append(parts, genai.NewPartFromURI(req.VideoURI, DefaultMIMEType))
	}
	return append(parts, genai.NewPartFromText(req.Prompt)), nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	switch {
	case code == http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w: %w", ErrSizeRejected, err)
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", ErrServer, err)
	default:
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
}
