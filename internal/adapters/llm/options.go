package llm

// Defaults.
const (
	DefaultModel          = "gemini-2.5-flash"
	DefaultMaxInlineBytes = 20 << 20
	DefaultMIMEType       = "video/mp4"
	jsonMIMEType          = "application/json"
)

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model name.
func WithModel(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.model = name
		}
	}
}

// WithMaxInlineBytes caps the size of inline video uploads.
func WithMaxInlineBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxInline = n
		}
	}
}

// WithJSONResponses asks the provider to return application/json text.
func WithJSONResponses(on bool) Option {
	return func(c *Client) { c.jsonOut = on }
}
