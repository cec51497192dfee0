package llm

import (
	"context"
	"errors"
)

var (
	// ErrAPIKeyMissing indicates no provider key is configured.
	ErrAPIKeyMissing = errors.New("llm api key missing")
	// ErrEncoding indicates the video could not be prepared for upload.
	ErrEncoding = errors.New("llm request encoding failed")
	// ErrTimeout indicates the call exceeded its deadline.
	ErrTimeout = errors.New("llm call timed out")
	// ErrTransport indicates the call failed before a usable response arrived.
	ErrTransport = errors.New("llm transport error")
	// ErrSizeRejected indicates the payload was too large for the provider.
	ErrSizeRejected = errors.New("llm payload too large")
	// ErrServer indicates a provider-side failure.
	ErrServer = errors.New("llm server error")
	// ErrEmptyResponse indicates a response without text.
	ErrEmptyResponse = errors.New("llm response empty")
)

// Kind returns the metric and log label for an error produced by Client.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAPIKeyMissing):
		return "api_key_missing"
	case errors.Is(err, ErrEncoding):
		return "encoding"
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrSizeRejected):
		return "size_rejected"
	case errors.Is(err, ErrServer):
		return "server"
	case errors.Is(err, ErrEmptyResponse):
		return "empty_response"
	default:
		return "transport"
	}
}
