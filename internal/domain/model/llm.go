package model

import "time"

// LLMRequest is one prompt submission. At most one of Video and VideoURI is set.
type LLMRequest struct {
	Op          string
	Prompt      string
	Video       *VideoFile
	VideoURI    string
	Temperature float32
	MaxTokens   int32
	Timeout     time.Duration
}
