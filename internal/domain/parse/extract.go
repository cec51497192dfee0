// Package parse turns raw model text into scores and insights.
package parse

import (
	"encoding/json"
	"strings"
)

const fence = "```"

type strategy func(text string) (string, bool)

// strategies run in order; the first candidate that decodes to an object wins.
var strategies = []strategy{whole, fencedBlock, outerBraces} //nolint:gochecknoglobals // fixed pipeline

// Extract finds a JSON object in text.
func Extract(text string) (map[string]json.RawMessage, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	for _, s := range strategies {
		candidate, ok := s(text)
		if !ok {
			continue
		}
		if obj, ok := decodeObject(candidate); ok {
			return obj, true
		}
	}
	return nil, false
}

func decodeObject(s string) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func whole(text string) (string, bool) {
	return text, true
}

// fencedBlock returns the body of the first ``` block, dropping a json label.
func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, fence)
	if start < 0 {
		return "", false
	}
	body := text[start+len(fence):]
	end := strings.Index(body, fence)
	if end < 0 {
		return "", false
	}
	body = strings.TrimLeft(body[:end], " \t")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}
	body = strings.TrimSpace(body)
	return body, body != ""
}

func outerBraces(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
