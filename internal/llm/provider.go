// Package llm wraps the generation API behind a small provider interface so
// the rest of the system never touches SDK types directly.
package llm

import (
	"context"
	"encoding/json"
)

// Schema describes the JSON shape a structured response must satisfy.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Request is a single generation call.
type Request struct {
	System      string
	Prompt      string
	Schema      *Schema
	MaxTokens   int
	Temperature float32
}

// Usage reports token consumption for a call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Response is the raw structured content returned by the provider, already
// validated against the request schema when one was given.
type Response struct {
	Content json.RawMessage
	Model   string
	Usage   Usage
}

// Provider generates structured content. Implementations must be safe for
// concurrent use.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}
