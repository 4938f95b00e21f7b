// Package llm is the boundary to text generation services used by the tutor and
// the lecture pipeline.
package llm

import (
	"context"
)

// Provider generates text from a prompt.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks the provider for JSON and the reply is validated
	// against it before being returned.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
	// Attachments carry binary input such as recorded audio.
	Attachments []Attachment
}

type Attachment struct {
	MIMEType string
	Data     []byte
}

// Schema is a JSON Schema definition with a name used for caching.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Text       string
	Usage      Usage
	Model      string
	StopReason string // "end", "max_tokens"
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel maps a friendly name to a provider model id. Unknown names pass
// through so that full ids can be configured directly.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
