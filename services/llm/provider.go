package llmsvc

import (
	"context"
	"encoding/json"
)

// Provider is the single-shot generative-text contract: prompt in, text (or
// schema-validated JSON) out. No streaming, no conversation state kept here.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt. Sets the model's role and constraints.
	System string

	// Messages is the conversation history; a single user message for the
	// one-shot flows in this app.
	Messages []Message

	// Schema is the JSON Schema the response must conform to. When set, the
	// provider uses its native structured-output mechanism and the response
	// Content is the validated JSON. When nil, Content is raw text.
	Schema *Schema

	MaxTokens int

	// Temperature controls randomness. Range 0.0 - 1.0; 0 when not set.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema (tool name for Anthropic, schema name
	// elsewhere). Kebab-case, e.g. "pc-config-analysis".
	Name string

	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // normalized: "end", "max_tokens", "error"
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Text returns the response content as plain text, unquoting a bare JSON
// string if that is what the provider returned.
func (r *Response) Text() string {
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return s
	}
	return string(r.Content)
}
