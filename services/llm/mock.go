package llmsvc

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Enqueue appends a canned response.
func (p *MockProvider) Enqueue(r MockResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, r)
}

func (p *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Calls = append(p.Calls, req)

	if len(p.responses) == 0 {
		return &Response{Content: json.RawMessage(`""`), StopReason: "end"}, nil
	}
	r := p.responses[0]
	p.responses = p.responses[1:]

	if r.Err != nil {
		return nil, r.Err
	}
	return &Response{Content: r.Content, Usage: r.Usage, Model: "mock", StopReason: "end"}, nil
}

func (p *MockProvider) ModelID() string { return "mock" }
