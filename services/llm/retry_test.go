package llmsvc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

var fastRetry = RetryConfig{
	MaxAttempts: 3,
	InitialWait: time.Millisecond,
	Multiplier:  2,
	MaxWait:     5 * time.Millisecond,
}

func TestRetryProvider_transientErrors(t *testing.T) {
	inner := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Millisecond}},
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)
	p := WithRetry(inner, fastRetry)

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if string(resp.Content) != `{"ok":true}` {
		t.Errorf("content = %s", resp.Content)
	}
	if len(inner.Calls) != 3 {
		t.Errorf("attempts = %d; want 3", len(inner.Calls))
	}
}

func TestRetryProvider_givesUpAfterMaxAttempts(t *testing.T) {
	inner := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Err: &ErrProviderUnavailable{}},
	)
	p := WithRetry(inner, fastRetry)

	_, err := p.Generate(context.Background(), Request{})
	var unavailable *ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v; want ErrProviderUnavailable", err)
	}
	if len(inner.Calls) != 3 {
		t.Errorf("attempts = %d; want 3", len(inner.Calls))
	}
}

func TestRetryProvider_maxTokensIsNotRetried(t *testing.T) {
	inner := NewMockProvider(MockResponse{Err: &ErrMaxTokensExceeded{}})
	p := WithRetry(inner, fastRetry)

	_, err := p.Generate(context.Background(), Request{})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("err = %v; want ErrMaxTokensExceeded", err)
	}
	if len(inner.Calls) != 1 {
		t.Errorf("attempts = %d; want 1", len(inner.Calls))
	}
}

func TestRetryProvider_invalidResponseRetriedOnce(t *testing.T) {
	inner := NewMockProvider(
		MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad json")}},
		MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad json")}},
		MockResponse{Content: json.RawMessage(`{}`)}, // never reached
	)
	p := WithRetry(inner, fastRetry)

	_, err := p.Generate(context.Background(), Request{})
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v; want ErrInvalidResponse", err)
	}
	if len(inner.Calls) != 2 {
		t.Errorf("attempts = %d; want 2", len(inner.Calls))
	}
}

func TestRetryProvider_contextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inner := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	p := WithRetry(inner, fastRetry)

	if _, err := p.Generate(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v; want context.Canceled", err)
	}
}

func TestValidateResponse(t *testing.T) {
	schema := &Schema{
		Name: "test_schema",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"answer": map[string]any{"type": "string"},
			},
			"required": []any{"answer"},
		},
	}

	if err := validateResponse(schema, json.RawMessage(`{"answer":"hi"}`)); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}
	var invalid *ErrInvalidResponse
	if err := validateResponse(schema, json.RawMessage(`{"answer":42}`)); !errors.As(err, &invalid) {
		t.Errorf("wrong type accepted; err = %v", err)
	}
	if err := validateResponse(schema, json.RawMessage(`not json`)); !errors.As(err, &invalid) {
		t.Errorf("malformed JSON accepted; err = %v", err)
	}
	if err := validateResponse(nil, json.RawMessage(`anything`)); err != nil {
		t.Errorf("nil schema should skip validation; err = %v", err)
	}
}
