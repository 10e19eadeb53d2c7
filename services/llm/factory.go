package llmsvc

import (
	"context"
	"fmt"

	"github.com/pcacademy/backend/core"
)

// NewProvider creates a Provider from configuration, wrapped with retry.
func NewProvider(ctx context.Context, conf core.AIConfig) (Provider, error) {
	var base Provider
	var err error

	switch conf.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(conf.AnthropicAPIKey, conf.Model)
	case "gemini":
		base, err = NewGeminiProvider(ctx, conf.GeminiAPIKey, conf.Model)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", conf.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", conf.Provider, err)
	}

	return WithRetry(base, DefaultRetryConfig), nil
}
