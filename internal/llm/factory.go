package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agenthands/upsampler/internal/config"
)

// NewClient builds the provider client named by cfg, throttled when
// cfg.RequestsPerSecond is set.
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, error) {
	client, err := newProviderClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.RequestsPerSecond > 0 {
		return NewRateLimitedClient(client, cfg.RequestsPerSecond, cfg.Burst), nil
	}
	return client, nil
}

func newProviderClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)

	case "claude", "anthropic":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "ollama":
		// Ollama is served through its OpenAI-compatible endpoint.
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		slog.Debug("using ollama through the OpenAI-compatible API", "base_url", baseURL)

		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama" // ignored by Ollama, required by the client
		}
		return NewOpenAIClient(apiKey, cfg.Model, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
