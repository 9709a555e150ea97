package extract

import (
	"context"
	"fmt"
	"strings"
)

// ProviderConfig selects and configures an LLM backend.
type ProviderConfig struct {
	Provider        string // openai, compat, gemini, anthropic
	BaseURL         string
	APIKey          string
	Model           string
	DisableThinking bool
}

// NewCompleter builds the Completer named by cfg.Provider.
func NewCompleter(ctx context.Context, cfg ProviderConfig) (Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:          cfg.APIKey,
			BaseURL:         cfg.BaseURL,
			Model:           cfg.Model,
			DisableThinking: cfg.DisableThinking,
		}), nil
	case "compat":
		return NewCompatClient(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	case "anthropic":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
