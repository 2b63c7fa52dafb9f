package llm

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/media-digest/internal/config"
	"github.com/nguyentantai21042004/media-digest/internal/logger"
)

// Backend is a pluggable text-completion provider.
type Backend interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// NewBackend builds the provider named in config. An apiKey argument
// overrides the configured credential; callers pass "" to use the
// process-wide default.
func NewBackend(cfg config.LLMConfig, apiKey string, log logger.Logger) (Backend, error) {
	if apiKey == "" {
		apiKey = cfg.APIKey
	}

	switch cfg.Provider {
	case "", "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("no API key configured for text-completion service")
		}
		return NewOpenAIBackend(apiKey, cfg.BaseURL, cfg.Model), nil
	case "gemini":
		keys := cfg.APIKeys
		if len(keys) == 0 && apiKey != "" {
			keys = []string{apiKey}
		}
		if len(keys) == 0 {
			return nil, fmt.Errorf("no API key configured for Gemini")
		}
		return NewGeminiBackend(keys, cfg.Model, log), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
