package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/media-digest/internal/logger"
)

// geminiBackend rotates through the supplied API keys, moving to the
// next key on quota errors.
type geminiBackend struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	model      string
	logger     logger.Logger
}

// NewGeminiBackend creates a backend for the Gemini API.
func NewGeminiBackend(apiKeys []string, model string, log logger.Logger) Backend {
	return &geminiBackend{
		apiKeys: apiKeys,
		model:   model,
		logger:  log,
	}
}

func (b *geminiBackend) Complete(ctx context.Context, system, user string) (string, error) {
	prompt := system + "\n\n" + user

	attempts := len(b.apiKeys)
	var lastErr error

	for range attempts {
		key := b.nextKey()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			b.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), nil)
		if err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
				b.logger.Warn(ctx, "Gemini key rate limited, rotating...")
				b.rotateKey()
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text strings.Builder
			for _, part := range result.Candidates[0].Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			return text.String(), nil
		}

		return "", fmt.Errorf("empty response from Gemini")
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (b *geminiBackend) nextKey() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.apiKeys[b.currentKey]
}

func (b *geminiBackend) rotateKey() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentKey = (b.currentKey + 1) % len(b.apiKeys)
}
