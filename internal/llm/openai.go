package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// openAIBackend talks to any OpenAI-compatible chat completion
// endpoint (DeepSeek, OpenAI, local gateways) selected by base URL.
type openAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend creates a backend for an OpenAI-compatible service.
func NewOpenAIBackend(apiKey, baseURL, model string) Backend {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &openAIBackend{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (b *openAIBackend) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from completion service")
	}
	return resp.Choices[0].Message.Content, nil
}
