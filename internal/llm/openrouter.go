package llm

import (
	"context"
	"fmt"
	"net/http"

	openaigo "github.com/sashabaranov/go-openai"
)

// openRouterProvider talks to OpenRouter through the go-openai client, which
// accepts an arbitrary base URL and never retries on its own.
type openRouterProvider struct {
	client *openaigo.Client
	model  string
}

func newOpenRouterProvider(s Settings) Provider {
	cfg := openaigo.DefaultConfig(s.APIKey)
	cfg.BaseURL = s.BaseURL
	if s.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: s.Timeout}
	}
	return &openRouterProvider{client: openaigo.NewClientWithConfig(cfg), model: s.Model}
}

func (p *openRouterProvider) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
	maxTokens int,
	temperature float64,
) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: p.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openaigo.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: float32(temperature),
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openrouter: create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openrouter: %w", ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}
