package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// ollamaProvider implements Provider against a local Ollama server using its
// native chat API. No credential is needed.
type ollamaProvider struct {
	client *api.Client
	model  string
}

func newOllamaProvider(s Settings) (Provider, error) {
	// api.NewClient wants the server root, not the OpenAI-compatible /v1 path.
	base := strings.TrimSuffix(strings.TrimSuffix(s.BaseURL, "/"), "/v1")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("llm: parse ollama base url %q: %w", s.BaseURL, err)
	}
	httpClient := &http.Client{Timeout: s.Timeout}
	return &ollamaProvider{client: api.NewClient(u, httpClient), model: s.Model}, nil
}

func (p *ollamaProvider) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
	maxTokens int,
	temperature float64,
) (string, error) {
	stream := false
	options := map[string]interface{}{
		"temperature": temperature,
	}
	if maxTokens > 0 {
		options["num_predict"] = maxTokens
	}
	req := &api.ChatRequest{
		Model: p.model,
		Messages: []api.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream:  &stream,
		Format:  json.RawMessage(`"json"`),
		Options: options,
	}

	var resp api.ChatResponse
	err := p.client.Chat(ctx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama: chat: %w", err)
	}
	if resp.Message.Content == "" {
		return "", fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}
	return resp.Message.Content, nil
}
