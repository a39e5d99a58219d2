package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	googleoption "google.golang.org/api/option"
)

// googleProvider calls Gemini through the generative-ai SDK. genai clients
// hold a connection, so one is opened and closed per call under ctx.
type googleProvider struct {
	settings Settings
}

func newGoogleProvider(s Settings) Provider {
	return &googleProvider{settings: s}
}

func (p *googleProvider) clientOptions() []googleoption.ClientOption {
	opts := []googleoption.ClientOption{googleoption.WithAPIKey(p.settings.APIKey)}
	if p.settings.BaseURL != "" {
		opts = append(opts, googleoption.WithEndpoint(p.settings.BaseURL))
	}
	return opts
}

// configure sets the sampling parameters and JSON response mode on m.
func configure(m *genai.GenerativeModel, system string, maxTokens int, temperature float64) {
	m.SystemInstruction = genai.NewUserContent(genai.Text(system))
	m.SetTemperature(float32(temperature))
	if maxTokens > 0 {
		m.SetMaxOutputTokens(int32(maxTokens))
	}
	m.ResponseMIMEType = "application/json"
}

func (p *googleProvider) Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	client, err := genai.NewClient(ctx, p.clientOptions()...)
	if err != nil {
		return "", fmt.Errorf("google: new client: %w", err)
	}
	defer client.Close()

	m := client.GenerativeModel(p.settings.Model)
	configure(m, system, maxTokens, temperature)

	resp, err := m.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("google: generate %s: %w", p.settings.Model, err)
	}
	text := candidateText(resp)
	if text == "" {
		return "", fmt.Errorf("google: %w", ErrEmptyResponse)
	}
	return text, nil
}

// candidateText returns the text parts of the first candidate that has any.
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
