// Package llm handles generation provider communication and validation of the
// text those providers return.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoCredential is returned by NewProvider when the selected provider
	// needs an API key and none was supplied.
	ErrNoCredential = errors.New("llm: no credential configured")

	// ErrEmptyResponse is returned by Complete when the provider answered
	// without any text content.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// Provider is the interface for generation backends.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

// Settings selects and configures a provider. APIKey is used as given; the
// factory never reads credentials from the environment.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	// Timeout bounds the underlying HTTP client for providers that accept
	// one. Zero means no client-level timeout.
	Timeout time.Duration
}

// Factory builds a Provider from settings.
type Factory func(Settings) (Provider, error)

// NewProvider is the factory for creating providers. It is a package-level
// variable so tests can replace it with a mock without modifying the call site.
// Tests must restore the original value; use t.Cleanup to do so safely.
var NewProvider Factory = defaultNewProvider

// Provider names.
const (
	ProviderGroq       = "groq"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderGoogle     = "google"
	ProviderOllama     = "ollama"
)

type providerInfo struct {
	model         string
	credentialEnv string
	baseURL       string
}

var providers = map[string]providerInfo{
	ProviderGroq:       {model: "llama3-70b-8192", credentialEnv: "GROQ_API_KEY", baseURL: "https://api.groq.com/openai/v1/"},
	ProviderOpenAI:     {model: "gpt-4o-mini", credentialEnv: "OPENAI_API_KEY"},
	ProviderOpenRouter: {model: "meta-llama/llama-3-70b-instruct", credentialEnv: "OPENROUTER_API_KEY", baseURL: "https://openrouter.ai/api/v1"},
	ProviderAnthropic:  {model: "claude-3-5-haiku-latest", credentialEnv: "ANTHROPIC_API_KEY"},
	ProviderGoogle:     {model: "gemini-1.5-flash", credentialEnv: "GOOGLE_API_KEY"},
	ProviderOllama:     {model: "llama3", baseURL: "http://localhost:11434"},
}

// Known reports whether name is a supported provider.
func Known(name string) bool {
	_, ok := providers[normalizeName(name)]
	return ok
}

// Names returns the supported provider names in a stable order.
func Names() []string {
	return []string{ProviderGroq, ProviderOpenAI, ProviderOpenRouter, ProviderAnthropic, ProviderGoogle, ProviderOllama}
}

// DefaultModel returns the model used when Settings.Model is empty.
func DefaultModel(name string) string {
	return providers[normalizeName(name)].model
}

// CredentialEnv returns the conventional environment variable holding the
// API key for the named provider, or "" when the provider needs none.
func CredentialEnv(name string) string {
	return providers[normalizeName(name)].credentialEnv
}

// RequiresCredential reports whether the named provider needs an API key.
func RequiresCredential(name string) bool {
	return CredentialEnv(name) != ""
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ProviderGroq
	}
	return name
}

// resolve fills in defaults for model and base URL and checks the credential.
func (s Settings) resolve() (Settings, error) {
	s.Provider = normalizeName(s.Provider)
	info, ok := providers[s.Provider]
	if !ok {
		return s, fmt.Errorf("llm: unknown provider %q", s.Provider)
	}
	if s.Model == "" {
		s.Model = info.model
	}
	if s.BaseURL == "" {
		s.BaseURL = info.baseURL
	}
	if info.credentialEnv != "" && strings.TrimSpace(s.APIKey) == "" {
		return s, fmt.Errorf("%w for provider %s (set %s)", ErrNoCredential, s.Provider, info.credentialEnv)
	}
	return s, nil
}

// defaultNewProvider dispatches to the appropriate provider implementation.
func defaultNewProvider(s Settings) (Provider, error) {
	s, err := s.resolve()
	if err != nil {
		return nil, err
	}
	switch s.Provider {
	case ProviderGroq, ProviderOpenAI:
		return newOpenAIProvider(s), nil
	case ProviderOpenRouter:
		return newOpenRouterProvider(s), nil
	case ProviderAnthropic:
		return newAnthropicProvider(s), nil
	case ProviderGoogle:
		return newGoogleProvider(s), nil
	case ProviderOllama:
		return newOllamaProvider(s)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", s.Provider)
	}
}
