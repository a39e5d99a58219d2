package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dshills/stylist/internal/llm"
)

// Provider is a testify mock of llm.Provider.
type Provider struct {
	mock.Mock
}

func (m *Provider) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt, maxTokens, temperature)
	return args.String(0), args.Error(1)
}

// Factory is a testify mock of llm.Factory. Use Build as the factory value.
type Factory struct {
	mock.Mock
}

func (m *Factory) Build(s llm.Settings) (llm.Provider, error) {
	args := m.Called(s)
	p, _ := args.Get(0).(llm.Provider)
	return p, args.Error(1)
}
