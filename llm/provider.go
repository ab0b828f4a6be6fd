package llm

import (
	"context"
	"fmt"

	"github.com/ruchit2005/Pran-Protocol/config"
)

// Provider abstracts the generation service.
type Provider interface {
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
	GetProviderType() string
}

// ChatProvider additionally supports a system/user message split, which
// the per-domain generators use.
type ChatProvider interface {
	Provider
	GenerateChat(ctx context.Context, system, user string) (string, error)
}

// NewProvider creates a provider from configuration.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
