package llm

import (
	"context"
	"fmt"

	"github.com/ShamanBV/shaman-assistant/config"
)

const (
	ProviderTypeOpenAI = "openai"
)

// Provider defines the interface for text completion backends.
type Provider interface {
	// GenerateCompletion returns the model's completion for a single prompt.
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
	// GetProviderType returns the provider type identifier.
	GetProviderType() string
}

// NewLLMProvider creates a completion provider from configuration.
func NewLLMProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg)
	case "":
		return nil, fmt.Errorf("llm provider is required")
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
