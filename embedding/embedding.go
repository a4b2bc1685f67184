package embedding

import (
	"context"
	"fmt"

	"github.com/ShamanBV/shaman-assistant/config"
)

const (
	ProviderTypeOpenAI = "openai"
)

// Provider defines the interface for embedding backends.
type Provider interface {
	// GetEmbedding returns the embedding vector for a single text.
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	// GetEmbeddings returns one vector per input text, in input order.
	GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	// GetDimensions returns the configured vector width.
	GetDimensions() int
	// GetProviderType returns the provider type identifier.
	GetProviderType() string
}

// NewEmbeddingProvider creates an embedding provider from configuration.
func NewEmbeddingProvider(cfg config.EmbeddingConfig) (Provider, error) {
	switch cfg.Provider {
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg)
	case "":
		return nil, fmt.Errorf("embedding provider is required")
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
