package vectordb

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShamanBV/shaman-assistant/config"
	"github.com/ShamanBV/shaman-assistant/schema"
)

const (
	ProviderTypeMilvus = "milvus"
	ProviderTypeMemory = "memory"
)

// VectorStoreProvider defines the interface for collection-scoped vector
// stores. Relevance on returned results is cosine similarity, higher is
// better.
type VectorStoreProvider interface {
	// EnsureCollection creates and loads the collection if missing.
	EnsureCollection(ctx context.Context, collection string) error
	// AddDocs upserts documents. Every document must carry a vector of the
	// provider's dimension.
	AddDocs(ctx context.Context, collection string, docs []schema.Document) error
	// GetDocs returns the documents with the given ids, skipping unknown ids.
	GetDocs(ctx context.Context, collection string, ids []string) ([]schema.Document, error)
	// SearchDocs returns the nearest documents to the query vector.
	SearchDocs(ctx context.Context, collection string, vector []float32, options schema.SearchOptions) ([]schema.SearchResult, error)
	// ListDocs returns up to limit documents.
	ListDocs(ctx context.Context, collection string, limit int) ([]schema.Document, error)
	// DeleteDocs removes documents by id.
	DeleteDocs(ctx context.Context, collection string, ids []string) error
	// Count returns the number of documents, 0 for a missing collection.
	Count(ctx context.Context, collection string) (int64, error)
	// Close releases the underlying connection.
	Close() error
}

// NewVectorDBProvider creates a vector store provider from configuration.
func NewVectorDBProvider(cfg *config.VectorDBConfig, dim int) (VectorStoreProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderTypeMilvus:
		return NewMilvusProvider(cfg, dim)
	case ProviderTypeMemory, "":
		return NewMemoryProvider(dim), nil
	default:
		return nil, fmt.Errorf("unsupported vectordb provider: %s", cfg.Provider)
	}
}
