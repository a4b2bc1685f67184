package retriever

import (
	"context"
	"fmt"

	"github.com/ShamanBV/shaman-assistant/embedding"
	"github.com/ShamanBV/shaman-assistant/schema"
	"github.com/ShamanBV/shaman-assistant/vectordb"
)

// VectorRetriever embeds the query and searches one vector collection.
type VectorRetriever struct {
	source     string
	collection string
	embedder   embedding.Provider
	store      vectordb.VectorStoreProvider
	threshold  float64
}

// NewVectorRetriever creates a retriever for the given source/collection
// pair. threshold filters out results below that relevance; 0 keeps all.
func NewVectorRetriever(source, collection string, embedder embedding.Provider, store vectordb.VectorStoreProvider, threshold float64) *VectorRetriever {
	return &VectorRetriever{
		source:     source,
		collection: collection,
		embedder:   embedder,
		store:      store,
		threshold:  threshold,
	}
}

func (r *VectorRetriever) Source() string { return r.source }

// Collection returns the backing collection name.
func (r *VectorRetriever) Collection() string { return r.collection }

func (r *VectorRetriever) Search(ctx context.Context, query string, topK int) ([]schema.SearchResult, error) {
	if topK <= 0 {
		topK = 10
	}
	vector, err := r.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query failed, err: %w", err)
	}
	results, err := r.store.SearchDocs(ctx, r.collection, vector, schema.SearchOptions{
		TopK:      topK,
		Threshold: r.threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("search collection %s failed, err: %w", r.collection, err)
	}
	for i := range results {
		results[i].Source = r.source
	}
	return results, nil
}
