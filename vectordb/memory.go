package vectordb

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ShamanBV/shaman-assistant/schema"
)

// MemoryProvider is an in-process vector store with brute force cosine
// search. It backs tests and single-node deployments without a milvus
// instance; nothing survives a restart.
type MemoryProvider struct {
	mu          sync.RWMutex
	dim         int
	collections map[string]map[string]schema.Document
}

// NewMemoryProvider creates an empty in-memory store for vectors of the
// given dimension.
func NewMemoryProvider(dim int) *MemoryProvider {
	return &MemoryProvider{
		dim:         dim,
		collections: make(map[string]map[string]schema.Document),
	}
}

// EnsureCollection creates the collection if missing.
func (p *MemoryProvider) EnsureCollection(ctx context.Context, collection string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.collections[collection]; !ok {
		p.collections[collection] = make(map[string]schema.Document)
	}
	return nil
}

// AddDocs upserts documents into the collection, creating it if missing.
func (p *MemoryProvider) AddDocs(ctx context.Context, collection string, docs []schema.Document) error {
	for _, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document id is required")
		}
		if p.dim > 0 && len(doc.Vector) != p.dim {
			return fmt.Errorf("document %s vector dimension %d does not match %d", doc.ID, len(doc.Vector), p.dim)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	coll, ok := p.collections[collection]
	if !ok {
		coll = make(map[string]schema.Document)
		p.collections[collection] = coll
	}
	for _, doc := range docs {
		coll[doc.ID] = doc.Clone()
	}
	return nil
}

// GetDocs returns the documents with the given ids, skipping unknown ids.
func (p *MemoryProvider) GetDocs(ctx context.Context, collection string, ids []string) ([]schema.Document, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	coll, ok := p.collections[collection]
	if !ok {
		return nil, nil
	}
	docs := make([]schema.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := coll[id]; ok {
			docs = append(docs, doc.Clone())
		}
	}
	return docs, nil
}

// SearchDocs scans the collection and returns the topK documents by cosine
// similarity, filtered by options.Threshold.
func (p *MemoryProvider) SearchDocs(ctx context.Context, collection string, vector []float32, options schema.SearchOptions) ([]schema.SearchResult, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	coll, ok := p.collections[collection]
	if !ok {
		return nil, nil
	}

	results := make([]schema.SearchResult, 0, len(coll))
	for _, doc := range coll {
		score := cosineSimilarity(vector, doc.Vector)
		if score < options.Threshold {
			continue
		}
		results = append(results, schema.SearchResult{
			Document:  doc.Clone(),
			Relevance: score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Relevance != results[j].Relevance {
			return results[i].Relevance > results[j].Relevance
		}
		return results[i].Document.ID < results[j].Document.ID
	})

	if options.TopK > 0 && len(results) > options.TopK {
		results = results[:options.TopK]
	}
	return results, nil
}

// ListDocs returns up to limit documents in id order.
func (p *MemoryProvider) ListDocs(ctx context.Context, collection string, limit int) ([]schema.Document, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	coll, ok := p.collections[collection]
	if !ok {
		return nil, nil
	}

	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	docs := make([]schema.Document, 0, len(ids))
	for _, id := range ids {
		doc := coll[id]
		docs = append(docs, doc.Clone())
	}
	return docs, nil
}

// DeleteDocs removes documents by id.
func (p *MemoryProvider) DeleteDocs(ctx context.Context, collection string, ids []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	coll, ok := p.collections[collection]
	if !ok {
		return nil
	}
	for _, id := range ids {
		delete(coll, id)
	}
	return nil
}

// Count returns the number of documents, 0 for a missing collection.
func (p *MemoryProvider) Count(ctx context.Context, collection string) (int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return int64(len(p.collections[collection])), nil
}

// Close is a no-op for the in-memory store.
func (p *MemoryProvider) Close() error { return nil }

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
