// Package retriever answers a single query from one named knowledge
// collection.
package retriever

import (
	"context"

	"github.com/ShamanBV/shaman-assistant/schema"
)

// Retriever runs a query against one backend collection.
type Retriever interface {
	// Source is the knowledge source this retriever serves.
	Source() string
	// Search returns up to topK results labelled with the source name,
	// best first.
	Search(ctx context.Context, query string, topK int) ([]schema.SearchResult, error)
}
