package ingest

import (
	"context"
	"fmt"

	"github.com/ShamanBV/shaman-assistant/common/logger"
	"github.com/ShamanBV/shaman-assistant/embedding"
	"github.com/ShamanBV/shaman-assistant/schema"
	"github.com/ShamanBV/shaman-assistant/vectordb"
)

const defaultBatchSize = 100

// Ingestor fetches documents from one knowledge source. Document ids must
// be deterministic so re-running a sync never duplicates content.
type Ingestor interface {
	// SourceName returns the logical source the documents belong to.
	SourceName() string
	// FetchDocuments streams documents. The document channel closes when
	// the source is exhausted; terminal failures arrive on the error
	// channel.
	FetchDocuments(ctx context.Context) (<-chan schema.Document, <-chan error)
}

// Syncer drains ingestors into the vector store, embedding new documents in
// batches and skipping ids that are already indexed.
type Syncer struct {
	store     vectordb.VectorStoreProvider
	embedder  embedding.Provider
	batchSize int
}

// NewSyncer creates a syncer writing through the given store and embedder.
func NewSyncer(store vectordb.VectorStoreProvider, embedder embedding.Provider, batchSize int) *Syncer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Syncer{store: store, embedder: embedder, batchSize: batchSize}
}

// Sync drains the ingestor into the collection and returns the number of
// documents added. Documents whose ids are already indexed are skipped, so
// a rerun after a partial failure only adds what is missing.
func (s *Syncer) Sync(ctx context.Context, ing Ingestor, collection string) (int, error) {
	if err := s.store.EnsureCollection(ctx, collection); err != nil {
		return 0, fmt.Errorf("ensure collection %s failed, err: %w", collection, err)
	}

	docCh, errCh := ing.FetchDocuments(ctx)
	batch := make([]schema.Document, 0, s.batchSize)
	total := 0

	for docCh != nil || errCh != nil {
		select {
		case doc, ok := <-docCh:
			if !ok {
				docCh = nil
				continue
			}
			batch = append(batch, doc)
			if len(batch) >= s.batchSize {
				added, err := s.flush(ctx, collection, batch)
				total += added
				if err != nil {
					return total, err
				}
				batch = batch[:0]
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return total, fmt.Errorf("fetch documents from %s failed, err: %w", ing.SourceName(), err)
			}
		case <-ctx.Done():
			return total, ctx.Err()
		}
	}

	added, err := s.flush(ctx, collection, batch)
	total += added
	if err != nil {
		return total, err
	}

	logger.Infof("sync %s finished, added: %d, collection: %s", ing.SourceName(), total, collection)
	return total, nil
}

// flush embeds and stores the documents in the batch that are not indexed
// yet, returning how many were added.
func (s *Syncer) flush(ctx context.Context, collection string, batch []schema.Document) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(batch))
	for _, doc := range batch {
		if doc.ID == "" {
			return 0, fmt.Errorf("ingested document has no id")
		}
		ids = append(ids, doc.ID)
	}

	existingDocs, err := s.store.GetDocs(ctx, collection, ids)
	if err != nil {
		return 0, fmt.Errorf("lookup existing docs in %s failed, err: %w", collection, err)
	}
	existing := make(map[string]bool, len(existingDocs))
	for _, doc := range existingDocs {
		existing[doc.ID] = true
	}

	newDocs := make([]schema.Document, 0, len(batch))
	seen := make(map[string]bool, len(batch))
	for _, doc := range batch {
		if existing[doc.ID] || seen[doc.ID] {
			continue
		}
		seen[doc.ID] = true
		newDocs = append(newDocs, doc)
	}
	if len(newDocs) == 0 {
		return 0, nil
	}

	texts := make([]string, len(newDocs))
	for i, doc := range newDocs {
		texts[i] = doc.Content
	}
	vectors, err := s.embedder.GetEmbeddings(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %d docs failed, err: %w", len(newDocs), err)
	}
	for i := range newDocs {
		newDocs[i].Vector = vectors[i]
	}

	if err := s.store.AddDocs(ctx, collection, newDocs); err != nil {
		return 0, err
	}
	return len(newDocs), nil
}
