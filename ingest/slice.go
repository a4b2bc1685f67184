package ingest

import (
	"context"
	"fmt"

	"github.com/ShamanBV/shaman-assistant/schema"
	"github.com/ShamanBV/shaman-assistant/textsplitter"
)

// SliceIngestor serves a fixed set of documents. It backs manual ingestion
// through the API surface and tests.
type SliceIngestor struct {
	source string
	docs   []schema.Document
}

// NewSliceIngestor creates an ingestor over the given documents. Documents
// without an id get one derived from their position.
func NewSliceIngestor(source string, docs []schema.Document) *SliceIngestor {
	prepared := make([]schema.Document, len(docs))
	for i, doc := range docs {
		prepared[i] = doc.Clone()
		if prepared[i].ID == "" {
			prepared[i].ID = schema.NewDocumentID(source, fmt.Sprintf("manual_%d_%s", i, doc.Content))
		}
	}
	return &SliceIngestor{source: source, docs: prepared}
}

// SourceName returns the logical source the documents belong to.
func (s *SliceIngestor) SourceName() string { return s.source }

// FetchDocuments streams the documents.
func (s *SliceIngestor) FetchDocuments(ctx context.Context) (<-chan schema.Document, <-chan error) {
	docCh := make(chan schema.Document)
	errCh := make(chan error, 1)
	go func() {
		defer close(docCh)
		defer close(errCh)
		for _, doc := range s.docs {
			select {
			case docCh <- doc.Clone():
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()
	return docCh, errCh
}

// Chunked wraps an ingestor so every document is split into overlapping
// chunks before indexing. Chunk ids derive from the parent document id, so
// re-ingestion stays idempotent.
func Chunked(ing Ingestor, splitter textsplitter.TextSplitter) Ingestor {
	return &chunkedIngestor{inner: ing, splitter: splitter}
}

type chunkedIngestor struct {
	inner    Ingestor
	splitter textsplitter.TextSplitter
}

func (c *chunkedIngestor) SourceName() string { return c.inner.SourceName() }

func (c *chunkedIngestor) FetchDocuments(ctx context.Context) (<-chan schema.Document, <-chan error) {
	innerDocs, innerErrs := c.inner.FetchDocuments(ctx)
	docCh := make(chan schema.Document)
	errCh := make(chan error, 1)

	go func() {
		defer close(docCh)
		defer close(errCh)
		for doc := range innerDocs {
			chunks, err := c.splitter.SplitText(doc.Content)
			if err != nil {
				errCh <- fmt.Errorf("split document %s failed, err: %w", doc.ID, err)
				return
			}
			for i, chunk := range chunks {
				out := doc.Clone()
				out.Content = chunk
				if len(chunks) > 1 {
					out.ID = schema.NewDocumentID(c.inner.SourceName(), fmt.Sprintf("%s_%d", doc.ID, i))
					if out.Metadata == nil {
						out.Metadata = map[string]any{}
					}
					out.Metadata["chunk"] = i
					out.Metadata["chunks"] = len(chunks)
				}
				select {
				case docCh <- out:
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				}
			}
		}
		if err, ok := <-innerErrs; ok && err != nil {
			errCh <- err
		}
	}()
	return docCh, errCh
}
