package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ShamanBV/shaman-assistant/schema"
	"github.com/ShamanBV/shaman-assistant/textsplitter"
	"github.com/ShamanBV/shaman-assistant/vectordb"
)

type stubEmbedder struct {
	batches []int
}

func (s *stubEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.GetEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *stubEmbedder) GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	s.batches = append(s.batches, len(texts))
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

func (s *stubEmbedder) GetDimensions() int { return 3 }

func (s *stubEmbedder) GetProviderType() string { return "stub" }

func testDocs(n int) []schema.Document {
	docs := make([]schema.Document, n)
	for i := range docs {
		docs[i] = schema.Document{
			ID:      schema.NewDocumentID("slack", fmt.Sprintf("msg-%d", i)),
			Content: fmt.Sprintf("message number %d", i),
		}
	}
	return docs
}

func TestSyncer_AddsDocuments(t *testing.T) {
	store := vectordb.NewMemoryProvider(3)
	syncer := NewSyncer(store, &stubEmbedder{}, 100)

	added, err := syncer.Sync(context.Background(), NewSliceIngestor("slack", testDocs(5)), "slack_messages")
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if added != 5 {
		t.Errorf("added = %d, want 5", added)
	}

	count, _ := store.Count(context.Background(), "slack_messages")
	if count != 5 {
		t.Errorf("collection count = %d, want 5", count)
	}
}

func TestSyncer_RerunAddsNothing(t *testing.T) {
	store := vectordb.NewMemoryProvider(3)
	syncer := NewSyncer(store, &stubEmbedder{}, 100)
	ctx := context.Background()

	if _, err := syncer.Sync(ctx, NewSliceIngestor("slack", testDocs(5)), "slack_messages"); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	added, err := syncer.Sync(ctx, NewSliceIngestor("slack", testDocs(5)), "slack_messages")
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if added != 0 {
		t.Errorf("rerun added = %d, want 0", added)
	}

	count, _ := store.Count(ctx, "slack_messages")
	if count != 5 {
		t.Errorf("collection count = %d, want 5", count)
	}
}

func TestSyncer_EmbedsInBatches(t *testing.T) {
	store := vectordb.NewMemoryProvider(3)
	embedder := &stubEmbedder{}
	syncer := NewSyncer(store, embedder, 2)

	added, err := syncer.Sync(context.Background(), NewSliceIngestor("slack", testDocs(5)), "slack_messages")
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if added != 5 {
		t.Errorf("added = %d, want 5", added)
	}
	if len(embedder.batches) != 3 {
		t.Fatalf("expected 3 embedding batches, got %v", embedder.batches)
	}
	if embedder.batches[0] != 2 || embedder.batches[1] != 2 || embedder.batches[2] != 1 {
		t.Errorf("unexpected batch sizes: %v", embedder.batches)
	}
}

type failingIngestor struct{}

func (f *failingIngestor) SourceName() string { return "broken" }

func (f *failingIngestor) FetchDocuments(ctx context.Context) (<-chan schema.Document, <-chan error) {
	docCh := make(chan schema.Document)
	errCh := make(chan error, 1)
	go func() {
		defer close(docCh)
		defer close(errCh)
		docCh <- schema.Document{ID: "one", Content: "partial"}
		errCh <- errors.New("connection reset")
	}()
	return docCh, errCh
}

func TestSyncer_PropagatesFetchError(t *testing.T) {
	store := vectordb.NewMemoryProvider(3)
	syncer := NewSyncer(store, &stubEmbedder{}, 100)

	_, err := syncer.Sync(context.Background(), &failingIngestor{}, "broken_docs")
	if err == nil {
		t.Fatal("expected fetch error to propagate")
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("error should wrap the cause, got %v", err)
	}
}

func TestChunked_SplitsAndStaysIdempotent(t *testing.T) {
	store := vectordb.NewMemoryProvider(3)
	syncer := NewSyncer(store, &stubEmbedder{}, 100)
	ctx := context.Background()

	splitter, err := textsplitter.NewCharacterSplitter(100, 20)
	if err != nil {
		t.Fatalf("NewCharacterSplitter failed: %v", err)
	}

	long := schema.Document{
		ID:      schema.NewDocumentID("confluence", "page-1"),
		Content: strings.Repeat("abcdefghij", 30),
	}
	mk := func() Ingestor {
		return Chunked(NewSliceIngestor("confluence", []schema.Document{long}), splitter)
	}

	added, err := syncer.Sync(ctx, mk(), "confluence_pages")
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if added < 2 {
		t.Fatalf("long document should produce multiple chunks, added = %d", added)
	}

	docs, _ := store.ListDocs(ctx, "confluence_pages", 100)
	for _, doc := range docs {
		if doc.Metadata["chunks"] != added {
			t.Errorf("chunk metadata should record total chunks, got %v", doc.Metadata["chunks"])
		}
	}

	again, err := syncer.Sync(ctx, mk(), "confluence_pages")
	if err != nil {
		t.Fatalf("rerun failed: %v", err)
	}
	if again != 0 {
		t.Errorf("rerun added = %d, want 0", again)
	}
}

func TestSliceIngestor_DerivesStableIDs(t *testing.T) {
	docs := []schema.Document{{Content: "no id yet"}}
	first := NewSliceIngestor("manual", docs)
	second := NewSliceIngestor("manual", docs)

	ch1, _ := first.FetchDocuments(context.Background())
	ch2, _ := second.FetchDocuments(context.Background())
	d1, d2 := <-ch1, <-ch2

	if d1.ID == "" {
		t.Fatal("ingestor should assign an id")
	}
	if d1.ID != d2.ID {
		t.Error("derived ids must be deterministic")
	}
}
