package fusion

import (
	"math"
	"testing"

	"github.com/ShamanBV/shaman-assistant/schema"
)

func result(id string, relevance float64, source string) schema.SearchResult {
	return schema.SearchResult{
		Document:  schema.Document{ID: id, Content: "content " + id},
		Source:    source,
		Relevance: relevance,
	}
}

func TestFirstWinsKeepsFirstOccurrence(t *testing.T) {
	s := NewFirstWinsStrategy()
	lists := [][]schema.SearchResult{
		{result("a", 0.7, "slack"), result("b", 0.6, "slack")},
		{result("a", 0.95, "confluence"), result("c", 0.5, "confluence")},
	}

	out := s.Fuse(lists)

	if len(out) != 3 {
		t.Fatalf("got %d results, want 3", len(out))
	}
	for _, r := range out {
		if r.Document.ID == "a" {
			if r.Source != "slack" || math.Abs(r.Relevance-0.7) > 1e-9 {
				t.Errorf("duplicate kept %s/%.2f, want first occurrence slack/0.70", r.Source, r.Relevance)
			}
		}
	}
	// Globally sorted by relevance.
	for i := 1; i < len(out); i++ {
		if out[i].Relevance > out[i-1].Relevance {
			t.Errorf("results not sorted: %v before %v", out[i-1].Relevance, out[i].Relevance)
		}
	}
}

func TestMaxScoreKeepsBestOccurrence(t *testing.T) {
	s := NewMaxScoreStrategy()
	lists := [][]schema.SearchResult{
		{result("a", 0.7, "slack")},
		{result("a", 0.95, "confluence")},
	}

	out := s.Fuse(lists)

	if len(out) != 1 {
		t.Fatalf("got %d results, want 1", len(out))
	}
	if out[0].Source != "confluence" || math.Abs(out[0].Relevance-0.95) > 1e-9 {
		t.Errorf("kept %s/%.2f, want confluence/0.95", out[0].Source, out[0].Relevance)
	}
}

func TestRRFAccumulatesAcrossLists(t *testing.T) {
	s := NewRRFStrategy(60)
	lists := [][]schema.SearchResult{
		{result("a", 0.9, "slack"), result("b", 0.8, "slack")},
		{result("b", 0.7, "confluence")},
	}

	out := s.Fuse(lists)

	if len(out) != 2 {
		t.Fatalf("got %d results, want 2", len(out))
	}
	// b appears rank 2 and rank 1; a only rank 1. b must come first.
	if out[0].Document.ID != "b" {
		t.Fatalf("top result = %s, want b", out[0].Document.ID)
	}
	wantB := 1.0/62.0 + 1.0/61.0
	if math.Abs(out[0].Relevance-wantB) > 1e-9 {
		t.Errorf("b score = %v, want %v", out[0].Relevance, wantB)
	}
}

func TestFuseTieBreaksOnDocumentID(t *testing.T) {
	s := NewFirstWinsStrategy()
	lists := [][]schema.SearchResult{
		{result("z", 0.5, "slack"), result("a", 0.5, "slack"), result("m", 0.5, "slack")},
	}

	out := s.Fuse(lists)

	wantOrder := []string{"a", "m", "z"}
	for i, want := range wantOrder {
		if out[i].Document.ID != want {
			t.Fatalf("position %d = %s, want %s", i, out[i].Document.ID, want)
		}
	}
}

func TestFuseSkipsEmptyIDs(t *testing.T) {
	s := NewFirstWinsStrategy()
	out := s.Fuse([][]schema.SearchResult{{result("", 0.9, "slack"), result("a", 0.5, "slack")}})
	if len(out) != 1 || out[0].Document.ID != "a" {
		t.Fatalf("got %v, want only document a", out)
	}
}

func TestNewStrategy(t *testing.T) {
	tests := []struct {
		name     string
		params   map[string]any
		wantName string
		wantErr  bool
	}{
		{"", nil, "first_wins", false},
		{"first_wins", nil, "first_wins", false},
		{"max_score", nil, "max_score", false},
		{"rrf", map[string]any{"k": 10}, "rrf", false},
		{"RRF", nil, "rrf", false},
		{"learned", nil, "", true},
	}
	for _, tt := range tests {
		s, err := NewStrategy(tt.name, tt.params)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NewStrategy(%q) expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewStrategy(%q) error = %v", tt.name, err)
			continue
		}
		if s.Name() != tt.wantName {
			t.Errorf("NewStrategy(%q).Name() = %q, want %q", tt.name, s.Name(), tt.wantName)
		}
	}
}

func TestNewStrategyRRFParam(t *testing.T) {
	s, err := NewStrategy("rrf", map[string]any{"k": 5})
	if err != nil {
		t.Fatalf("NewStrategy() error = %v", err)
	}
	rrf, ok := s.(*RRFStrategy)
	if !ok {
		t.Fatalf("got %T, want *RRFStrategy", s)
	}
	if rrf.K != 5 {
		t.Errorf("K = %d, want 5", rrf.K)
	}

	s, _ = NewStrategy("rrf", nil)
	if s.(*RRFStrategy).K != 60 {
		t.Errorf("default K = %d, want 60", s.(*RRFStrategy).K)
	}
}
