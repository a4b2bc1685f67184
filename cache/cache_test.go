package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/ShamanBV/shaman-assistant/schema"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(capacity int, ttl time.Duration) (*ResponseCache, *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewResponseCache(capacity, ttl, WithClock(clk.Now)), clk
}

func answer(text string) *schema.Answer {
	return &schema.Answer{Text: text, Intent: "question"}
}

func TestResponseCache_FuzzyHit(t *testing.T) {
	c, _ := newTestCache(8, time.Hour)
	c.Set("export a CLM deck", answer("steps to export"))

	got, ok := c.Get("Please help me export a CLM deck")
	if !ok {
		t.Fatal("expected fuzzy variant to hit")
	}
	if got.Text != "steps to export" {
		t.Errorf("unexpected answer text: %q", got.Text)
	}

	if _, ok := c.Get("export a PowerPoint deck"); ok {
		t.Error("different question must miss")
	}
}

func TestResponseCache_TTLBoundary(t *testing.T) {
	c, clk := newTestCache(8, time.Hour)
	c.Set("sync templates", answer("sync guide"))

	clk.Advance(time.Hour - time.Second)
	if _, ok := c.Get("sync templates"); !ok {
		t.Fatal("entry should still be valid just before TTL")
	}

	clk.Advance(time.Second)
	if _, ok := c.Get("sync templates"); ok {
		t.Fatal("entry should expire at exactly TTL")
	}

	stats := c.Stats()
	if stats.Entries != 0 {
		t.Errorf("expired entry should be removed, entries = %d", stats.Entries)
	}
	if stats.Misses != 1 {
		t.Errorf("expired lookup counts as a miss, misses = %d", stats.Misses)
	}
}

func TestResponseCache_LRUEviction(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)
	c.Set("question a", answer("a"))
	c.Set("question b", answer("b"))

	// Touch a so b becomes the eviction candidate.
	if _, ok := c.Get("question a"); !ok {
		t.Fatal("expected hit on a")
	}

	c.Set("question c", answer("c"))

	if _, ok := c.Get("question b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("question a"); !ok {
		t.Error("a should survive eviction")
	}
	if _, ok := c.Get("question c"); !ok {
		t.Error("c should be present")
	}
}

func TestResponseCache_SetOverwrites(t *testing.T) {
	c, _ := newTestCache(8, time.Hour)
	c.Set("what is veeva", answer("old"))
	c.Set("What is Veeva?  ", answer("old attempt two")) // different key, "?" survives normalization
	c.Set("what is veeva", answer("new"))

	got, ok := c.Get("what is veeva")
	if !ok || got.Text != "new" {
		t.Fatalf("expected overwritten answer, got %+v ok=%v", got, ok)
	}
	if c.Stats().Entries != 2 {
		t.Errorf("expected 2 entries, got %d", c.Stats().Entries)
	}
}

func TestResponseCache_ReturnsClones(t *testing.T) {
	c, _ := newTestCache(8, time.Hour)
	original := answer("immutable")
	original.Sources = []schema.SearchResult{{Source: "slack", Relevance: 0.9}}
	c.Set("clone check", original)

	original.Text = "mutated after set"

	got, ok := c.Get("clone check")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Text != "immutable" {
		t.Errorf("stored answer must not alias the caller's value, got %q", got.Text)
	}

	got.Sources[0].Relevance = 0
	second, _ := c.Get("clone check")
	if second.Sources[0].Relevance != 0.9 {
		t.Error("returned answer must not alias the cached value")
	}
}

func TestResponseCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(8, time.Hour)
	c.Set("remove me", answer("x"))

	if !c.Invalidate("Please remove me") {
		t.Error("invalidate should report removal via fuzzy key")
	}
	if c.Invalidate("remove me") {
		t.Error("second invalidate should report nothing removed")
	}
}

func TestResponseCache_ClearResetsCounters(t *testing.T) {
	c, _ := newTestCache(8, time.Hour)
	c.Set("q1", answer("a1"))
	c.Set("q2", answer("a2"))
	c.Get("q1")
	c.Get("nope")

	if n := c.Clear(); n != 2 {
		t.Errorf("Clear returned %d, want 2", n)
	}

	stats := c.Stats()
	if stats.Entries != 0 || stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("Clear must reset state, got %+v", stats)
	}
	if stats.HitRate != "0.0%" {
		t.Errorf("expected 0.0%% hit rate after clear, got %s", stats.HitRate)
	}
}

func TestResponseCache_CleanupExpired(t *testing.T) {
	c, clk := newTestCache(8, time.Hour)
	c.Set("old", answer("stale"))
	clk.Advance(30 * time.Minute)
	c.Set("fresh", answer("recent"))
	clk.Advance(30 * time.Minute)

	if n := c.CleanupExpired(); n != 1 {
		t.Errorf("CleanupExpired returned %d, want 1", n)
	}
	if c.Stats().Entries != 1 {
		t.Errorf("expected 1 surviving entry, got %d", c.Stats().Entries)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry should survive cleanup")
	}
}

func TestResponseCache_StatsShape(t *testing.T) {
	c, _ := newTestCache(8, time.Hour)
	c.Set("q", answer("a"))
	c.Get("q")
	c.Get("q")
	c.Get("missing")

	stats := c.Stats()
	if stats.TTLSeconds != 3600 {
		t.Errorf("ttl_seconds = %d, want 3600", stats.TTLSeconds)
	}
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 2/1", stats.Hits, stats.Misses)
	}
	want := fmt.Sprintf("%.1f%%", 2.0/3.0*100)
	if stats.HitRate != want {
		t.Errorf("hit_rate = %s, want %s", stats.HitRate, want)
	}
}
