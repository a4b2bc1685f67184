package rank

import (
	"math"
	"strings"
	"testing"

	"github.com/ShamanBV/shaman-assistant/config"
	"github.com/ShamanBV/shaman-assistant/schema"
)

func testSources() []config.SourceConfig {
	return []config.SourceConfig{
		{Name: "slack"},
		{Name: "confluence", Boost: config.BoostRule{
			Flat:         0.08,
			KeywordBoost: 0.12,
			Keywords:     []string{"policy", "onboarding", "team"},
		}},
	}
}

func TestBoostRules(t *testing.T) {
	b := New(testSources(), 0.5)

	tests := []struct {
		name   string
		source string
		query  string
		scoped bool
		want   float64
	}{
		{"unconfigured source", "slack", "how do i export", false, 0},
		{"flat boost only", "confluence", "how do i export", false, 0.08},
		{"flat plus keyword", "confluence", "what is the onboarding policy", false, 0.20},
		{"keyword is case-insensitive", "confluence", "ONBOARDING steps", false, 0.20},
		{"scope boost stacks", "confluence", "onboarding", true, 0.70},
		{"scope on plain source", "slack", "anything", true, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Boost(tt.source, strings.ToLower(tt.query), tt.scoped)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Boost(%q, %q, %v) = %v, want %v", tt.source, tt.query, tt.scoped, got, tt.want)
			}
		})
	}
}

func TestApplyAdjustsRelevanceInPlace(t *testing.T) {
	b := New(testSources(), 0.5)
	results := []schema.SearchResult{
		{Source: "slack", Relevance: 0.9},
		{Source: "confluence", Relevance: 0.8},
		{Source: "docs_takeda", Relevance: 0.6},
	}

	b.Apply(results, "What is the vacation policy?", "docs_takeda")

	if math.Abs(results[0].Relevance-0.9) > 1e-9 {
		t.Errorf("slack relevance = %v, want 0.9", results[0].Relevance)
	}
	if math.Abs(results[1].Relevance-1.0) > 1e-9 {
		t.Errorf("confluence relevance = %v, want 1.0", results[1].Relevance)
	}
	if math.Abs(results[2].Relevance-1.1) > 1e-9 {
		t.Errorf("scoped relevance = %v, want 1.1", results[2].Relevance)
	}
}
