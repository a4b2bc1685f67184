// Package fusion merges per-source ranked lists into a single ranked list.
// All strategies deduplicate by document id and break relevance ties on the
// id, so output order does not depend on map iteration.
package fusion

import (
	"sort"

	"github.com/ShamanBV/shaman-assistant/schema"
)

// Strategy defines the interface for merge strategies.
type Strategy interface {
	// Fuse merges multiple ranked lists into a single ranked list.
	Fuse(lists [][]schema.SearchResult) []schema.SearchResult
	// Name returns the strategy name.
	Name() string
}

// FirstWinsStrategy keeps the first occurrence of each document in merge
// order. Lists arrive in source-priority order with boosts already folded
// into relevance, so the surviving occurrence is the one the pipeline
// trusts most.
type FirstWinsStrategy struct{}

// NewFirstWinsStrategy creates the default merge strategy.
func NewFirstWinsStrategy() *FirstWinsStrategy {
	return &FirstWinsStrategy{}
}

func (s *FirstWinsStrategy) Fuse(lists [][]schema.SearchResult) []schema.SearchResult {
	seen := make(map[string]bool)
	out := make([]schema.SearchResult, 0)
	for _, list := range lists {
		for _, item := range list {
			id := item.Document.ID
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, item)
		}
	}
	sortByRelevance(out)
	return out
}

func (s *FirstWinsStrategy) Name() string {
	return "first_wins"
}

// MaxScoreStrategy keeps the highest-relevance occurrence of each document.
type MaxScoreStrategy struct{}

// NewMaxScoreStrategy creates a max-score merge strategy.
func NewMaxScoreStrategy() *MaxScoreStrategy {
	return &MaxScoreStrategy{}
}

func (s *MaxScoreStrategy) Fuse(lists [][]schema.SearchResult) []schema.SearchResult {
	index := make(map[string]int)
	out := make([]schema.SearchResult, 0)
	for _, list := range lists {
		for _, item := range list {
			id := item.Document.ID
			if id == "" {
				continue
			}
			if at, ok := index[id]; ok {
				if item.Relevance > out[at].Relevance {
					out[at] = item
				}
				continue
			}
			index[id] = len(out)
			out = append(out, item)
		}
	}
	sortByRelevance(out)
	return out
}

func (s *MaxScoreStrategy) Name() string {
	return "max_score"
}

// RRFStrategy implements Reciprocal Rank Fusion: each document scores the
// sum of 1/(k+rank) over the lists containing it, replacing relevance.
type RRFStrategy struct {
	K int
}

// NewRRFStrategy creates an RRF strategy; k <= 0 selects the usual 60.
func NewRRFStrategy(k int) *RRFStrategy {
	if k <= 0 {
		k = 60
	}
	return &RRFStrategy{K: k}
}

func (s *RRFStrategy) Fuse(lists [][]schema.SearchResult) []schema.SearchResult {
	index := make(map[string]int)
	out := make([]schema.SearchResult, 0)
	for _, list := range lists {
		for rank, item := range list {
			id := item.Document.ID
			if id == "" {
				continue
			}
			score := 1.0 / (float64(s.K) + float64(rank+1))
			if at, ok := index[id]; ok {
				out[at].Relevance += score
				continue
			}
			item.Relevance = score
			index[id] = len(out)
			out = append(out, item)
		}
	}
	sortByRelevance(out)
	return out
}

func (s *RRFStrategy) Name() string {
	return "rrf"
}

func sortByRelevance(results []schema.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Relevance != results[j].Relevance {
			return results[i].Relevance > results[j].Relevance
		}
		return results[i].Document.ID < results[j].Document.ID
	})
}
