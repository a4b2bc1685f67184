// Package rank adjusts retrieval relevance with declarative per-source
// boost rules: a flat per-source boost, a keyword-conditional boost for
// queries about organizational topics, and a scope boost for customer
// collections included in a scoped search.
package rank

import (
	"strings"

	"github.com/ShamanBV/shaman-assistant/config"
	"github.com/ShamanBV/shaman-assistant/schema"
)

// Booster holds the resolved boost rules keyed by source name.
type Booster struct {
	rules      map[string]config.BoostRule
	scopeBoost float64
}

// New builds a Booster from the configured sources. scopeBoost applies to
// results of the scoped source in a customer-scoped search.
func New(sources []config.SourceConfig, scopeBoost float64) *Booster {
	rules := make(map[string]config.BoostRule, len(sources))
	for _, src := range sources {
		rules[src.Name] = src.Boost
	}
	return &Booster{rules: rules, scopeBoost: scopeBoost}
}

// Boost returns the additive relevance adjustment for a result from source,
// given the lowercased query. scoped marks results from the customer
// collection of a scoped search.
func (b *Booster) Boost(source, queryLower string, scoped bool) float64 {
	boost := 0.0
	if rule, ok := b.rules[source]; ok {
		boost += rule.Flat
		if rule.KeywordBoost != 0 && containsAny(queryLower, rule.Keywords) {
			boost += rule.KeywordBoost
		}
	}
	if scoped {
		boost += b.scopeBoost
	}
	return boost
}

// Apply adds boosts to every result in place. scopedSource names the
// customer collection of a scoped search; "" for unscoped searches.
func (b *Booster) Apply(results []schema.SearchResult, query, scopedSource string) {
	queryLower := strings.ToLower(query)
	for i := range results {
		scoped := scopedSource != "" && results[i].Source == scopedSource
		results[i].Relevance += b.Boost(results[i].Source, queryLower, scoped)
	}
}

func containsAny(textLower string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(textLower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
