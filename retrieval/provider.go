// Package retrieval fans a query out across the enabled knowledge
// collections and merges the candidates into one ranked list.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ShamanBV/shaman-assistant/common/logger"
	"github.com/ShamanBV/shaman-assistant/config"
	"github.com/ShamanBV/shaman-assistant/embedding"
	"github.com/ShamanBV/shaman-assistant/fusion"
	"github.com/ShamanBV/shaman-assistant/metrics"
	"github.com/ShamanBV/shaman-assistant/rank"
	"github.com/ShamanBV/shaman-assistant/retriever"
	"github.com/ShamanBV/shaman-assistant/schema"
	"github.com/ShamanBV/shaman-assistant/vectordb"
)

// SearchOptions carries per-search knobs.
type SearchOptions struct {
	// NResults caps the merged result list; 0 selects the configured
	// default.
	NResults int
	// Sources restricts the search to the named sources; empty searches
	// every enabled source.
	Sources []string
	// Optimize expands the query into variants before searching.
	Optimize bool
	// Queries supplies pre-expanded variants; when set, Optimize is
	// ignored.
	Queries []string
	// ThreadContext carries prior conversation rounds into optimization.
	ThreadContext string
	// ScopeKey adds the named customer's private collection to the search.
	ScopeKey string
}

// QueryExpander produces search variants for a question. Implementations
// never fail; the original question is always among the variants.
type QueryExpander interface {
	Optimize(ctx context.Context, question, threadContext string) []string
}

type source struct {
	name       string
	collection string
	multiplier int
	retriever  retriever.Retriever
}

// Provider executes multi-source retrieval: budgeted per-collection
// queries, declarative boosts, dedup and a global sort.
type Provider struct {
	sources      []source
	customers    map[string]source
	store        vectordb.VectorStoreProvider
	expander     QueryExpander
	booster      *rank.Booster
	strategy     fusion.Strategy
	nResults     int
	perSourceMin int
	parallel     bool
}

// NewProvider builds retrievers for every enabled source and every customer
// collection.
func NewProvider(cfg *config.Config, embedder embedding.Provider, store vectordb.VectorStoreProvider, expander QueryExpander) (*Provider, error) {
	strategy, err := fusion.NewStrategy(cfg.Retrieval.Fusion.Strategy, cfg.Retrieval.Fusion.Params)
	if err != nil {
		return nil, fmt.Errorf("create fusion strategy failed, err: %w", err)
	}

	p := &Provider{
		customers:    make(map[string]source),
		store:        store,
		expander:     expander,
		booster:      rank.New(cfg.Retrieval.Sources, cfg.Retrieval.ScopeBoost),
		strategy:     strategy,
		nResults:     cfg.Retrieval.NResults,
		perSourceMin: cfg.Retrieval.PerSourceMin,
		parallel:     cfg.Retrieval.Parallel,
	}
	if p.nResults <= 0 {
		p.nResults = 10
	}
	if p.perSourceMin <= 0 {
		p.perSourceMin = 3
	}

	for _, sc := range cfg.Retrieval.Sources {
		if !sc.Enabled() {
			continue
		}
		multiplier := sc.BudgetMultiplier
		if multiplier <= 0 {
			multiplier = 1
		}
		p.sources = append(p.sources, source{
			name:       sc.Name,
			collection: sc.Collection,
			multiplier: multiplier,
			retriever:  retriever.NewVectorRetriever(sc.Name, sc.Collection, embedder, store, 0),
		})
	}
	for _, cust := range cfg.Customers {
		if cust.Collection == "" {
			continue
		}
		p.customers[cust.Key] = source{
			name:       cust.Collection,
			collection: cust.Collection,
			multiplier: 1,
			retriever:  retriever.NewVectorRetriever(cust.Collection, cust.Collection, embedder, store, 0),
		}
	}
	return p, nil
}

// Search runs the query against the active collections and returns the
// merged candidates, best first. Per-source failures are logged and
// skipped; an empty slice means no source had anything.
func (p *Provider) Search(ctx context.Context, query string, opts SearchOptions) ([]schema.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []schema.SearchResult{}, nil
	}

	nResults := opts.NResults
	if nResults <= 0 {
		nResults = p.nResults
	}

	active, scopedSource := p.activeSources(ctx, opts)
	if len(active) == 0 {
		logger.Warnf("retrieval: no searchable collections for query %q", query)
		return []schema.SearchResult{}, nil
	}

	queries := opts.Queries
	if len(queries) == 0 {
		queries = []string{query}
		if opts.Optimize && p.expander != nil {
			queries = p.expander.Optimize(ctx, query, opts.ThreadContext)
		}
	}

	lists := p.fanOut(ctx, queries, active, p.perSourceBudget(nResults, len(active)), scopedSource)

	fuseStart := time.Now()
	merged := p.strategy.Fuse(lists)
	metrics.ObserveFusion(p.strategy.Name(), time.Since(fuseStart).Seconds())

	if len(merged) > nResults {
		merged = merged[:nResults]
	}
	logger.Debugf("retrieval: %d variants x %d sources -> %d merged for %q",
		len(queries), len(active), len(merged), query)
	return merged, ctx.Err()
}

// CollectionCounts returns document counts per source, customer collections
// included. Unreachable collections are reported as -1.
func (p *Provider) CollectionCounts(ctx context.Context) map[string]int64 {
	counts := make(map[string]int64, len(p.sources)+len(p.customers))
	for _, src := range p.sources {
		counts[src.name] = p.count(ctx, src)
	}
	for _, src := range p.customers {
		counts[src.name] = p.count(ctx, src)
	}
	return counts
}

func (p *Provider) count(ctx context.Context, src source) int64 {
	n, err := p.store.Count(ctx, src.collection)
	if err != nil {
		logger.Warnf("retrieval: count collection %s failed, err: %v", src.collection, err)
		return -1
	}
	return n
}

// perSourceBudget spreads the requested result count across the active
// sources, never dipping below the configured per-source floor.
func (p *Provider) perSourceBudget(nResults, numActive int) int {
	perSource := nResults / numActive
	if perSource < p.perSourceMin {
		perSource = p.perSourceMin
	}
	return perSource
}

// activeSources resolves the sources to search: the requested subset or
// every enabled one, plus the scoped customer collection. Collections that
// are empty or unreachable are skipped.
func (p *Provider) activeSources(ctx context.Context, opts SearchOptions) ([]source, string) {
	candidates := p.sources
	if len(opts.Sources) > 0 {
		candidates = make([]source, 0, len(opts.Sources))
		for _, name := range opts.Sources {
			found := false
			for _, src := range p.sources {
				if src.name == name {
					candidates = append(candidates, src)
					found = true
					break
				}
			}
			if !found {
				logger.Warnf("retrieval: unknown source %q requested", name)
			}
		}
	}

	scopedSource := ""
	if opts.ScopeKey != "" {
		if cust, ok := p.customers[opts.ScopeKey]; ok {
			candidates = append(append([]source{}, candidates...), cust)
			scopedSource = cust.name
		} else {
			logger.Warnf("retrieval: unknown scope key %q", opts.ScopeKey)
		}
	}

	active := make([]source, 0, len(candidates))
	for _, src := range candidates {
		n, err := p.store.Count(ctx, src.collection)
		if err != nil {
			logger.Warnf("retrieval: count collection %s failed, err: %v", src.collection, err)
			continue
		}
		if n == 0 {
			continue
		}
		active = append(active, src)
	}
	return active, scopedSource
}

// fanOut searches every (variant, source) pair. Result lists keep
// variant-major, config-source order so first-wins merging is
// deterministic regardless of goroutine completion order.
func (p *Provider) fanOut(ctx context.Context, queries []string, active []source, perSource int, scopedSource string) [][]schema.SearchResult {
	lists := make([][]schema.SearchResult, len(queries)*len(active))

	searchOne := func(slot int, q string, src source) {
		topK := perSource * src.multiplier
		start := time.Now()
		results, err := src.retriever.Search(ctx, q, topK)
		metrics.ObserveRetriever(src.name, time.Since(start).Seconds(), len(results))
		if err != nil {
			logger.Warnf("retrieval: search source %s failed, err: %v", src.name, err)
			return
		}
		p.booster.Apply(results, q, scopedSource)
		lists[slot] = results
	}

	if p.parallel {
		var wg sync.WaitGroup
		for qi, q := range queries {
			for si, src := range active {
				wg.Add(1)
				go func(slot int, q string, src source) {
					defer wg.Done()
					searchOne(slot, q, src)
				}(qi*len(active)+si, q, src)
			}
		}
		wg.Wait()
		return lists
	}

	for qi, q := range queries {
		for si, src := range active {
			searchOne(qi*len(active)+si, q, src)
		}
	}
	return lists
}
