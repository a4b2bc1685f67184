// Package assistant answers support questions over a multi-source knowledge
// base. One question flows cache check, intent classification, routing,
// multi-source retrieval, answer generation, cache store; canned intents and
// ambiguous questions short-circuit before retrieval.
package assistant

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ShamanBV/shaman-assistant/answer"
	"github.com/ShamanBV/shaman-assistant/cache"
	"github.com/ShamanBV/shaman-assistant/classify"
	"github.com/ShamanBV/shaman-assistant/common/httpx"
	"github.com/ShamanBV/shaman-assistant/common/logger"
	"github.com/ShamanBV/shaman-assistant/config"
	"github.com/ShamanBV/shaman-assistant/embedding"
	"github.com/ShamanBV/shaman-assistant/feedback"
	"github.com/ShamanBV/shaman-assistant/ingest"
	"github.com/ShamanBV/shaman-assistant/llm"
	"github.com/ShamanBV/shaman-assistant/memory"
	"github.com/ShamanBV/shaman-assistant/metrics"
	"github.com/ShamanBV/shaman-assistant/optimize"
	"github.com/ShamanBV/shaman-assistant/profile"
	"github.com/ShamanBV/shaman-assistant/retrieval"
	"github.com/ShamanBV/shaman-assistant/router"
	"github.com/ShamanBV/shaman-assistant/schema"
	"github.com/ShamanBV/shaman-assistant/textsplitter"
	"github.com/ShamanBV/shaman-assistant/vectordb"
)

// Client is the assistant's front door. One instance serves many questions
// concurrently; the response cache is the only shared mutable state.
type Client struct {
	cfg        *config.Config
	splitter   textsplitter.TextSplitter
	embedder   embedding.Provider
	store      vectordb.VectorStoreProvider
	llm        llm.Provider
	classifier classify.Classifier
	optimizer  *optimize.Optimizer
	retrieval  *retrieval.Provider
	generator  *answer.Generator
	router     *router.Router
	resolver   *profile.Resolver
	cache      *cache.ResponseCache
	memory     memory.ConversationStore
	tracker    *feedback.Tracker
	syncer     *ingest.Syncer
}

// ProcessOptions tune one Process call beyond the plain question.
type ProcessOptions struct {
	// SkipCache bypasses the cache lookup for this call; the result is
	// still stored.
	SkipCache bool
	// ThreadID keys conversation memory; empty disables follow-up context.
	ThreadID string
	// Channel is the chat channel the question arrived on; customer
	// channels scope the search to that customer's collection.
	Channel string
	// ScopeKey names a customer scope directly and wins over Channel.
	ScopeKey string
	// Sources restricts retrieval to the named sources.
	Sources []string
}

// Stats is the assistant's operational snapshot.
type Stats struct {
	KnowledgeBase map[string]int64  `json:"knowledge_base"`
	Cache         cache.Stats       `json:"cache"`
	Intents       feedback.Snapshot `json:"intents"`
}

// NewClient wires the full pipeline from config. Construction fails fast:
// any provider that cannot be built aborts the chain.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{cfg: cfg}

	splitter, err := textsplitter.NewTextSplitter(&cfg.Ingest.Splitter)
	if err != nil {
		return nil, fmt.Errorf("create text splitter failed, err: %w", err)
	}
	c.splitter = splitter

	c.embedder, err = embedding.NewEmbeddingProvider(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("create embedding provider failed, err: %w", err)
	}

	if cfg.LLM.Provider != "" {
		c.llm, err = llm.NewLLMProvider(cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("create llm provider failed, err: %w", err)
		}
	}

	c.store, err = vectordb.NewVectorDBProvider(&cfg.VectorDB, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("create vector store provider failed, err: %w", err)
	}

	c.classifier, err = classify.NewClassifier(cfg, c.llm, httpx.NewFromConfig(cfg.HTTPClient))
	if err != nil {
		return nil, fmt.Errorf("create classifier failed, err: %w", err)
	}

	c.optimizer = optimize.NewOptimizer(cfg.Optimizer, c.llm)

	c.retrieval, err = retrieval.NewProvider(cfg, c.embedder, c.store, c.optimizer)
	if err != nil {
		return nil, fmt.Errorf("create retrieval provider failed, err: %w", err)
	}

	c.memory, err = memory.NewStore(cfg.Memory)
	if err != nil {
		return nil, fmt.Errorf("create memory store failed, err: %w", err)
	}

	c.generator = answer.NewGenerator(c.llm, cfg)
	c.router = router.New(cfg.Router)
	c.resolver = profile.NewResolver(cfg)
	c.tracker = feedback.NewTracker(0)
	c.syncer = ingest.NewSyncer(c.store, c.embedder, cfg.Ingest.BatchSize)

	if cfg.Cache.Enabled() {
		ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
		c.cache = cache.NewResponseCache(cfg.Cache.MaxEntries, ttl)
	}
	return c, nil
}

// Process answers one question. See ProcessWithOptions for the extended
// surface.
func (c *Client) Process(ctx context.Context, question string, skipCache bool) (*schema.Answer, error) {
	return c.ProcessWithOptions(ctx, question, ProcessOptions{SkipCache: skipCache})
}

// ProcessWithOptions answers one question with thread memory and customer
// scoping. Pipeline failures after classification are logged and converted
// to an apologetic answer rather than an error.
func (c *Client) ProcessWithOptions(ctx context.Context, question string, opts ProcessOptions) (*schema.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question is empty")
	}

	qm := metrics.NewQueryMetrics(question)
	ans, intent, err := c.process(ctx, question, opts, qm)
	qm.Finish(err)
	qm.LogJSON()

	if err != nil {
		logger.Errorf("assistant: answer question failed, err: %v", err)
		c.tracker.Record(intent, feedback.OutcomeFailed)
		return &schema.Answer{
			Text:             apologyText,
			Intent:           intent,
			OriginalQuestion: question,
		}, nil
	}
	return ans, nil
}

// process runs the routing state machine. The returned intent is valid even
// on error so the boundary can still label the outcome.
func (c *Client) process(ctx context.Context, question string, opts ProcessOptions, qm *metrics.QueryMetrics) (*schema.Answer, schema.Intent, error) {
	// 1. Cache.
	if c.cache != nil && !opts.SkipCache {
		if cached, ok := c.cache.Get(question); ok {
			cached.Cached = true
			qm.CacheHit = true
			qm.Intent = cached.Intent.String()
			qm.Route = "cache"
			metrics.IncCache(true)
			metrics.IncQuestion(cached.Intent.String(), "cache")
			c.tracker.Record(cached.Intent, feedback.OutcomeCached)
			return cached, cached.Intent, nil
		}
		metrics.IncCache(false)
	}

	// 2. Conversation context.
	threadContext := ""
	if opts.ThreadID != "" && c.memory != nil {
		rounds, err := c.memory.LastRounds(ctx, opts.ThreadID, c.cfg.Memory.LastNRounds)
		if err != nil {
			logger.Warnf("assistant: load thread %s failed, err: %v", opts.ThreadID, err)
		}
		threadContext = memory.FormatContext(rounds)
	}

	// 3. Classification. The result is usable even when the backend
	// degraded; the error is already logged there.
	classifyStart := time.Now()
	result, _ := c.classifier.Classify(ctx, question, threadContext)
	qm.ClassifyLatencyMs = time.Since(classifyStart).Milliseconds()
	qm.Intent = result.Intent.String()
	qm.IntentConfidence = result.Confidence

	// 4. Routing.
	decision := c.router.Route(result)
	qm.Route = string(decision.Action)
	metrics.IncQuestion(result.Intent.String(), string(decision.Action))
	logger.Debugf("assistant: intent=%s confidence=%.2f action=%s (%s)",
		result.Intent, result.Confidence, decision.Action, decision.Reason)

	switch decision.Action {
	case router.ActionGreeting:
		return c.canned(result, question, greetingText), result.Intent, nil
	case router.ActionCannedBug:
		return c.canned(result, question, bugResponse(c.cfg.Assistant.BugReportURL)), result.Intent, nil
	case router.ActionCannedEnhancement:
		return c.canned(result, question, enhancementResponse(c.cfg.Assistant.EnhancementURL)), result.Intent, nil
	case router.ActionClarify:
		c.tracker.Record(result.Intent, feedback.OutcomeClarified)
		return &schema.Answer{
			Text:             clarificationResponse(result.ClarifyingQuestions),
			Intent:           result.Intent,
			OriginalQuestion: question,
		}, result.Intent, nil
	}

	// 5. Retrieval.
	prof := c.resolver.Normalize(profile.SearchProfile{
		Sources:  opts.Sources,
		Channel:  opts.Channel,
		ScopeKey: opts.ScopeKey,
	})

	variants := []string{question}
	if c.optimizer != nil {
		variants = c.optimizer.Optimize(ctx, question, threadContext)
	}
	qm.QueryVariants = len(variants)

	retrieveStart := time.Now()
	results, err := c.retrieval.Search(ctx, question, retrieval.SearchOptions{
		NResults:      prof.NResults,
		Sources:       prof.Sources,
		Queries:       variants,
		ThreadContext: threadContext,
		ScopeKey:      prof.ScopeKey,
	})
	qm.RetrieveLatencyMs = time.Since(retrieveStart).Milliseconds()
	qm.ResultCount = len(results)
	if err != nil {
		return nil, result.Intent, fmt.Errorf("search knowledge base failed, err: %w", err)
	}

	// 6. Generation.
	generateStart := time.Now()
	text, err := c.generator.Generate(ctx, question, results, threadContext)
	qm.GenerateLatencyMs = time.Since(generateStart).Milliseconds()
	if err != nil {
		return nil, result.Intent, err
	}

	text = intentBanner(result) + text
	if result.Confidence < c.cfg.Answer.LowConfidenceBelow {
		text = lowConfidenceDisclaimer + text
	}
	if warning := c.customerMixWarning(question, results, prof.ScopeKey); warning != "" {
		text = warning + text
	}

	ans := &schema.Answer{
		Text:             text,
		Sources:          capSources(results, c.cfg.Answer.MaxSources),
		Intent:           result.Intent,
		OriginalQuestion: question,
		OptimizedQuery:   optimizedQuery(question, variants),
	}

	// 7. Bookkeeping: memory round, cache store (only after generation
	// succeeded), outcome tracking.
	if opts.ThreadID != "" && c.memory != nil {
		round := memory.Round{Question: question, Answer: ans.Text, Timestamp: time.Now()}
		if err := c.memory.SaveRound(ctx, opts.ThreadID, round); err != nil {
			logger.Warnf("assistant: save thread %s failed, err: %v", opts.ThreadID, err)
		}
	}
	if c.cache != nil {
		c.cache.Set(question, ans)
	}
	c.tracker.Record(result.Intent, feedback.OutcomeAnswered)
	return ans, result.Intent, nil
}

func (c *Client) canned(result *schema.ClassificationResult, question, text string) *schema.Answer {
	c.tracker.Record(result.Intent, feedback.OutcomeCanned)
	return &schema.Answer{
		Text:             text,
		Intent:           result.Intent,
		OriginalQuestion: question,
	}
}

// Search exposes raw retrieval without classification or generation.
func (c *Client) Search(ctx context.Context, query string, opts retrieval.SearchOptions) ([]schema.SearchResult, error) {
	return c.retrieval.Search(ctx, query, opts)
}

// Ingest chunks, embeds and indexes documents into the named source's
// collection. Returns how many chunks were newly added.
func (c *Client) Ingest(ctx context.Context, source string, docs []schema.Document) (int, error) {
	src, ok := c.cfg.SourceByName(source)
	if !ok {
		return 0, fmt.Errorf("unknown source: %s", source)
	}
	ing := ingest.Chunked(ingest.NewSliceIngestor(source, docs), c.splitter)
	return c.syncer.Sync(ctx, ing, src.Collection)
}

// GetStats reports collection counts, cache effectiveness and the rolling
// intent mix.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		KnowledgeBase: c.retrieval.CollectionCounts(ctx),
		Intents:       c.tracker.Snapshot(),
	}
	if c.cache != nil {
		stats.Cache = c.cache.Stats()
	}
	return stats, nil
}

// ClearThread drops the conversation memory for a thread.
func (c *Client) ClearThread(ctx context.Context, threadID string) error {
	if c.memory == nil {
		return nil
	}
	return c.memory.Clear(ctx, threadID)
}

// Close releases the vector store connection and any other held resources.
func (c *Client) Close() error {
	var firstErr error
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			firstErr = err
		}
	}
	if closer, ok := c.memory.(io.Closer); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// customerMixWarning flags answers that lean on another customer's channel
// history for topics where workflows differ per customer.
func (c *Client) customerMixWarning(question string, results []schema.SearchResult, scopeKey string) string {
	if !isCustomerSpecificTopic(question) {
		return ""
	}
	var names []string
	seen := make(map[string]bool)
	for _, r := range results {
		if r.Source != schema.SourceSlack {
			continue
		}
		channel := r.Document.MetaString("channel")
		if channel == "" {
			continue
		}
		cust, ok := c.resolver.ByChannelName(channel)
		if !ok || cust.Key == scopeKey || seen[cust.Key] {
			continue
		}
		seen[cust.Key] = true
		names = append(names, cust.Name)
	}
	if len(names) == 0 {
		return ""
	}
	return fmt.Sprintf("⚠️ _Note: Some information below comes from **%s** channel(s). "+
		"Veeva workflows, integrations, and configurations may differ per customer._\n\n",
		strings.Join(names, ", "))
}

// customerSpecificKeywords mark topics where per-customer configuration
// matters enough to warn about cross-channel sources.
var customerSpecificKeywords = []string{
	"veeva", "vault", "vvpm", "promomats", "workflow", "integration",
	"sync", "mlr", "lifecycle", "staging", "crm",
}

func isCustomerSpecificTopic(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range customerSpecificKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

func capSources(results []schema.SearchResult, max int) []schema.SearchResult {
	if max <= 0 {
		max = 5
	}
	if len(results) > max {
		results = results[:max]
	}
	return schema.CloneResults(results)
}

func optimizedQuery(question string, variants []string) string {
	for _, v := range variants {
		if v != question {
			return v
		}
	}
	return ""
}
