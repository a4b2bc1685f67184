package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the assistant core.
type Config struct {
	Assistant  AssistantConfig   `json:"assistant" yaml:"assistant"`
	LLM        LLMConfig         `json:"llm" yaml:"llm"`
	Embedding  EmbeddingConfig   `json:"embedding" yaml:"embedding"`
	VectorDB   VectorDBConfig    `json:"vectordb" yaml:"vectordb"`
	Cache      CacheConfig       `json:"cache" yaml:"cache"`
	Memory     MemoryConfig      `json:"memory" yaml:"memory"`
	Retrieval  RetrievalConfig   `json:"retrieval" yaml:"retrieval"`
	Ingest     IngestConfig      `json:"ingest,omitempty" yaml:"ingest,omitempty"`
	Classifier ClassifierConfig  `json:"classifier" yaml:"classifier"`
	Optimizer  OptimizerConfig   `json:"optimizer" yaml:"optimizer"`
	Answer     AnswerConfig      `json:"answer" yaml:"answer"`
	Router     RouterConfig      `json:"router,omitempty" yaml:"router,omitempty"`
	Customers  []CustomerConfig  `json:"customers,omitempty" yaml:"customers,omitempty"`
	HTTPClient *HTTPClientConfig `json:"http_client,omitempty" yaml:"http_client,omitempty"`
}

// AssistantConfig holds orchestrator-level settings.
type AssistantConfig struct {
	// ConfidenceThreshold is the minimum classification confidence for
	// canned bug/enhancement routing.
	ConfidenceThreshold float64 `json:"confidence_threshold,omitempty" yaml:"confidence_threshold,omitempty"`
	BugReportURL        string  `json:"bug_report_url,omitempty" yaml:"bug_report_url,omitempty"`
	EnhancementURL      string  `json:"enhancement_url,omitempty" yaml:"enhancement_url,omitempty"`
}

// LLMConfig defines configuration for the completion model.
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"` // Available options: openai (any OpenAI-compatible endpoint via base_url)
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// EmbeddingConfig defines configuration for the embedding model.
type EmbeddingConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: openai (any OpenAI-compatible endpoint via base_url)
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// VectorDBConfig defines configuration for the vector store backend.
type VectorDBConfig struct {
	Provider string `json:"provider" yaml:"provider"` // Available options: milvus, memory
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	// ContentMaxLength caps the stored content field (milvus varchar limit).
	ContentMaxLength int `json:"content_max_length,omitempty" yaml:"content_max_length,omitempty"`
}

// CacheConfig controls the normalized response cache.
type CacheConfig struct {
	Enable     *bool `json:"enable,omitempty" yaml:"enable,omitempty"`
	TTLSeconds int   `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
	MaxEntries int   `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
}

// Enabled reports whether the cache is on; nil means on.
func (c CacheConfig) Enabled() bool { return c.Enable == nil || *c.Enable }

// MemoryConfig controls conversation memory.
type MemoryConfig struct {
	Store       string      `json:"store,omitempty" yaml:"store,omitempty"` // memory | redis
	LastNRounds int         `json:"last_n_rounds,omitempty" yaml:"last_n_rounds,omitempty"`
	MaxRounds   int         `json:"max_rounds,omitempty" yaml:"max_rounds,omitempty"`
	TTLSeconds  int         `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
	Redis       RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
}

// RedisConfig carries connection settings for the redis-backed stores.
type RedisConfig struct {
	Address  string `json:"address,omitempty" yaml:"address,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
}

// RetrievalConfig controls the multi-source retriever.
type RetrievalConfig struct {
	// NResults is the default global top-K for a search.
	NResults int `json:"n_results,omitempty" yaml:"n_results,omitempty"`
	// PerSourceMin is the floor of the per-collection candidate budget.
	PerSourceMin int `json:"per_source_min,omitempty" yaml:"per_source_min,omitempty"`
	// ScopeBoost is added to hits from a caller-scoped private collection.
	ScopeBoost float64 `json:"scope_boost,omitempty" yaml:"scope_boost,omitempty"`
	// Parallel fans the per-collection queries out across goroutines.
	Parallel bool           `json:"parallel,omitempty" yaml:"parallel,omitempty"`
	Fusion   FusionConfig   `json:"fusion,omitempty" yaml:"fusion,omitempty"`
	Sources  []SourceConfig `json:"sources" yaml:"sources"`
}

// FusionConfig selects the merge strategy for multi-source candidates.
type FusionConfig struct {
	Strategy string         `json:"strategy,omitempty" yaml:"strategy,omitempty"` // first_wins | max_score | rrf
	Params   map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// SourceConfig describes one knowledge base collection.
type SourceConfig struct {
	Name       string `json:"name" yaml:"name"`
	Collection string `json:"collection" yaml:"collection"`
	Enable     *bool  `json:"enable,omitempty" yaml:"enable,omitempty"`
	// BudgetMultiplier scales the per-source candidate budget. Finely
	// chunked collections need more candidates to surface whole pages.
	BudgetMultiplier int       `json:"budget_multiplier,omitempty" yaml:"budget_multiplier,omitempty"`
	Boost            BoostRule `json:"boost,omitempty" yaml:"boost,omitempty"`
}

// Enabled reports whether the source participates in default searches.
func (s SourceConfig) Enabled() bool { return s.Enable == nil || *s.Enable }

// BoostRule is a declarative relevance adjustment for one source. Flat is
// always added; KeywordBoost is added when the raw query contains any of
// Keywords.
type BoostRule struct {
	Flat         float64  `json:"flat,omitempty" yaml:"flat,omitempty"`
	KeywordBoost float64  `json:"keyword_boost,omitempty" yaml:"keyword_boost,omitempty"`
	Keywords     []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// IngestConfig controls the document ingestion pipeline.
type IngestConfig struct {
	// BatchSize is the number of documents added to the store per call.
	BatchSize int            `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	Splitter  SplitterConfig `json:"splitter,omitempty" yaml:"splitter,omitempty"`
}

// SplitterConfig selects and tunes the text splitter.
type SplitterConfig struct {
	Type      string `json:"type,omitempty" yaml:"type,omitempty"` // character | token
	ChunkSize int    `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty"`
	Overlap   int    `json:"overlap,omitempty" yaml:"overlap,omitempty"`
	// Encoding is the tiktoken encoding for the token splitter.
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty"`
}

// ClassifierConfig selects the intent classification backend.
type ClassifierConfig struct {
	Provider  string `json:"provider,omitempty" yaml:"provider,omitempty"` // llm | http
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	TimeoutMS int    `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// OptimizerConfig controls query expansion.
type OptimizerConfig struct {
	Enable      *bool               `json:"enable,omitempty" yaml:"enable,omitempty"`
	MaxVariants int                 `json:"max_variants,omitempty" yaml:"max_variants,omitempty"`
	Acronyms    map[string]string   `json:"acronyms,omitempty" yaml:"acronyms,omitempty"`
	Synonyms    map[string][]string `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
}

// Enabled reports whether query optimization runs; nil means on.
func (o OptimizerConfig) Enabled() bool { return o.Enable == nil || *o.Enable }

// AnswerConfig controls context assembly and generation.
type AnswerConfig struct {
	// ExcerptChars is the per-source excerpt budget in the prompt.
	ExcerptChars int `json:"excerpt_chars,omitempty" yaml:"excerpt_chars,omitempty"`
	// MaxSources caps the Answer's source list.
	MaxSources int `json:"max_sources,omitempty" yaml:"max_sources,omitempty"`
	// LowConfidenceBelow prefixes a disclaimer when classification
	// confidence is under this value.
	LowConfidenceBelow float64 `json:"low_confidence_below,omitempty" yaml:"low_confidence_below,omitempty"`
	// DomainKnowledge is the static block every answer must be consistent
	// with. Empty selects the built-in default.
	DomainKnowledge string `json:"domain_knowledge,omitempty" yaml:"domain_knowledge,omitempty"`
}

// RouterConfig holds declarative routing rules evaluated in order.
type RouterConfig struct {
	Rules []RouterRule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// RouterRule routes one intent to an action when confidence is at or above
// MinConfidence. Action is one of: canned_bug, canned_enhancement,
// greeting, clarify, rag.
type RouterRule struct {
	Intent        string  `json:"intent" yaml:"intent"`
	MinConfidence float64 `json:"min_confidence,omitempty" yaml:"min_confidence,omitempty"`
	Action        string  `json:"action" yaml:"action"`
}

// CustomerConfig maps a customer to its chat channels and private docs
// collection.
type CustomerConfig struct {
	Key          string   `json:"key" yaml:"key"`
	Name         string   `json:"name" yaml:"name"`
	Channels     []string `json:"channels,omitempty" yaml:"channels,omitempty"`
	ChannelNames []string `json:"channel_names,omitempty" yaml:"channel_names,omitempty"`
	Collection   string   `json:"collection,omitempty" yaml:"collection,omitempty"`
}

// HTTPClientConfig tunes the shared outbound HTTP client.
type HTTPClientConfig struct {
	TimeoutMS        int      `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	Retry            int      `json:"retry,omitempty" yaml:"retry,omitempty"`
	BackoffBaseMS    int      `json:"backoff_base_ms,omitempty" yaml:"backoff_base_ms,omitempty"`
	BackoffMaxMS     int      `json:"backoff_max_ms,omitempty" yaml:"backoff_max_ms,omitempty"`
	MaxFailures      int      `json:"max_failures,omitempty" yaml:"max_failures,omitempty"`
	CircuitOpenMS    int      `json:"circuit_open_ms,omitempty" yaml:"circuit_open_ms,omitempty"`
	AllowedHosts     []string `json:"allowed_hosts,omitempty" yaml:"allowed_hosts,omitempty"`
	FollowRedirects  bool     `json:"follow_redirects,omitempty" yaml:"follow_redirects,omitempty"`
	MaxIdleConns     int      `json:"max_idle_conns,omitempty" yaml:"max_idle_conns,omitempty"`
	DisableKeepAlive bool     `json:"disable_keep_alive,omitempty" yaml:"disable_keep_alive,omitempty"`
}

// LoadConfig unmarshals YAML over the defaults and validates the result.
func LoadConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config failed, err: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CustomerByKey returns the customer with the given key.
func (c *Config) CustomerByKey(key string) (CustomerConfig, bool) {
	for _, cust := range c.Customers {
		if cust.Key == key {
			return cust, true
		}
	}
	return CustomerConfig{}, false
}

// CustomerByChannel resolves a chat channel id to a customer key.
func (c *Config) CustomerByChannel(channelID string) (string, bool) {
	for _, cust := range c.Customers {
		for _, ch := range cust.Channels {
			if ch == channelID {
				return cust.Key, true
			}
		}
	}
	return "", false
}

// CustomerByChannelName resolves a chat channel name to a customer key.
// Chat message metadata stores channel names, not ids.
func (c *Config) CustomerByChannelName(channelName string) (string, bool) {
	for _, cust := range c.Customers {
		for _, ch := range cust.ChannelNames {
			if ch == channelName {
				return cust.Key, true
			}
		}
	}
	return "", false
}

// SourceByName returns the source config with the given name.
func (c *Config) SourceByName(name string) (SourceConfig, bool) {
	for _, src := range c.Retrieval.Sources {
		if src.Name == name {
			return src, true
		}
	}
	return SourceConfig{}, false
}
