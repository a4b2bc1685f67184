package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Message))
	}
	return b.String()
}

// Validate validates the complete configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs = append(errs, c.validateAssistant()...)
	errs = append(errs, c.validateEmbedding()...)
	errs = append(errs, c.validateVectorDB()...)
	errs = append(errs, c.validateCache()...)
	errs = append(errs, c.validateRetrieval()...)
	errs = append(errs, c.validateIngest()...)
	errs = append(errs, c.validateClassifier()...)
	errs = append(errs, c.validateMemory()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateAssistant() ValidationErrors {
	var errs ValidationErrors

	if c.Assistant.ConfidenceThreshold < 0 || c.Assistant.ConfidenceThreshold > 1 {
		errs = append(errs, ValidationError{
			Field:   "assistant.confidence_threshold",
			Message: fmt.Sprintf("assistant.confidence_threshold must be in [0, 1], got %.2f", c.Assistant.ConfidenceThreshold),
		})
	}

	return errs
}

// validateEmbedding validates embedding configuration
func (c *Config) validateEmbedding() ValidationErrors {
	var errs ValidationErrors

	if c.Embedding.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.provider",
			Message: "embedding provider is required",
		})
	}

	if c.Embedding.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.model",
			Message: "embedding model is required",
		})
	}

	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions),
		})
	}

	// Validate dimensions are reasonable (typical range: 128-4096)
	if c.Embedding.Dimensions > 0 && (c.Embedding.Dimensions < 128 || c.Embedding.Dimensions > 4096) {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions %d is outside typical range [128, 4096]", c.Embedding.Dimensions),
		})
	}

	return errs
}

// validateVectorDB validates vector database configuration
func (c *Config) validateVectorDB() ValidationErrors {
	var errs ValidationErrors

	if c.VectorDB.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "vectordb.provider",
			Message: "vectordb provider is required",
		})
	}

	// Provider-specific validations
	switch strings.ToLower(c.VectorDB.Provider) {
	case "milvus":
		if c.VectorDB.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "vectordb.host",
				Message: fmt.Sprintf("vectordb host is required for %s provider", c.VectorDB.Provider),
			})
		}
	case "memory", "":
	default:
		errs = append(errs, ValidationError{
			Field:   "vectordb.provider",
			Message: fmt.Sprintf("unsupported vectordb provider: %s", c.VectorDB.Provider),
		})
	}

	return errs
}

func (c *Config) validateCache() ValidationErrors {
	var errs ValidationErrors

	if c.Cache.TTLSeconds <= 0 {
		errs = append(errs, ValidationError{
			Field:   "cache.ttl_seconds",
			Message: fmt.Sprintf("cache.ttl_seconds must be positive, got %d", c.Cache.TTLSeconds),
		})
	}

	if c.Cache.MaxEntries < 0 {
		errs = append(errs, ValidationError{
			Field:   "cache.max_entries",
			Message: fmt.Sprintf("cache.max_entries must be non-negative, got %d", c.Cache.MaxEntries),
		})
	}

	return errs
}

func (c *Config) validateRetrieval() ValidationErrors {
	var errs ValidationErrors

	if c.Retrieval.NResults <= 0 {
		errs = append(errs, ValidationError{
			Field:   "retrieval.n_results",
			Message: fmt.Sprintf("retrieval.n_results must be positive, got %d", c.Retrieval.NResults),
		})
	}

	if c.Retrieval.NResults > 100 {
		errs = append(errs, ValidationError{
			Field:   "retrieval.n_results",
			Message: fmt.Sprintf("retrieval.n_results %d is too large (max recommended: 100)", c.Retrieval.NResults),
		})
	}

	if len(c.Retrieval.Sources) == 0 {
		errs = append(errs, ValidationError{
			Field:   "retrieval.sources",
			Message: "at least one retrieval source is required",
		})
	}

	seen := make(map[string]bool, len(c.Retrieval.Sources))
	for i, src := range c.Retrieval.Sources {
		if src.Name == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("retrieval.sources[%d].name", i),
				Message: "source name is required",
			})
		}
		if src.Collection == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("retrieval.sources[%d].collection", i),
				Message: fmt.Sprintf("collection name is required for source %q", src.Name),
			})
		}
		if seen[src.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("retrieval.sources[%d].name", i),
				Message: fmt.Sprintf("duplicate source name %q", src.Name),
			})
		}
		seen[src.Name] = true

		if src.BudgetMultiplier < 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("retrieval.sources[%d].budget_multiplier", i),
				Message: fmt.Sprintf("budget_multiplier must be non-negative, got %d", src.BudgetMultiplier),
			})
		}

		for _, v := range []struct {
			field string
			val   float64
		}{
			{"boost.flat", src.Boost.Flat},
			{"boost.keyword_boost", src.Boost.KeywordBoost},
		} {
			if v.val < -1 || v.val > 1 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("retrieval.sources[%d].%s", i, v.field),
					Message: fmt.Sprintf("%s must be in [-1, 1], got %.2f", v.field, v.val),
				})
			}
		}
	}

	if c.Retrieval.ScopeBoost < -1 || c.Retrieval.ScopeBoost > 1 {
		errs = append(errs, ValidationError{
			Field:   "retrieval.scope_boost",
			Message: fmt.Sprintf("retrieval.scope_boost must be in [-1, 1], got %.2f", c.Retrieval.ScopeBoost),
		})
	}

	return errs
}

func (c *Config) validateIngest() ValidationErrors {
	var errs ValidationErrors

	if c.Ingest.BatchSize < 0 {
		errs = append(errs, ValidationError{
			Field:   "ingest.batch_size",
			Message: fmt.Sprintf("ingest.batch_size must be non-negative, got %d", c.Ingest.BatchSize),
		})
	}

	sp := c.Ingest.Splitter
	switch sp.Type {
	case "", "character", "token":
	default:
		errs = append(errs, ValidationError{
			Field:   "ingest.splitter.type",
			Message: fmt.Sprintf("unsupported splitter type: %s", sp.Type),
		})
	}
	if sp.ChunkSize < 0 {
		errs = append(errs, ValidationError{
			Field:   "ingest.splitter.chunk_size",
			Message: fmt.Sprintf("splitter chunk_size must be non-negative, got %d", sp.ChunkSize),
		})
	}
	if sp.ChunkSize > 0 && sp.Overlap >= sp.ChunkSize {
		errs = append(errs, ValidationError{
			Field:   "ingest.splitter.overlap",
			Message: fmt.Sprintf("splitter overlap %d must be smaller than chunk_size %d", sp.Overlap, sp.ChunkSize),
		})
	}

	return errs
}

func (c *Config) validateClassifier() ValidationErrors {
	var errs ValidationErrors

	switch c.Classifier.Provider {
	case "", "llm":
	case "http":
		if c.Classifier.Endpoint == "" {
			errs = append(errs, ValidationError{
				Field:   "classifier.endpoint",
				Message: "classifier endpoint is required when provider is http",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "classifier.provider",
			Message: fmt.Sprintf("unsupported classifier provider: %s", c.Classifier.Provider),
		})
	}

	return errs
}

func (c *Config) validateMemory() ValidationErrors {
	var errs ValidationErrors

	switch c.Memory.Store {
	case "", "memory":
	case "redis":
		if c.Memory.Redis.Address == "" {
			errs = append(errs, ValidationError{
				Field:   "memory.redis.address",
				Message: "redis address is required when memory store is redis",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "memory.store",
			Message: fmt.Sprintf("unsupported memory store: %s", c.Memory.Store),
		})
	}

	return errs
}
