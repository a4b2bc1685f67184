// Package profile resolves the customer scope of a question and keeps the
// per-call search shape within sane bounds.
package profile

import (
	"sort"
	"strings"

	"github.com/ShamanBV/shaman-assistant/config"
)

// maxNResults caps how many merged results one call may request.
const maxNResults = 50

// SearchProfile is the per-question search shape before normalization.
type SearchProfile struct {
	// NResults caps the merged result list; 0 selects the configured
	// default.
	NResults int
	// Sources restricts the search to the named sources.
	Sources []string
	// Optimize expands the query into variants before searching.
	Optimize bool
	// Channel is the chat channel the question arrived on; it resolves to
	// a customer scope when the channel belongs to one.
	Channel string
	// ScopeKey names a customer scope directly and wins over Channel.
	ScopeKey string
}

// Resolver maps channels and keys to customers and normalizes search
// profiles.
type Resolver struct {
	cfg      *config.Config
	nResults int
}

// NewResolver wraps the customer table from config.
func NewResolver(cfg *config.Config) *Resolver {
	nResults := cfg.Retrieval.NResults
	if nResults <= 0 {
		nResults = 10
	}
	return &Resolver{cfg: cfg, nResults: nResults}
}

// ByKey returns the customer configured under key.
func (r *Resolver) ByKey(key string) (config.CustomerConfig, bool) {
	if cust, ok := r.cfg.CustomerByKey(key); ok {
		return cust, true
	}
	// Keys are lowercase by convention; tolerate caller casing.
	return r.cfg.CustomerByKey(strings.ToLower(strings.TrimSpace(key)))
}

// ByChannel resolves a chat channel id to its customer.
func (r *Resolver) ByChannel(channelID string) (config.CustomerConfig, bool) {
	key, ok := r.cfg.CustomerByChannel(channelID)
	if !ok {
		return config.CustomerConfig{}, false
	}
	return r.cfg.CustomerByKey(key)
}

// ByChannelName resolves a channel display name to its customer. Message
// metadata stores names, not ids, so both lookups exist.
func (r *Resolver) ByChannelName(name string) (config.CustomerConfig, bool) {
	key, ok := r.cfg.CustomerByChannelName(strings.ToLower(strings.TrimSpace(name)))
	if !ok {
		return config.CustomerConfig{}, false
	}
	return r.cfg.CustomerByKey(key)
}

// Keys lists the configured customer keys, sorted.
func (r *Resolver) Keys() []string {
	keys := make([]string, 0, len(r.cfg.Customers))
	for _, cust := range r.cfg.Customers {
		keys = append(keys, cust.Key)
	}
	sort.Strings(keys)
	return keys
}

// Normalize fills in defaults and resolves the scope: an explicit ScopeKey
// is validated (and cleared when unknown), otherwise the channel decides.
func (r *Resolver) Normalize(prof SearchProfile) SearchProfile {
	if prof.NResults <= 0 {
		prof.NResults = r.nResults
	}
	if prof.NResults > maxNResults {
		prof.NResults = maxNResults
	}
	prof.Sources = dedupeSources(prof.Sources)

	if prof.ScopeKey != "" {
		if cust, ok := r.ByKey(prof.ScopeKey); ok {
			prof.ScopeKey = cust.Key
		} else {
			prof.ScopeKey = ""
		}
	}
	if prof.ScopeKey == "" && prof.Channel != "" {
		if cust, ok := r.ByChannel(prof.Channel); ok {
			prof.ScopeKey = cust.Key
		}
	}
	return prof
}

func dedupeSources(sources []string) []string {
	if len(sources) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(sources))
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
