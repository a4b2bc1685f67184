package profile

import (
	"reflect"
	"testing"

	"github.com/ShamanBV/shaman-assistant/config"
)

func testResolver() *Resolver {
	return NewResolver(config.DefaultConfig())
}

func TestResolver_Lookups(t *testing.T) {
	r := testResolver()

	if cust, ok := r.ByKey("takeda"); !ok || cust.Name != "Takeda" {
		t.Errorf("ByKey(takeda) = %v, %v", cust, ok)
	}
	if cust, ok := r.ByKey("TAKEDA"); !ok || cust.Key != "takeda" {
		t.Errorf("Expected case-insensitive key lookup, got %v, %v", cust, ok)
	}
	if _, ok := r.ByKey("pfizer"); ok {
		t.Error("Expected unknown key to miss")
	}

	if cust, ok := r.ByChannel("C07BKGVMSTZ"); !ok || cust.Key != "novartis" {
		t.Errorf("ByChannel = %v, %v", cust, ok)
	}
	if _, ok := r.ByChannel("C000000000"); ok {
		t.Error("Expected unknown channel to miss")
	}

	if cust, ok := r.ByChannelName("Almirall"); !ok || cust.Key != "almirall" {
		t.Errorf("ByChannelName = %v, %v", cust, ok)
	}
}

func TestResolver_Keys(t *testing.T) {
	keys := testResolver().Keys()
	want := []string{"almirall", "novartis", "takeda"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Keys() = %v, want %v", keys, want)
	}
}

func TestNormalize(t *testing.T) {
	r := testResolver()

	prof := r.Normalize(SearchProfile{})
	if prof.NResults != 10 {
		t.Errorf("Expected default NResults 10, got %d", prof.NResults)
	}

	prof = r.Normalize(SearchProfile{NResults: 500})
	if prof.NResults != maxNResults {
		t.Errorf("Expected NResults capped at %d, got %d", maxNResults, prof.NResults)
	}

	prof = r.Normalize(SearchProfile{Sources: []string{" Slack", "slack", "", "confluence"}})
	if !reflect.DeepEqual(prof.Sources, []string{"slack", "confluence"}) {
		t.Errorf("Expected deduped sources, got %v", prof.Sources)
	}
}

func TestNormalize_ScopeResolution(t *testing.T) {
	r := testResolver()

	// Explicit key wins over channel.
	prof := r.Normalize(SearchProfile{ScopeKey: "takeda", Channel: "C07BKGVMSTZ"})
	if prof.ScopeKey != "takeda" {
		t.Errorf("Expected explicit scope to win, got %q", prof.ScopeKey)
	}

	// Unknown explicit key is cleared, then the channel decides.
	prof = r.Normalize(SearchProfile{ScopeKey: "pfizer", Channel: "C07BKGVMSTZ"})
	if prof.ScopeKey != "novartis" {
		t.Errorf("Expected channel fallback after bogus key, got %q", prof.ScopeKey)
	}

	// Non-customer channel leaves the search unscoped.
	prof = r.Normalize(SearchProfile{Channel: "C0GENERAL"})
	if prof.ScopeKey != "" {
		t.Errorf("Expected no scope for unknown channel, got %q", prof.ScopeKey)
	}
}
