package optimize

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ShamanBV/shaman-assistant/config"
)

type mockProvider struct {
	response string
	err      error
	prompt   string
}

func (m *mockProvider) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.response, m.err
}

func (m *mockProvider) GetProviderType() string { return "mock" }

func optimizerConfig() config.OptimizerConfig {
	return config.OptimizerConfig{
		MaxVariants: 4,
		Acronyms: map[string]string{
			"CLM": "Closed Loop Marketing CLM presentation",
		},
		Synonyms: map[string][]string{
			"sync":  {"synchronization", "syncing"},
			"error": {"issue", "problem"},
		},
	}
}

func TestOptimizeUsesLLMVariants(t *testing.T) {
	provider := &mockProvider{response: "closed loop marketing sync veeva\nCLM presentation vault integration\nhow to sync CLM presentations"}
	o := NewOptimizer(optimizerConfig(), provider)

	got := o.Optimize(context.Background(), "How do I sync CLM?", "")

	want := []string{
		"How do I sync CLM?",
		"closed loop marketing sync veeva",
		"CLM presentation vault integration",
		"how to sync CLM presentations",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Optimize() = %v, want %v", got, want)
	}
	if !strings.Contains(provider.prompt, "USER QUESTION: How do I sync CLM?") {
		t.Error("prompt must embed the question")
	}
}

func TestOptimizeCapsVariantsAndDedups(t *testing.T) {
	provider := &mockProvider{response: "v1\nv1\nv2\nv3\nv4\nv5"}
	o := NewOptimizer(optimizerConfig(), provider)

	got := o.Optimize(context.Background(), "question", "")

	if len(got) != 4 {
		t.Fatalf("got %d variants, want 4", len(got))
	}
	if got[0] != "question" {
		t.Errorf("first variant = %q, want the original question", got[0])
	}
	seen := map[string]bool{}
	for _, q := range got {
		if seen[q] {
			t.Errorf("duplicate variant %q", q)
		}
		seen[q] = true
	}
}

func TestOptimizeFallsBackOnLLMFailure(t *testing.T) {
	provider := &mockProvider{err: errors.New("timeout")}
	o := NewOptimizer(optimizerConfig(), provider)

	got := o.Optimize(context.Background(), "CLM sync error", "")

	if len(got) == 0 {
		t.Fatal("Optimize() must never return an empty slice")
	}
	if got[0] != "CLM sync error" {
		t.Errorf("first variant = %q, want the original question", got[0])
	}
	if len(got) > 3 {
		t.Errorf("static expansion returned %d variants, want <= 3", len(got))
	}
}

func TestStaticExpansionIsDeterministic(t *testing.T) {
	o := NewOptimizer(optimizerConfig(), nil)

	first := o.Optimize(context.Background(), "CLM sync error in vault", "")
	for i := 0; i < 10; i++ {
		again := o.Optimize(context.Background(), "CLM sync error in vault", "")
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, first, again)
		}
	}
}

func TestStaticExpansionExpandsAcronymsAndSynonyms(t *testing.T) {
	o := NewOptimizer(optimizerConfig(), nil)

	got := o.Optimize(context.Background(), "CLM sync failed", "")

	if got[0] != "CLM sync failed" {
		t.Fatalf("first = %q, want original", got[0])
	}
	foundAcronym := false
	foundSynonym := false
	for _, q := range got[1:] {
		if strings.Contains(q, "Closed Loop Marketing") {
			foundAcronym = true
		}
		if strings.Contains(q, "synchronization") {
			foundSynonym = true
		}
	}
	if !foundAcronym {
		t.Errorf("no acronym expansion in %v", got)
	}
	if !foundSynonym {
		t.Errorf("no synonym variant in %v", got)
	}
}

func TestOptimizeDisabled(t *testing.T) {
	cfg := optimizerConfig()
	off := false
	cfg.Enable = &off
	o := NewOptimizer(cfg, &mockProvider{response: "v1\nv2\nv3"})

	got := o.Optimize(context.Background(), "CLM sync", "")

	if !reflect.DeepEqual(got, []string{"CLM sync"}) {
		t.Errorf("Optimize() = %v, want just the original", got)
	}
}

func TestPromptCarriesThreadContext(t *testing.T) {
	provider := &mockProvider{response: "v1"}
	o := NewOptimizer(optimizerConfig(), provider)

	o.Optimize(context.Background(), "what about the export?", "User: How do I sync CLM?")

	if !strings.Contains(provider.prompt, "Previous conversation context:") {
		t.Error("prompt must include the context hint block")
	}
	if !strings.Contains(provider.prompt, "User: How do I sync CLM?") {
		t.Error("prompt must embed the thread context")
	}
}
