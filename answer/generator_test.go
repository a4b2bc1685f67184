package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ShamanBV/shaman-assistant/config"
	"github.com/ShamanBV/shaman-assistant/schema"
)

type mockProvider struct {
	response string
	err      error
	prompt   string
}

func (m *mockProvider) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	m.prompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockProvider) GetProviderType() string { return "mock" }

func result(id, source, content string) schema.SearchResult {
	return schema.SearchResult{
		Document: schema.Document{ID: id, Content: content},
		Source:   source,
	}
}

func TestGenerate_NoResults(t *testing.T) {
	provider := &mockProvider{response: "should not be called"}
	gen := NewGenerator(provider, config.DefaultConfig())

	text, err := gen.Generate(context.Background(), "anything", nil, "")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if text != NoResultsMessage {
		t.Errorf("Expected no-results message, got %q", text)
	}
	if provider.prompt != "" {
		t.Error("Expected no LLM call for empty results")
	}
}

func TestGenerate_PromptAssembly(t *testing.T) {
	provider := &mockProvider{response: "**Summary:** Sync runs hourly [1]."}
	gen := NewGenerator(provider, config.DefaultConfig())

	results := []schema.SearchResult{
		result("a", schema.SourceSlack, "sync runs every hour"),
		result("b", schema.SourceConfluence, "sync schedule documentation"),
	}
	text, err := gen.Generate(context.Background(), "how often does sync run?", results, "")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if text != "**Summary:** Sync runs hourly [1]." {
		t.Errorf("Unexpected answer text: %q", text)
	}

	if !strings.Contains(provider.prompt, "[1] 💬 Slack\nsync runs every hour") {
		t.Error("Expected first numbered slack entry in prompt")
	}
	if !strings.Contains(provider.prompt, "[2] 📄 Confluence\nsync schedule documentation") {
		t.Error("Expected second numbered confluence entry in prompt")
	}
	if !strings.Contains(provider.prompt, "\n\n---\n\n") {
		t.Error("Expected entries joined by separator")
	}
	if !strings.Contains(provider.prompt, "CURRENT QUESTION: how often does sync run?") {
		t.Error("Expected question in prompt")
	}
	if !strings.Contains(provider.prompt, "SHAMAN PLATFORM OVERVIEW") {
		t.Error("Expected domain knowledge block in prompt")
	}
	if strings.Contains(provider.prompt, "CONVERSATION HISTORY") {
		t.Error("Expected no history section without thread context")
	}
}

func TestGenerate_ThreadContext(t *testing.T) {
	provider := &mockProvider{response: "answer"}
	gen := NewGenerator(provider, config.DefaultConfig())

	results := []schema.SearchResult{result("a", schema.SourceSlack, "content")}
	if _, err := gen.Generate(context.Background(), "what about CLM?", results, "User: how does AE sync work?"); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.Contains(provider.prompt, "CONVERSATION HISTORY") {
		t.Error("Expected history section with thread context")
	}
	if !strings.Contains(provider.prompt, "User: how does AE sync work?") {
		t.Error("Expected thread context text in prompt")
	}
}

func TestGenerate_ExcerptTruncation(t *testing.T) {
	provider := &mockProvider{response: "answer"}
	cfg := config.DefaultConfig()
	cfg.Answer.ExcerptChars = 10
	gen := NewGenerator(provider, cfg)

	long := strings.Repeat("é", 40)
	results := []schema.SearchResult{result("a", schema.SourceSlack, long)}
	if _, err := gen.Generate(context.Background(), "q", results, ""); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if strings.Contains(provider.prompt, long) {
		t.Error("Expected excerpt to be truncated")
	}
	if !strings.Contains(provider.prompt, strings.Repeat("é", 10)) {
		t.Error("Expected ten-rune excerpt in prompt")
	}
}

func TestGenerate_CustomerLabel(t *testing.T) {
	provider := &mockProvider{response: "answer"}
	gen := NewGenerator(provider, config.DefaultConfig())

	results := []schema.SearchResult{result("a", "customer_takeda", "veeva config for takeda")}
	if _, err := gen.Generate(context.Background(), "q", results, ""); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.Contains(provider.prompt, "[1] 🏢 Takeda Docs") {
		t.Error("Expected customer collection label in prompt")
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	provider := &mockProvider{err: errors.New("rate limited")}
	gen := NewGenerator(provider, config.DefaultConfig())

	results := []schema.SearchResult{result("a", schema.SourceSlack, "content")}
	if _, err := gen.Generate(context.Background(), "q", results, ""); err == nil {
		t.Fatal("Expected error when provider fails")
	}
}
