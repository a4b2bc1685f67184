package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ShamanBV/shaman-assistant/config"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

func TestGenerateCompletion(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": "the answer"},
				},
			},
		})
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(config.LLMConfig{
		Provider:    ProviderTypeOpenAI,
		APIKey:      "test-key",
		Model:       "gpt-4o-mini",
		BaseURL:     srv.URL,
		Temperature: 0.2,
		MaxTokens:   512,
	})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	out, err := p.GenerateCompletion(context.Background(), "why is sync failing")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if out != "the answer" {
		t.Errorf("completion = %q", out)
	}
	if got.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", got.Model)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "why is sync failing" {
		t.Errorf("messages = %+v", got.Messages)
	}
	if got.Temperature != 0.2 || got.MaxTokens != 512 {
		t.Errorf("sampling params = %v/%d", got.Temperature, got.MaxTokens)
	}
}

func TestGenerateCompletion_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(config.LLMConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	if _, err := p.GenerateCompletion(context.Background(), "q"); err == nil {
		t.Fatal("expected error when the response has no choices")
	}
}

func TestNewLLMProvider(t *testing.T) {
	if _, err := NewLLMProvider(config.LLMConfig{Provider: "anthropic"}); err == nil {
		t.Error("unsupported provider should error")
	}
	if _, err := NewLLMProvider(config.LLMConfig{}); err == nil {
		t.Error("missing provider should error")
	}
	if _, err := NewOpenAIProvider(config.LLMConfig{Model: "m"}); err == nil {
		t.Error("missing api key should error")
	}
	if _, err := NewOpenAIProvider(config.LLMConfig{APIKey: "k"}); err == nil {
		t.Error("missing model should error")
	}

	p, err := NewLLMProvider(config.LLMConfig{Provider: ProviderTypeOpenAI, APIKey: "k", Model: "m"})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	if p.GetProviderType() != ProviderTypeOpenAI {
		t.Errorf("provider type = %q", p.GetProviderType())
	}
}
