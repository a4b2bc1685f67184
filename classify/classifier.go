// Package classify labels a question with an intent, a confidence, an
// ambiguity judgment with clarifying questions, and extracted entities.
// Classification is a soft dependency: every backend returns a usable
// result even when the underlying call fails.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ShamanBV/shaman-assistant/common/httpx"
	"github.com/ShamanBV/shaman-assistant/config"
	"github.com/ShamanBV/shaman-assistant/llm"
	"github.com/ShamanBV/shaman-assistant/schema"
)

// Classifier labels one question. The returned result is always usable; a
// non-nil error reports that the backend degraded to the default result.
type Classifier interface {
	Classify(ctx context.Context, question, threadContext string) (*schema.ClassificationResult, error)
}

// NewClassifier selects the backend from config: "llm" (default) or "http".
func NewClassifier(cfg *config.Config, provider llm.Provider, client *httpx.Client) (Classifier, error) {
	switch cfg.Classifier.Provider {
	case "", "llm":
		return NewLLMClassifier(provider, cfg.Classifier.TimeoutMS), nil
	case "http":
		if cfg.Classifier.Endpoint == "" {
			return nil, fmt.Errorf("classifier endpoint required for http provider")
		}
		return NewHTTPClassifier(cfg.Classifier.Endpoint, client), nil
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", cfg.Classifier.Provider)
	}
}

// DefaultResult is the classification used whenever a backend fails:
// generic question intent at middling confidence, unambiguous.
func DefaultResult(reason string) *schema.ClassificationResult {
	return &schema.ClassificationResult{
		Intent:     schema.IntentQuestion,
		Confidence: 0.5,
		Reasoning:  reason,
		Entities:   schema.Entities{Urgency: schema.UrgencyLow},
	}
}

// wireResult mirrors the JSON shape the prompt demands.
type wireResult struct {
	Intent              string   `json:"intent"`
	Confidence          float64  `json:"confidence"`
	Reason              string   `json:"reason"`
	IsAmbiguous         bool     `json:"is_ambiguous"`
	ClarifyingQuestions []string `json:"clarifying_questions"`
	Entities            struct {
		Customer  string `json:"customer"`
		ErrorCode string `json:"error_code"`
		Feature   string `json:"feature"`
		Urgency   string `json:"urgency"`
	} `json:"entities"`
}

// parseResult decodes a raw model response into a normalized
// ClassificationResult. Markdown fences are tolerated; anything that does
// not decode yields an error so callers fall back to DefaultResult.
func parseResult(raw string) (*schema.ClassificationResult, error) {
	var wire wireResult
	if err := json.Unmarshal([]byte(stripFences(raw)), &wire); err != nil {
		return nil, fmt.Errorf("decode classification failed, err: %w", err)
	}
	return fromWire(wire), nil
}

// fromWire normalizes a decoded payload: unknown intents fall back to
// question, confidence is clamped, entities are trimmed, and ambiguity is
// gated so that concrete questions never ask for clarification.
func fromWire(wire wireResult) *schema.ClassificationResult {
	intent, _ := schema.ParseIntent(wire.Intent)

	confidence := wire.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	result := &schema.ClassificationResult{
		Intent:              intent,
		Confidence:          confidence,
		Reasoning:           wire.Reason,
		IsAmbiguous:         wire.IsAmbiguous,
		ClarifyingQuestions: wire.ClarifyingQuestions,
		Entities: schema.Entities{
			Customer:  strings.TrimSpace(nullSafe(wire.Entities.Customer)),
			ErrorCode: strings.TrimSpace(nullSafe(wire.Entities.ErrorCode)),
			Feature:   strings.TrimSpace(nullSafe(wire.Entities.Feature)),
			Urgency:   normalizeUrgency(wire.Entities.Urgency),
		},
	}

	// Greetings and questions that already name something concrete never
	// need clarification, whatever the model said.
	if result.Intent == schema.IntentGreeting || result.Entities.Customer != "" ||
		result.Entities.ErrorCode != "" || result.Entities.Feature != "" {
		result.IsAmbiguous = false
	}
	if !result.IsAmbiguous {
		result.ClarifyingQuestions = nil
	} else if len(result.ClarifyingQuestions) > 3 {
		result.ClarifyingQuestions = result.ClarifyingQuestions[:3]
	}
	return result
}

// stripFences removes a markdown code fence wrapper, with or without a
// language tag, from around the payload.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// nullSafe clears the literal "null" some models emit for missing fields.
func nullSafe(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), "null") {
		return ""
	}
	return s
}

func normalizeUrgency(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case schema.UrgencyMedium:
		return schema.UrgencyMedium
	case schema.UrgencyHigh:
		return schema.UrgencyHigh
	case schema.UrgencyCritical:
		return schema.UrgencyCritical
	default:
		return schema.UrgencyLow
	}
}
