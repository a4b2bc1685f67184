package router

import (
	"testing"

	"github.com/ShamanBV/shaman-assistant/config"
	"github.com/ShamanBV/shaman-assistant/schema"
)

func TestRoute_DefaultRules(t *testing.T) {
	r := New(config.RouterConfig{})

	tests := []struct {
		name   string
		result *schema.ClassificationResult
		want   Action
	}{
		{
			name:   "Greeting at any confidence",
			result: &schema.ClassificationResult{Intent: schema.IntentGreeting, Confidence: 0.3},
			want:   ActionGreeting,
		},
		{
			name:   "Confident bug gets canned response",
			result: &schema.ClassificationResult{Intent: schema.IntentBug, Confidence: 0.95},
			want:   ActionCannedBug,
		},
		{
			name:   "Bug at threshold gets canned response",
			result: &schema.ClassificationResult{Intent: schema.IntentBug, Confidence: 0.8},
			want:   ActionCannedBug,
		},
		{
			name:   "Low confidence bug falls through to retrieval",
			result: &schema.ClassificationResult{Intent: schema.IntentBug, Confidence: 0.5},
			want:   ActionRAG,
		},
		{
			name:   "Confident enhancement gets canned response",
			result: &schema.ClassificationResult{Intent: schema.IntentEnhancement, Confidence: 0.9},
			want:   ActionCannedEnhancement,
		},
		{
			name:   "Feature request shares enhancement template",
			result: &schema.ClassificationResult{Intent: schema.IntentFeatureRequest, Confidence: 0.9},
			want:   ActionCannedEnhancement,
		},
		{
			name:   "Question goes through retrieval",
			result: &schema.ClassificationResult{Intent: schema.IntentQuestion, Confidence: 0.95},
			want:   ActionRAG,
		},
		{
			name:   "Sync issue goes through retrieval",
			result: &schema.ClassificationResult{Intent: schema.IntentSyncIssue, Confidence: 0.9},
			want:   ActionRAG,
		},
		{
			name: "Ambiguous with questions routes to clarify",
			result: &schema.ClassificationResult{
				Intent:              schema.IntentBug,
				Confidence:          0.9,
				IsAmbiguous:         true,
				ClarifyingQuestions: []string{"Which feature?"},
			},
			want: ActionClarify,
		},
		{
			name: "Ambiguous without questions falls through",
			result: &schema.ClassificationResult{
				Intent:      schema.IntentUnclear,
				Confidence:  0.4,
				IsAmbiguous: true,
			},
			want: ActionRAG,
		},
		{
			name:   "Nil classification defaults to retrieval",
			result: nil,
			want:   ActionRAG,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Route(tt.result)
			if got.Action != tt.want {
				t.Errorf("Route() = %s (%s), want %s", got.Action, got.Reason, tt.want)
			}
		})
	}
}

func TestRoute_CustomRules(t *testing.T) {
	r := New(config.RouterConfig{Rules: []config.RouterRule{
		{Intent: "escalation", MinConfidence: 0.7, Action: "clarify"},
		{Intent: "bug", MinConfidence: 0.99, Action: "canned_bug"},
	}})

	got := r.Route(&schema.ClassificationResult{Intent: schema.IntentEscalation, Confidence: 0.8})
	if got.Action != ActionClarify {
		t.Errorf("Expected custom escalation rule to fire, got %s", got.Action)
	}

	// Custom table replaces the defaults entirely.
	got = r.Route(&schema.ClassificationResult{Intent: schema.IntentBug, Confidence: 0.9})
	if got.Action != ActionRAG {
		t.Errorf("Expected bug below custom threshold to fall through, got %s", got.Action)
	}
	got = r.Route(&schema.ClassificationResult{Intent: schema.IntentGreeting, Confidence: 0.99})
	if got.Action != ActionRAG {
		t.Errorf("Expected greeting without a rule to fall through, got %s", got.Action)
	}
}

func TestRoute_BogusActionSkipped(t *testing.T) {
	r := New(config.RouterConfig{Rules: []config.RouterRule{
		{Intent: "bug", MinConfidence: 0.5, Action: "page_oncall"},
		{Intent: "bug", MinConfidence: 0.5, Action: "canned_bug"},
	}})

	got := r.Route(&schema.ClassificationResult{Intent: schema.IntentBug, Confidence: 0.9})
	if got.Action != ActionCannedBug {
		t.Errorf("Expected unknown action to be skipped, got %s", got.Action)
	}
}
