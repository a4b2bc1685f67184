package schema

import "strings"

// Intent is the classified purpose of a user question.
type Intent string

const (
	IntentBug            Intent = "bug"
	IntentEnhancement    Intent = "enhancement"
	IntentQuestion       Intent = "question"
	IntentSyncIssue      Intent = "sync_issue"
	IntentTemplateIssue  Intent = "template_issue"
	IntentFeatureRequest Intent = "feature_request"
	IntentEscalation     Intent = "escalation"
	IntentGreeting       Intent = "greeting"
	IntentUnclear        Intent = "unclear"
)

// ParseIntent decodes a classifier label into an Intent. The second return
// is false for labels outside the controlled vocabulary; callers route those
// to the safe default instead of guessing.
func ParseIntent(s string) (Intent, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch normalized {
	case "bug":
		return IntentBug, true
	case "enhancement":
		return IntentEnhancement, true
	case "question", "how_to", "howto":
		return IntentQuestion, true
	case "sync_issue":
		return IntentSyncIssue, true
	case "template_issue":
		return IntentTemplateIssue, true
	case "feature_request":
		return IntentFeatureRequest, true
	case "escalation":
		return IntentEscalation, true
	case "greeting":
		return IntentGreeting, true
	case "unclear":
		return IntentUnclear, true
	default:
		return IntentQuestion, false
	}
}

func (i Intent) String() string { return string(i) }

// Urgency levels extracted alongside intent.
const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// Entities are optional facts pulled out of a question during
// classification. Zero values mean "not mentioned"; Urgency defaults low.
type Entities struct {
	Customer  string `json:"customer,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	Feature   string `json:"feature,omitempty"`
	Urgency   string `json:"urgency,omitempty"`
}

// ClassificationResult is the full output of intent classification.
type ClassificationResult struct {
	Intent              Intent   `json:"intent"`
	Confidence          float64  `json:"confidence"`
	Reasoning           string   `json:"reasoning"`
	IsAmbiguous         bool     `json:"is_ambiguous"`
	ClarifyingQuestions []string `json:"clarifying_questions,omitempty"`
	Entities            Entities `json:"entities"`
}
