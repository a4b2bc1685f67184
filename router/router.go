// Package router maps a classification to the next pipeline step using
// ordered, declarative rules.
package router

import (
	"fmt"
	"strings"

	"github.com/ShamanBV/shaman-assistant/config"
	"github.com/ShamanBV/shaman-assistant/schema"
)

// Action names the pipeline step a classification routes to.
type Action string

const (
	// ActionCannedBug returns the bug-report template without retrieval.
	ActionCannedBug Action = "canned_bug"
	// ActionCannedEnhancement returns the enhancement template without
	// retrieval.
	ActionCannedEnhancement Action = "canned_enhancement"
	// ActionGreeting returns the greeting template without retrieval.
	ActionGreeting Action = "greeting"
	// ActionClarify asks the clarifying questions without retrieval.
	ActionClarify Action = "clarify"
	// ActionRAG runs the full optimize, retrieve, generate pipeline.
	ActionRAG Action = "rag"
)

// Decision is the selected action plus a short trace of why.
type Decision struct {
	Action Action
	Reason string
}

// Router evaluates rules in declaration order. An ambiguous classification
// with clarifying questions takes precedence over every rule; when nothing
// matches, the question goes through retrieval.
type Router struct {
	rules []config.RouterRule
}

// New builds a router from config, falling back to the stock rule table
// when none are configured.
func New(cfg config.RouterConfig) *Router {
	rules := cfg.Rules
	if len(rules) == 0 {
		rules = config.DefaultRouterRules()
	}
	return &Router{rules: rules}
}

// Route picks the action for one classification.
func (r *Router) Route(result *schema.ClassificationResult) Decision {
	if result == nil {
		return Decision{Action: ActionRAG, Reason: "no classification"}
	}
	if result.IsAmbiguous && len(result.ClarifyingQuestions) > 0 {
		return Decision{Action: ActionClarify, Reason: "ambiguous classification"}
	}

	for _, rule := range r.rules {
		if !strings.EqualFold(rule.Intent, string(result.Intent)) {
			continue
		}
		if result.Confidence < rule.MinConfidence {
			continue
		}
		action, ok := parseAction(rule.Action)
		if !ok {
			continue
		}
		return Decision{
			Action: action,
			Reason: fmt.Sprintf("rule %s>=%.2f", rule.Intent, rule.MinConfidence),
		}
	}
	return Decision{Action: ActionRAG, Reason: "default"}
}

func parseAction(s string) (Action, bool) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionCannedBug:
		return ActionCannedBug, true
	case ActionCannedEnhancement:
		return ActionCannedEnhancement, true
	case ActionGreeting:
		return ActionGreeting, true
	case ActionClarify:
		return ActionClarify, true
	case ActionRAG:
		return ActionRAG, true
	default:
		return "", false
	}
}
