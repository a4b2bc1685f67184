// Package optimize expands a question into search query variants so vector
// lookup catches acronym, vocabulary and phrasing differences.
package optimize

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ShamanBV/shaman-assistant/common/logger"
	"github.com/ShamanBV/shaman-assistant/config"
	"github.com/ShamanBV/shaman-assistant/llm"
	"github.com/ShamanBV/shaman-assistant/metrics"
)

const promptTemplate = `You are a search query optimizer for a knowledge base about Shaman (a pharma content platform) and Veeva integrations.

TASK: Generate 3 optimized search queries for the user's question.

RULES:
1. Expand acronyms:
   - CLM = Closed Loop Marketing (presentations for sales reps)
   - MLR = Material in Veeva, promotional/non-promotional marketing and sales material
   - HCP = Healthcare Professional
   - AE = Approved Email = RTE (Rep Triggered Email)
   - RTE = Rep Triggered Email = Approved Email
   - ME = Mass Email = HQ Email = Marketing Email
   - DAM = Digital Asset Management

2. Add relevant context words for pharma/Veeva domain

3. If it's a follow-up question, incorporate context from previous messages

4. Remove filler words ("hi", "please", "can you", "I want to")

5. Generate 3 different query variations:
   - Query 1: Direct expansion of the question
   - Query 2: Add technical/domain terms
   - Query 3: Focus on potential solutions/how-to
{context_hint}
USER QUESTION: {question}

Respond with exactly 3 queries, one per line, no numbering or bullets. Just the queries.`

// Optimizer turns one question into up to MaxVariants search queries. The
// LLM path produces three rephrasings; any failure falls back to a
// deterministic static expansion. The original question is always first.
type Optimizer struct {
	provider    llm.Provider
	enabled     bool
	maxVariants int
	acronyms    map[string]string
	synonyms    map[string][]string
}

// NewOptimizer builds an optimizer from config. A nil provider limits it to
// the static expansion path.
func NewOptimizer(cfg config.OptimizerConfig, provider llm.Provider) *Optimizer {
	maxVariants := cfg.MaxVariants
	if maxVariants <= 0 {
		maxVariants = 4
	}
	acronyms := cfg.Acronyms
	if len(acronyms) == 0 {
		acronyms = config.DefaultAcronyms
	}
	synonyms := cfg.Synonyms
	if len(synonyms) == 0 {
		synonyms = config.DefaultSynonyms
	}
	return &Optimizer{
		provider:    provider,
		enabled:     cfg.Enabled(),
		maxVariants: maxVariants,
		acronyms:    acronyms,
		synonyms:    synonyms,
	}
}

// Optimize returns 1 to MaxVariants queries, never an empty slice, with the
// original question first. It never fails; degraded paths log and fall
// through.
func (o *Optimizer) Optimize(ctx context.Context, question, threadContext string) []string {
	question = strings.TrimSpace(question)
	if question == "" || !o.enabled {
		return []string{question}
	}
	if o.provider == nil {
		return o.staticExpansion(question)
	}

	start := time.Now()
	response, err := o.provider.GenerateCompletion(ctx, o.buildPrompt(question, threadContext))
	metrics.ObserveLLM("optimize", time.Since(start).Seconds())
	if err != nil {
		logger.Warnf("optimize: llm expansion failed, using static expansion, err: %v", err)
		return o.staticExpansion(question)
	}

	out := []string{question}
	for _, line := range strings.Split(response, "\n") {
		variant := strings.TrimSpace(line)
		if variant == "" || containsString(out, variant) {
			continue
		}
		out = append(out, variant)
	}
	if len(out) > o.maxVariants {
		out = out[:o.maxVariants]
	}
	return out
}

func (o *Optimizer) buildPrompt(question, threadContext string) string {
	contextHint := ""
	if threadContext != "" {
		contextHint = "\nPrevious conversation context:\n" + threadContext +
			"\n\nUse this to understand what the current question refers to.\n"
	}
	prompt := strings.ReplaceAll(promptTemplate, "{context_hint}", contextHint)
	return strings.ReplaceAll(prompt, "{question}", question)
}

// staticExpansion applies the acronym and synonym tables without an LLM.
// Table keys are visited in sorted order so the output is deterministic.
func (o *Optimizer) staticExpansion(question string) []string {
	queries := []string{question}

	acronymKeys := make([]string, 0, len(o.acronyms))
	for k := range o.acronyms {
		acronymKeys = append(acronymKeys, k)
	}
	sort.Strings(acronymKeys)

	expanded := question
	upper := strings.ToUpper(question)
	for _, acronym := range acronymKeys {
		if strings.Contains(upper, strings.ToUpper(acronym)) {
			expansion := o.acronyms[acronym]
			expanded = strings.ReplaceAll(expanded, acronym, expansion)
			expanded = strings.ReplaceAll(expanded, strings.ToLower(acronym), expansion)
		}
	}
	if expanded != question {
		queries = append(queries, expanded)
	}

	synonymKeys := make([]string, 0, len(o.synonyms))
	for k := range o.synonyms {
		synonymKeys = append(synonymKeys, k)
	}
	sort.Strings(synonymKeys)

	lower := strings.ToLower(question)
	for _, word := range synonymKeys {
		synonyms := o.synonyms[word]
		if len(synonyms) == 0 || !strings.Contains(lower, word) {
			continue
		}
		variant := strings.ReplaceAll(lower, word, synonyms[0])
		if !containsString(queries, variant) {
			queries = append(queries, variant)
		}
	}

	if len(queries) > 3 {
		queries = queries[:3]
	}
	return queries
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
