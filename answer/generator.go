// Package answer assembles retrieved context into a numbered-source prompt
// and asks the completion model for the final response.
package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ShamanBV/shaman-assistant/config"
	"github.com/ShamanBV/shaman-assistant/llm"
	"github.com/ShamanBV/shaman-assistant/metrics"
	"github.com/ShamanBV/shaman-assistant/schema"
)

// NoResultsMessage is returned without an LLM call when retrieval came back
// empty.
const NoResultsMessage = "I couldn't find relevant information in the knowledge base. " +
	"Try rephrasing your question or check if the topic has been indexed."

const answerPrompt = `You are MagicAnswer, an internal assistant for Shaman staff (Support, Customer Success, Product teams).

{domain_knowledge}
{conversation_history}
SOURCE PRIORITY:
- For team structure, organization, roles, or "who is in team X" questions: PREFER Confluence sources (official documentation) over Slack/Intercom conversations
- Slack/Intercom conversations may show people doing tasks for OTHER teams (someone helping with support is not necessarily ON the support team)
- Confluence organizational docs are authoritative for current team membership

STRICT RULES:
1. ONLY use information from the KNOWLEDGE BASE CONTEXT below - never make up or assume information
2. If the answer is not in the context, say "I couldn't find this information in the knowledge base"
3. NEVER share passwords, API keys, tokens, or any credentials
4. Keep answers concise and actionable
5. For follow-up questions, connect them to the previous conversation topic
6. Cite sources inline as [1], [2], ... matching the numbering in the context

RESPONSE FORMAT:
Start with "**Summary:**" followed by a brief 1-2 sentence answer in simple terms.
If something requires configuration changes, mention that ConfigOps can handle it via an OPS board ticket.
Then provide additional details only if necessary.

FORMATTING RULES:
- Use backticks for feature names, Superadmin settings and configuration keys
- Use backticks for builder codes: ` + "`AE`, `ME`, `CLM`" + `

KNOWLEDGE BASE CONTEXT:
{context}

CURRENT QUESTION: {question}

Remember: Be concise. Start with a summary. Connect follow-up questions to previous topics.`

// Generator builds the generation prompt and runs it.
type Generator struct {
	provider     llm.Provider
	excerptChars int
	domain       string
	scopedLabels map[string]string
}

// NewGenerator wires the completion provider with the answer settings.
// Customer collections get a company label so scoped hits are visibly
// distinct in the prompt.
func NewGenerator(provider llm.Provider, cfg *config.Config) *Generator {
	excerpt := cfg.Answer.ExcerptChars
	if excerpt <= 0 {
		excerpt = 1500
	}
	scoped := make(map[string]string, len(cfg.Customers))
	for _, cust := range cfg.Customers {
		if cust.Collection != "" {
			scoped[cust.Collection] = "🏢 " + cust.Name + " Docs"
		}
	}
	return &Generator{
		provider:     provider,
		excerptChars: excerpt,
		domain:       cfg.Answer.DomainKnowledge,
		scopedLabels: scoped,
	}
}

// Generate answers the question from the supplied results. Empty results
// short-circuit to NoResultsMessage without touching the model.
func (g *Generator) Generate(ctx context.Context, question string, results []schema.SearchResult, threadContext string) (string, error) {
	if len(results) == 0 {
		return NoResultsMessage, nil
	}

	prompt := g.buildPrompt(question, results, threadContext)
	start := time.Now()
	text, err := g.provider.GenerateCompletion(ctx, prompt)
	metrics.ObserveLLM("generate", time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("generate answer failed, err: %w", err)
	}
	metrics.ObserveAnswerSources(len(results))
	return strings.TrimSpace(text), nil
}

func (g *Generator) buildPrompt(question string, results []schema.SearchResult, threadContext string) string {
	entries := make([]string, 0, len(results))
	for i, r := range results {
		entries = append(entries, fmt.Sprintf("[%d] %s\n%s",
			i+1, g.sourceLabel(r), truncateRunes(r.Document.Content, g.excerptChars)))
	}

	history := ""
	if threadContext != "" {
		history = "\nCONVERSATION HISTORY (previous messages in this thread):\n" +
			threadContext +
			"\n\nUse this history to understand follow-up questions. If the user previously asked about \"Veeva sync\" and now asks \"what about CLM?\", they mean \"what about CLM sync to Veeva?\"\n"
	}

	prompt := strings.ReplaceAll(answerPrompt, "{domain_knowledge}", g.domain)
	prompt = strings.ReplaceAll(prompt, "{conversation_history}", history)
	prompt = strings.ReplaceAll(prompt, "{context}", strings.Join(entries, "\n\n---\n\n"))
	return strings.ReplaceAll(prompt, "{question}", question)
}

func (g *Generator) sourceLabel(r schema.SearchResult) string {
	if label, ok := g.scopedLabels[r.Source]; ok {
		return label
	}
	return r.SourceEmoji() + " " + r.SourceLabel()
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
