package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ShamanBV/shaman-assistant/common/logger"
	"github.com/ShamanBV/shaman-assistant/llm"
	"github.com/ShamanBV/shaman-assistant/metrics"
	"github.com/ShamanBV/shaman-assistant/schema"
)

const classifyPrompt = `Analyze this message from an internal Shaman support team member.

DOMAIN CONTEXT (Shaman platform):
- "Sync" issues are common - relate to Shaman and Veeva synchronization
- Account names follow pattern: Company + Region + Product Area (e.g., "Novartis UK IMM", "GSK Brazil")
- "Vault" = Veeva Vault document management system
- "CLM" = Closed Loop Marketing presentations
- "AE" = Approved Email templates
- "MLR" = Medical, Legal, Regulatory review process
- French customers may ask in French - treat same as English intent

TASK 1 - CLASSIFY INTENT (choose the most specific one):
- question: questions about how to do something, feature inquiries, "does anyone know...", "Is it possible to..."
- sync_issue: synchronization problems between Shaman and Veeva ("sync hours", "resync", "not syncing")
- template_issue: email/presentation template problems, token rendering, custom tokens not displaying
- bug: broken product behavior - UI errors, inactive buttons, failed downloads, Veeva integration faults, configuration not applied
- enhancement: suggesting an improvement to existing functionality
- feature_request: asking for new functionality that does not exist yet
- escalation: urgent issue, customer escalation, multiple follow-ups, needs immediate human attention
- greeting: ONLY pure greetings with no topic: "hi", "hello", "thanks", "bye". NOT queries like "Shaman team" or "support contacts"
- unclear: the message is too vague to act on at all

HIGH CONFIDENCE PATTERNS (0.9+):
- "does anyone know" -> question (0.95)
- "Is it possible to..." / "Can we..." -> question (0.9)
- "what does [feature] do" / "what is [feature]" -> question (0.95)
- Queries about teams/people/organization/contacts -> question (0.95)
- Short topic phrases like "Shaman support team" -> question (0.9) - these are INFORMATION REQUESTS, not greetings
- "Can you please take a look" + account context -> escalation (0.9)
- "sync" + "hours/time" -> sync_issue (0.9)
- "Message Tags are being synced" -> sync_issue (0.9)
- "Create button remains inactive" -> bug (0.95)
- "error when trying to download" -> bug (0.9)
- "tokens are not rendering" / "custom tokens" -> template_issue (0.9)
- "presentations have not been created in Vault" -> bug (0.9)
- Error messages in quotes or Sentry URLs -> bug (0.9)
- "policy" + "not working" -> bug (0.9)
- "it would be great if" / "could you add" -> enhancement (0.9)

AMBIGUOUS PATTERNS (need clarification):
- "Do you have any news?" -> too vague, could be follow-up on anything
- "Can you help me?" -> too generic
- "it doesn't work" -> no feature, account or error named
- "What am I missing?" -> could be config or user error

URGENCY SIGNALS (-> escalation or high urgency):
- Multiple @ mentions in message
- "OOO" (out of office) mentioned
- Intercom/Zendesk conversation links included
- "sorry to chase you", "urgent", "before Monday"
- Multiple follow-ups on same issue

TASK 2 - DETECT AMBIGUITY:
Mark as ambiguous if:
- The question is too vague to search effectively (e.g., "it doesn't work", "help me")
- Missing critical context like: which customer/account, which feature, what error message
- Could apply to multiple unrelated features or scenarios

DO NOT mark as ambiguous if:
- It's a greeting
- It's a feature inquiry ("what does X do")
- It mentions specific features, errors, accounts, or context
- It's a clear sync/template/bug issue with details

TASK 3 - EXTRACT ENTITIES:
Extract any mentioned:
- customer: Company/account name - pattern: "Company + Region + Dept" (e.g., "Novartis UK IMM", "Galderma Alpine Aesthetics")
- error_code: Error messages in quotes, Sentry URLs, HTTP status codes, technical error class names
- feature: CamelCase names (SetToStageCLM), hyphenated terms (Message Tags), or: Clickstream, Smart Update, Visual Builder, CLM, AE
- urgency: low/medium/high/critical based on signals above
{context_section}
MESSAGE: {question}

Respond in this exact JSON format:
{
  "intent": "<intent>",
  "confidence": <0.0-1.0>,
  "reason": "<brief explanation>",
  "is_ambiguous": <true/false>,
  "clarifying_questions": ["<question 1>", "<question 2>"],
  "entities": {
    "customer": "<customer name or null>",
    "error_code": "<error code or null>",
    "feature": "<feature name or null>",
    "urgency": "<low/medium/high/critical>"
  }
}

Rules:
- clarifying_questions: Only include if is_ambiguous is true (1-3 short questions)
- entities: Use null for fields not mentioned, default urgency to "low"

Only output the JSON, nothing else.`

// LLMClassifier prompts a completion model for the full classification in
// one call: intent, ambiguity and entities together.
type LLMClassifier struct {
	provider llm.Provider
	timeout  time.Duration
}

// NewLLMClassifier builds the default classifier. timeoutMS <= 0 selects
// ten seconds.
func NewLLMClassifier(provider llm.Provider, timeoutMS int) *LLMClassifier {
	timeout := time.Duration(timeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LLMClassifier{provider: provider, timeout: timeout}
}

// Classify never fails outright: LLM errors and unparseable responses
// degrade to DefaultResult with the cause in the error return.
func (c *LLMClassifier) Classify(ctx context.Context, question, threadContext string) (*schema.ClassificationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	response, err := c.provider.GenerateCompletion(ctx, buildClassifyPrompt(question, threadContext))
	metrics.ObserveLLM("classify", time.Since(start).Seconds())
	if err != nil {
		logger.Warnf("classify: llm call failed, using default intent, err: %v", err)
		return DefaultResult(fmt.Sprintf("Classification failed: %v", err)), err
	}

	result, err := parseResult(response)
	if err != nil {
		logger.Warnf("classify: %v, response: %q", err, response)
		return DefaultResult(fmt.Sprintf("Failed to parse response, defaulting to question: %v", err)), err
	}
	return result, nil
}

func buildClassifyPrompt(question, threadContext string) string {
	contextSection := ""
	if threadContext != "" {
		contextSection = "\nTHREAD CONTEXT (previous messages in this conversation):\n" +
			threadContext +
			"\n\nUse this context to understand follow-up questions like \"what about X?\" or \"and for customer Y?\"\n"
	}
	prompt := strings.ReplaceAll(classifyPrompt, "{context_section}", contextSection)
	return strings.ReplaceAll(prompt, "{question}", question)
}
