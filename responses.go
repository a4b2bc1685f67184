package assistant

import (
	"fmt"
	"strings"

	"github.com/ShamanBV/shaman-assistant/schema"
)

// Canned response templates. These short-circuit retrieval entirely and are
// never cached.

const greetingText = "Hi! I'm MagicAnswer. Ask me anything about Shaman, Veeva, or check the knowledge base. " +
	"Type `stats` to see what's indexed."

// lowConfidenceDisclaimer prefixes answers generated from an uncertain
// classification.
const lowConfidenceDisclaimer = "_Note: I'm not entirely sure about the intent of your question. Here's what I found:_\n\n"

// apologyText is the generic boundary response when the pipeline fails
// unexpectedly.
const apologyText = "Sorry, I ran into a problem answering that. Please try again in a moment."

func bugResponse(reportURL string) string {
	return fmt.Sprintf(`🐛 **This sounds like a bug report!**

Please report it here: %s

When reporting, include:
- **Steps to reproduce**: What were you doing when this happened?
- **Expected behavior**: What should have happened?
- **Actual behavior**: What happened instead?
- **Screenshots/recordings**: If possible
- **Browser/device**: Chrome, Safari, etc.

This helps our team fix the issue faster. Thanks for reporting!`, reportURL)
}

func enhancementResponse(requestURL string) string {
	return fmt.Sprintf(`💡 **Great product idea!**

Please log this enhancement request: %s

When submitting, consider including:
- **Use case**: What problem does this solve?
- **Who benefits**: Which users/customers need this?
- **Priority**: How urgent is this for your workflow?

This helps us prioritize and track feature requests. Thanks for the suggestion!`, requestURL)
}

func clarificationResponse(questions []string) string {
	var b strings.Builder
	b.WriteString("**:thinking_face: I need a bit more context to help you better.**\n\n")
	for _, q := range questions {
		b.WriteString("• ")
		b.WriteString(q)
		b.WriteString("\n")
	}
	b.WriteString("\nPlease provide more details and I'll search the knowledge base.")
	return b.String()
}

// entityBlock renders extracted entities for intent banners. Low urgency is
// the default and not worth calling out.
func entityBlock(e schema.Entities) string {
	var lines []string
	if e.Customer != "" {
		lines = append(lines, "**Customer:** "+e.Customer)
	}
	if e.ErrorCode != "" {
		lines = append(lines, "**Error:** "+e.ErrorCode)
	}
	if e.Feature != "" {
		lines = append(lines, "**Feature:** "+e.Feature)
	}
	if e.Urgency != "" && e.Urgency != schema.UrgencyLow {
		emoji := map[string]string{
			schema.UrgencyMedium:   ":large_yellow_circle:",
			schema.UrgencyHigh:     ":large_orange_circle:",
			schema.UrgencyCritical: ":red_circle:",
		}[e.Urgency]
		lines = append(lines, fmt.Sprintf("**Urgency:** %s %s", emoji, strings.ToUpper(e.Urgency)))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n\n"
}

// intentBanner prefixes retrieval answers for intents that come with a
// known playbook. Plain questions get the bare entity block, if any.
func intentBanner(result *schema.ClassificationResult) string {
	if result == nil {
		return ""
	}
	entities := entityBlock(result.Entities)
	switch result.Intent {
	case schema.IntentSyncIssue:
		return "**:arrows_counterclockwise: Sync Issue**\n\n" + entities +
			"This appears to be a Shaman↔Veeva synchronization issue.\n\n" +
			"Common checks:\n" +
			"• Verify sync schedule in Superadmin\n" +
			"• Check Veeva Vault connection status\n" +
			"• Review sync logs for errors\n\n" +
			"Here's what I found:\n\n"
	case schema.IntentTemplateIssue:
		return "**:page_facing_up: Template Issue**\n\n" + entities +
			"This appears to be a template or token rendering issue.\n\n" +
			"Common causes:\n" +
			"• Token syntax: `{{customText[...]}}`\n" +
			"• Missing token values in account config\n" +
			"• Template not published to correct stage\n\n" +
			"Here's what I found:\n\n"
	case schema.IntentEscalation:
		return "**:warning: This seems urgent!**\n\n" + entities +
			"I've flagged this for human attention. While waiting for the team:\n\n"
	case schema.IntentFeatureRequest:
		return "**:bulb: Feature Request**\n\n" + entities +
			"First, let me check if this feature already exists...\n\n"
	default:
		return entities
	}
}
