package memory

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Round is one question/answer exchange within a thread.
type Round struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Old assistant replies are truncated in prompt context so they do not
// crowd out the current question.
const answerContextChars = 500

// FormatContext renders rounds as a prompt context block: alternating
// "User:" and "Assistant:" lines separated by blank lines, oldest first.
// Returns "" for no rounds.
func FormatContext(rounds []Round) string {
	if len(rounds) == 0 {
		return ""
	}
	parts := make([]string, 0, len(rounds)*2)
	for _, r := range rounds {
		if q := strings.TrimSpace(r.Question); q != "" {
			parts = append(parts, "User: "+q)
		}
		if a := strings.TrimSpace(r.Answer); a != "" {
			parts = append(parts, "Assistant: "+truncateRunes(a, answerContextChars))
		}
	}
	return strings.Join(parts, "\n\n")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
