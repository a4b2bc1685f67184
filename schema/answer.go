package schema

import (
	"fmt"
	"strings"
)

// Answer is the complete response to one question.
type Answer struct {
	Text             string         `json:"text"`
	Sources          []SearchResult `json:"sources,omitempty"`
	Intent           Intent         `json:"intent"`
	OriginalQuestion string         `json:"original_question,omitempty"`
	OptimizedQuery   string         `json:"optimized_query,omitempty"`
	Cached           bool           `json:"cached"`
}

// FormatSources renders the source list for display, best first, capped at
// maxSources. Returns empty when there are no sources.
func (a *Answer) FormatSources(maxSources int) string {
	if len(a.Sources) == 0 {
		return ""
	}
	if maxSources <= 0 {
		maxSources = 5
	}
	lines := []string{"Sources:"}
	for i, src := range a.Sources {
		if i >= maxSources {
			break
		}
		title := src.Title()
		if title == "" {
			title = "N/A"
		}
		lines = append(lines, fmt.Sprintf("  [%d] %s %s: %s", i+1, src.SourceEmoji(), src.SourceLabel(), title))
		if url := src.URL(); url != "" {
			lines = append(lines, fmt.Sprintf("      %s", url))
		}
	}
	return strings.Join(lines, "\n")
}

// Clone returns a deep copy; the cache hands out clones so callers can
// mutate answers freely.
func (a *Answer) Clone() *Answer {
	if a == nil {
		return nil
	}
	out := *a
	out.Sources = CloneResults(a.Sources)
	return &out
}
