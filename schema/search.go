package schema

// Knowledge base source names.
const (
	SourceSlack      = "slack"
	SourceHelpCenter = "helpcenter"
	SourceIntercom   = "intercom"
	SourceConfluence = "confluence"
	SourceVideo      = "video"
)

var sourceEmojis = map[string]string{
	SourceSlack:      "💬",
	SourceHelpCenter: "📚",
	SourceIntercom:   "🎫",
	SourceConfluence: "📄",
	SourceVideo:      "🎥",
}

var sourceLabels = map[string]string{
	SourceSlack:      "Slack",
	SourceHelpCenter: "Help Center",
	SourceIntercom:   "Support Ticket",
	SourceConfluence: "Confluence",
	SourceVideo:      "Video Transcript",
}

// SearchResult is a single ranked hit from the knowledge base. Relevance is
// 1 - embedding distance, adjusted by source boosts; higher is better.
// SearchResults are ephemeral query output and are never persisted.
type SearchResult struct {
	Document  Document `json:"document"`
	Source    string   `json:"source"`
	Relevance float64  `json:"relevance"`
}

// Title returns the document title from metadata, if any.
func (r SearchResult) Title() string { return r.Document.MetaString("title") }

// URL returns the document url from metadata, if any.
func (r SearchResult) URL() string { return r.Document.MetaString("url") }

// SourceEmoji returns the emoji for the result's source type.
func (r SearchResult) SourceEmoji() string {
	if e, ok := sourceEmojis[r.Source]; ok {
		return e
	}
	return "📎"
}

// SourceLabel returns the display label for the result's source.
func (r SearchResult) SourceLabel() string {
	if l, ok := sourceLabels[r.Source]; ok {
		return l
	}
	return r.Source
}

// SearchOptions carries per-query knobs for a vector store lookup.
type SearchOptions struct {
	TopK      int
	Threshold float64
}

// CloneResults deep-copies a result list so callers can mutate safely.
func CloneResults(in []SearchResult) []SearchResult {
	if in == nil {
		return nil
	}
	out := make([]SearchResult, len(in))
	for i, r := range in {
		out[i] = r
		out[i].Document = r.Document.Clone()
	}
	return out
}
