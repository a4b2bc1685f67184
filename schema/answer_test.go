package schema

import (
	"strings"
	"testing"
)

func hit(id, source, title, url string) SearchResult {
	meta := map[string]any{}
	if title != "" {
		meta["title"] = title
	}
	if url != "" {
		meta["url"] = url
	}
	return SearchResult{
		Document: Document{ID: id, Content: "content " + id, Metadata: meta},
		Source:   source,
	}
}

func TestFormatSources(t *testing.T) {
	ans := &Answer{
		Text: "answer",
		Sources: []SearchResult{
			hit("a", SourceSlack, "Export thread", ""),
			hit("b", SourceConfluence, "Sync runbook", "https://wiki.example.com/sync"),
			hit("c", SourceVideo, "", ""),
		},
	}

	out := ans.FormatSources(5)
	lines := strings.Split(out, "\n")

	if lines[0] != "Sources:" {
		t.Fatalf("first line = %q, want Sources:", lines[0])
	}
	if !strings.Contains(out, "[1] 💬 Slack: Export thread") {
		t.Errorf("missing slack line:\n%s", out)
	}
	if !strings.Contains(out, "[2] 📄 Confluence: Sync runbook") {
		t.Errorf("missing confluence line:\n%s", out)
	}
	if !strings.Contains(out, "https://wiki.example.com/sync") {
		t.Errorf("missing url line:\n%s", out)
	}
	if !strings.Contains(out, "[3] 🎥 Video Transcript: N/A") {
		t.Errorf("untitled result should render N/A:\n%s", out)
	}
}

func TestFormatSources_CapsAndEmpty(t *testing.T) {
	ans := &Answer{Text: "answer"}
	if got := ans.FormatSources(5); got != "" {
		t.Errorf("no sources should yield empty string, got %q", got)
	}

	for i := 0; i < 8; i++ {
		ans.Sources = append(ans.Sources, hit("id", SourceSlack, "t", ""))
	}
	out := ans.FormatSources(2)
	if strings.Contains(out, "[3]") {
		t.Errorf("maxSources=2 rendered a third entry:\n%s", out)
	}
}

func TestAnswerClone(t *testing.T) {
	orig := &Answer{
		Text:    "answer",
		Intent:  IntentQuestion,
		Sources: []SearchResult{hit("a", SourceSlack, "t", "")},
	}

	copied := orig.Clone()
	copied.Text = "changed"
	copied.Sources[0].Document.Metadata["title"] = "changed"

	if orig.Text != "answer" {
		t.Error("clone mutation leaked into the original text")
	}
	if orig.Sources[0].Document.MetaString("title") != "t" {
		t.Error("clone mutation leaked into the original metadata")
	}

	var nilAns *Answer
	if nilAns.Clone() != nil {
		t.Error("nil clone should stay nil")
	}
}

func TestSourceAccessors(t *testing.T) {
	r := hit("a", "customer_takeda", "Takeda notes", "https://example.com")
	if r.SourceEmoji() != "📎" {
		t.Errorf("unknown source emoji = %q, want paperclip fallback", r.SourceEmoji())
	}
	if r.SourceLabel() != "customer_takeda" {
		t.Errorf("unknown source label = %q, want raw source name", r.SourceLabel())
	}
	if r.Title() != "Takeda notes" || r.URL() != "https://example.com" {
		t.Errorf("accessors = %q/%q", r.Title(), r.URL())
	}

	known := hit("b", SourceHelpCenter, "", "")
	if known.SourceEmoji() != "📚" || known.SourceLabel() != "Help Center" {
		t.Errorf("helpcenter accessors = %q/%q", known.SourceEmoji(), known.SourceLabel())
	}
}

func TestDocumentHelpers(t *testing.T) {
	if NewDocumentID("slack", "msg-1") != NewDocumentID("slack", "msg-1") {
		t.Error("document ids are not stable")
	}
	if NewDocumentID("slack", "msg-1") == NewDocumentID("intercom", "msg-1") {
		t.Error("document ids ignore the source")
	}

	doc := Document{ID: "a", Metadata: map[string]any{"title": "t", "chunk": 3}}
	if doc.MetaString("title") != "t" {
		t.Errorf("MetaString(title) = %q", doc.MetaString("title"))
	}
	if doc.MetaString("chunk") != "" {
		t.Error("non-string metadata should read as empty")
	}
	if doc.MetaString("missing") != "" {
		t.Error("missing metadata should read as empty")
	}

	clone := doc.Clone()
	clone.Metadata["title"] = "changed"
	if doc.MetaString("title") != "t" {
		t.Error("clone mutation leaked into the original document")
	}
}
