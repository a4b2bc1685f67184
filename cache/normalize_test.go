package cache

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		question string
		expected string
	}{
		{
			name:     "Lowercases and trims",
			question: "  How Do I Export A Deck?  ",
			expected: "how do i export a deck?",
		},
		{
			name:     "Strips leading please",
			question: "Please export the CLM deck",
			expected: "export the clm deck",
		},
		{
			name:     "Strips stacked fillers",
			question: "Please can you help me export a CLM deck",
			expected: "export a clm deck",
		},
		{
			name:     "Collapses interior whitespace",
			question: "export   a\tCLM    deck",
			expected: "export a clm deck",
		},
		{
			name:     "Removes filler mid-sentence",
			question: "I want you to please sync the templates",
			expected: "i want you to sync the templates",
		},
		{
			name:     "Empty after fillers",
			question: "please",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.question)
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.question, got, tt.expected)
			}
		})
	}
}

func TestKey_FuzzyVariantsCollide(t *testing.T) {
	base := Key("export a CLM deck")

	variants := []string{
		"Export a CLM deck",
		"please export a CLM deck",
		"Can you export a CLM deck",
		"could you help me export a CLM deck",
		"  export   a   CLM   deck  ",
	}
	for _, v := range variants {
		if Key(v) != base {
			t.Errorf("Key(%q) should match Key(%q)", v, "export a CLM deck")
		}
	}

	if Key("export a PowerPoint deck") == base {
		t.Error("different questions must not share a key")
	}
}

func TestKey_IsStableHex(t *testing.T) {
	k := Key("what is shaman?")
	if len(k) != 32 {
		t.Fatalf("expected 32 hex chars, got %d (%q)", len(k), k)
	}
	if k != Key("what is shaman?") {
		t.Error("key must be deterministic")
	}
}
