package textsplitter

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// sentenceSeps are tried in order when no paragraph break falls in the
// second half of the window.
var sentenceSeps = []string{". ", "! ", "? ", "\n"}

// CharacterSplitter splits on a byte budget, preferring paragraph and
// sentence boundaries in the second half of each window so chunks do not
// cut sentences mid-way.
type CharacterSplitter struct {
	chunkSize int
	overlap   int
}

// NewCharacterSplitter creates a character splitter. Overlap must be at
// most half the chunk size so each step makes progress.
func NewCharacterSplitter(chunkSize, overlap int) (*CharacterSplitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("splitter chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("splitter overlap must be non-negative, got %d", overlap)
	}
	if overlap*2 > chunkSize {
		return nil, fmt.Errorf("splitter overlap %d must be at most half the chunk size %d", overlap, chunkSize)
	}
	return &CharacterSplitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// SplitText returns overlapping chunks of at most chunkSize bytes, trimmed
// of surrounding whitespace. Empty chunks are dropped.
func (s *CharacterSplitter) SplitText(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	if len(text) <= s.chunkSize {
		return []string{strings.TrimSpace(text)}, nil
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + s.chunkSize
		if end < len(text) {
			end = alignRune(text, end)
			window := text[start:end]
			half := s.chunkSize / 2
			if p := strings.LastIndex(window, "\n\n"); p > half {
				end = start + p
			} else {
				for _, sep := range sentenceSeps {
					if p := strings.LastIndex(window, sep); p > half {
						end = start + p + len(sep)
						break
					}
				}
			}
		}

		sliceEnd := end
		if sliceEnd > len(text) {
			sliceEnd = len(text)
		}
		if chunk := strings.TrimSpace(text[start:sliceEnd]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := end - s.overlap
		if next < len(text) && next > 0 {
			next = alignRune(text, next)
		}
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks, nil
}

// alignRune moves idx down to the nearest rune boundary.
func alignRune(text string, idx int) int {
	for idx > 0 && idx < len(text) && !utf8.RuneStart(text[idx]) {
		idx--
	}
	return idx
}
