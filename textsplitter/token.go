package textsplitter

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// TokenSplitter splits on a token budget using a tiktoken encoding, so
// chunks line up with what the embedding model actually sees.
type TokenSplitter struct {
	enc       *tiktoken.Tiktoken
	chunkSize int
	overlap   int
}

// NewTokenSplitter creates a token splitter with the given tiktoken
// encoding name.
func NewTokenSplitter(chunkSize, overlap int, encoding string) (*TokenSplitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("splitter chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("splitter overlap %d must be in [0, chunk size %d)", overlap, chunkSize)
	}
	if encoding == "" {
		encoding = defaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %s failed, err: %w", encoding, err)
	}
	return &TokenSplitter{enc: enc, chunkSize: chunkSize, overlap: overlap}, nil
}

// SplitText returns overlapping chunks of at most chunkSize tokens.
func (s *TokenSplitter) SplitText(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	tokens := s.enc.Encode(text, nil, nil)
	if len(tokens) <= s.chunkSize {
		return []string{strings.TrimSpace(text)}, nil
	}

	var chunks []string
	step := s.chunkSize - s.overlap
	for start := 0; start < len(tokens); start += step {
		end := start + s.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		if chunk := strings.TrimSpace(s.enc.Decode(tokens[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(tokens) {
			break
		}
	}
	return chunks, nil
}
