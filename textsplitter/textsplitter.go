package textsplitter

import (
	"fmt"

	"github.com/ShamanBV/shaman-assistant/config"
)

const (
	TypeCharacter = "character"
	TypeToken     = "token"

	defaultCharChunkSize  = 1000
	defaultCharOverlap    = 200
	defaultTokenChunkSize = 500
	defaultTokenOverlap   = 50
)

// TextSplitter breaks long documents into overlapping chunks for indexing.
type TextSplitter interface {
	SplitText(text string) ([]string, error)
}

// NewTextSplitter creates a splitter from configuration.
func NewTextSplitter(cfg *config.SplitterConfig) (TextSplitter, error) {
	switch cfg.Type {
	case TypeCharacter, "":
		size, overlap := cfg.ChunkSize, cfg.Overlap
		if size == 0 {
			size = defaultCharChunkSize
			if overlap == 0 {
				overlap = defaultCharOverlap
			}
		}
		return NewCharacterSplitter(size, overlap)
	case TypeToken:
		size, overlap := cfg.ChunkSize, cfg.Overlap
		if size == 0 {
			size = defaultTokenChunkSize
			if overlap == 0 {
				overlap = defaultTokenOverlap
			}
		}
		return NewTokenSplitter(size, overlap, cfg.Encoding)
	default:
		return nil, fmt.Errorf("unsupported splitter type: %s", cfg.Type)
	}
}
