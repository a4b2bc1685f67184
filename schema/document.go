package schema

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// Document is a unit of indexed content.
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Vector    []float32      `json:"vector,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
}

// NewDocumentID derives a stable document id from the source name and a
// natural key, so re-ingesting the same item produces the same id.
func NewDocumentID(source, naturalKey string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%s", source, naturalKey)))
	return hex.EncodeToString(sum[:])
}

// MetaString returns a string metadata field, or empty when absent.
func (d Document) MetaString(key string) string {
	if d.Metadata == nil {
		return ""
	}
	if v, ok := d.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// Clone returns a deep copy safe to mutate.
func (d Document) Clone() Document {
	out := d
	if d.Metadata != nil {
		out.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	if d.Vector != nil {
		out.Vector = append([]float32(nil), d.Vector...)
	}
	return out
}
