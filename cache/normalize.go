package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// fillerPhrases are stripped from questions before hashing, in order, so
// trivially different phrasings of the same request share a cache entry.
var fillerPhrases = []string{"please", "can you", "could you", "help me", "i need to"}

// Normalize lowercases a question, strips filler phrases, and collapses
// whitespace. Two questions that differ only by fillers normalize equal.
func Normalize(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	for _, phrase := range fillerPhrases {
		normalized = strings.ReplaceAll(normalized, phrase, "")
	}
	return strings.Join(strings.Fields(normalized), " ")
}

// Key hashes the normalized form of a question into a cache key.
func Key(question string) string {
	sum := md5.Sum([]byte(Normalize(question)))
	return hex.EncodeToString(sum[:])
}
