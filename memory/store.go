// Package memory keeps per-thread conversation rounds so follow-up
// questions carry their thread context into classification, query
// optimization and answer prompts. Threads are capped at a maximum round
// count and expire after a period of inactivity.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ShamanBV/shaman-assistant/config"
)

// ConversationStore keeps rolling question/answer rounds per thread.
type ConversationStore interface {
	// LastRounds returns up to n most recent rounds, oldest first.
	// n <= 0 returns all retained rounds.
	LastRounds(ctx context.Context, threadID string, n int) ([]Round, error)

	// SaveRound appends a round, trimming the thread to the retention cap.
	SaveRound(ctx context.Context, threadID string, round Round) error

	// Clear drops all rounds for the thread.
	Clear(ctx context.Context, threadID string) error
}

// NewStore builds the configured backend: "memory" (default) or "redis".
func NewStore(cfg config.MemoryConfig) (ConversationStore, error) {
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = 10
	}
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	switch cfg.Store {
	case "", "memory":
		return NewInMemoryStore(maxRounds, ttl), nil
	case "redis":
		return NewRedisStore(cfg.Redis, maxRounds, ttl)
	default:
		return nil, fmt.Errorf("unsupported memory store: %s", cfg.Store)
	}
}

type threadEntry struct {
	rounds  []Round
	touched time.Time
}

// InMemoryStore holds threads in a map. Suited for tests and single
// process deployments; state is lost on restart.
type InMemoryStore struct {
	mu        sync.RWMutex
	threads   map[string]*threadEntry
	maxRounds int
	ttl       time.Duration
	now       func() time.Time
}

// NewInMemoryStore creates an in-process store retaining at most maxRounds
// rounds per thread and dropping threads idle longer than ttl.
func NewInMemoryStore(maxRounds int, ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{
		threads:   make(map[string]*threadEntry),
		maxRounds: maxRounds,
		ttl:       ttl,
		now:       time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (s *InMemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *InMemoryStore) LastRounds(ctx context.Context, threadID string, n int) ([]Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.threads[threadID]
	if !ok || s.expired(entry) {
		return []Round{}, nil
	}
	rounds := entry.rounds
	if n > 0 && n < len(rounds) {
		rounds = rounds[len(rounds)-n:]
	}
	out := make([]Round, len(rounds))
	copy(out, rounds)
	return out, nil
}

func (s *InMemoryStore) SaveRound(ctx context.Context, threadID string, round Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if round.Timestamp.IsZero() {
		round.Timestamp = now
	}

	entry, ok := s.threads[threadID]
	if !ok || s.expired(entry) {
		entry = &threadEntry{}
		s.threads[threadID] = entry
	}
	entry.rounds = append(entry.rounds, round)
	if len(entry.rounds) > s.maxRounds {
		entry.rounds = entry.rounds[len(entry.rounds)-s.maxRounds:]
	}
	entry.touched = now

	s.purgeExpiredLocked()
	return nil
}

func (s *InMemoryStore) Clear(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, threadID)
	return nil
}

func (s *InMemoryStore) expired(entry *threadEntry) bool {
	return s.now().Sub(entry.touched) > s.ttl
}

func (s *InMemoryStore) purgeExpiredLocked() {
	for id, entry := range s.threads {
		if s.expired(entry) {
			delete(s.threads, id)
		}
	}
}
