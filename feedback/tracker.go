// Package feedback keeps a rolling window of question outcomes for the
// stats surface.
package feedback

import (
	"sync"
	"time"

	"github.com/ShamanBV/shaman-assistant/schema"
)

// Outcome names how a question was resolved.
type Outcome string

const (
	// OutcomeCached means the answer came from the response cache.
	OutcomeCached Outcome = "cached"
	// OutcomeCanned means a templated response short-circuited retrieval.
	OutcomeCanned Outcome = "canned"
	// OutcomeClarified means the assistant asked for more context.
	OutcomeClarified Outcome = "clarified"
	// OutcomeAnswered means the full retrieval pipeline produced an answer.
	OutcomeAnswered Outcome = "answered"
	// OutcomeFailed means the pipeline errored out.
	OutcomeFailed Outcome = "failed"
)

// record is a single resolved question.
type record struct {
	timestamp time.Time
	intent    schema.Intent
	outcome   Outcome
}

// Snapshot summarizes the retained window.
type Snapshot struct {
	Total             int            `json:"total"`
	ByIntent          map[string]int `json:"by_intent,omitempty"`
	ByOutcome         map[string]int `json:"by_outcome,omitempty"`
	ConsecutiveFailed int            `json:"consecutive_failed,omitempty"`
	LastUpdated       time.Time      `json:"last_updated,omitempty"`
}

// Tracker records outcomes as questions resolve. Safe for concurrent use.
type Tracker struct {
	mu      sync.RWMutex
	records []record
	max     int
	now     func() time.Time
}

// NewTracker retains the last window outcomes; window <= 0 keeps 200.
func NewTracker(window int) *Tracker {
	if window <= 0 {
		window = 200
	}
	return &Tracker{
		records: make([]record, 0, window),
		max:     window,
		now:     time.Now,
	}
}

// Record stores one resolved question.
func (t *Tracker) Record(intent schema.Intent, outcome Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = append(t.records, record{
		timestamp: t.now(),
		intent:    intent,
		outcome:   outcome,
	})
	if len(t.records) > t.max {
		t.records = t.records[len(t.records)-t.max:]
	}
}

// Snapshot summarizes the window: totals per intent and outcome plus the
// current run of failures.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	records := append([]record(nil), t.records...)
	t.mu.RUnlock()

	if len(records) == 0 {
		return Snapshot{}
	}

	snap := Snapshot{
		Total:       len(records),
		ByIntent:    make(map[string]int),
		ByOutcome:   make(map[string]int),
		LastUpdated: records[len(records)-1].timestamp,
	}
	for _, rec := range records {
		snap.ByIntent[rec.intent.String()]++
		snap.ByOutcome[string(rec.outcome)]++
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].outcome != OutcomeFailed {
			break
		}
		snap.ConsecutiveFailed++
	}
	return snap
}
