package cache

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/ShamanBV/shaman-assistant/schema"
)

// ResponseCache stores answers under fuzzy question keys with a TTL and a
// bounded LRU. Expired entries are evicted lazily on access. Purely
// in-memory; nothing survives a restart.
type ResponseCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	items    map[string]*entry
	order    *list.List
	hits     uint64
	misses   uint64
}

type entry struct {
	key      string
	answer   *schema.Answer
	question string
	storedAt time.Time
	element  *list.Element
}

// Option customizes a ResponseCache.
type Option func(*ResponseCache)

// WithClock injects the time source. Tests use this to control expiry.
func WithClock(now func() time.Time) Option {
	return func(c *ResponseCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewResponseCache creates a cache holding at most capacity answers, each
// valid for ttl.
func NewResponseCache(capacity int, ttl time.Duration, opts ...Option) *ResponseCache {
	if capacity <= 0 {
		capacity = 512
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &ResponseCache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*entry, capacity),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the cached answer for a question, or false on miss.
// An expired entry counts as a miss and is removed.
func (c *ResponseCache) Get(question string) (*schema.Answer, bool) {
	key := Key(question)

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		if c.now().Sub(ent.storedAt) < c.ttl && ent.answer != nil {
			c.order.MoveToFront(ent.element)
			c.hits++
			return ent.answer.Clone(), true
		}
		c.removeEntry(ent)
	}
	c.misses++
	return nil, false
}

// Set stores a copy of the answer under the question's fuzzy key, evicting
// the least recently used entry when full.
func (c *ResponseCache) Set(question string, answer *schema.Answer) {
	if answer == nil {
		return
	}
	key := Key(question)

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		ent.answer = answer.Clone()
		ent.question = question
		ent.storedAt = c.now()
		c.order.MoveToFront(ent.element)
		return
	}

	if len(c.items) >= c.capacity {
		c.evictOldest()
	}

	elem := c.order.PushFront(key)
	c.items[key] = &entry{
		key:      key,
		answer:   answer.Clone(),
		question: question,
		storedAt: c.now(),
		element:  elem,
	}
}

// Invalidate removes the entry for a question and reports whether one
// existed.
func (c *ResponseCache) Invalidate(question string) bool {
	key := Key(question)

	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.items[key]
	if ok {
		c.removeEntry(ent)
	}
	return ok
}

// Clear drops all entries and resets the hit/miss counters, returning the
// number of entries removed.
func (c *ResponseCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := len(c.items)
	c.items = make(map[string]*entry, c.capacity)
	c.order.Init()
	c.hits = 0
	c.misses = 0
	return count
}

// CleanupExpired sweeps expired entries eagerly and returns the number
// removed. Lazy eviction in Get makes this optional.
func (c *ResponseCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, ent := range c.items {
		if now.Sub(ent.storedAt) >= c.ttl {
			c.removeEntry(ent)
			removed++
		}
	}
	return removed
}

// Stats describes cache state and effectiveness.
type Stats struct {
	Entries    int    `json:"entries"`
	TTLSeconds int    `json:"ttl_seconds"`
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	HitRate    string `json:"hit_rate"`
}

// Stats returns a snapshot of the cache counters.
func (c *ResponseCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total) * 100
	}
	return Stats{
		Entries:    len(c.items),
		TTLSeconds: int(c.ttl / time.Second),
		Hits:       c.hits,
		Misses:     c.misses,
		HitRate:    fmt.Sprintf("%.1f%%", rate),
	}
}

func (c *ResponseCache) evictOldest() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	key := elem.Value.(string)
	if ent, ok := c.items[key]; ok {
		c.removeEntry(ent)
	}
}

func (c *ResponseCache) removeEntry(ent *entry) {
	if ent.element != nil {
		c.order.Remove(ent.element)
	}
	delete(c.items, ent.key)
}
