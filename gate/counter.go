// Package gate implements the pacing primitives: an expiring per-key
// counter and the cooldown/rate-limit gates built on it.
package gate

import (
	"hash/fnv"
	"sync"
	"time"

	"canvas-lab/domain"
)

const shardCount = 64

// sweepThreshold bounds a shard under hostile key churn: once a locked
// access sees this many entries, expired ones are dropped in place.
const sweepThreshold = 1024

type entry struct {
	count       int
	windowStart time.Time
	window      time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.windowStart) >= e.window
}

type shard struct {
	mu      sync.Mutex
	entries map[domain.ActionKey]entry
}

// Counter is a fixed-window counter with lazy expiry. There is no
// background janitor: staleness is detected by comparing the stored
// window start against the caller's clock on each access. Keys are
// sharded so unrelated actors never contend on one mutex.
type Counter struct {
	shards [shardCount]shard
}

func NewCounter() *Counter {
	c := &Counter{}
	for i := range c.shards {
		c.shards[i].entries = make(map[domain.ActionKey]entry)
	}
	return c
}

// IncrementOrReject applies the single atomic read-modify-write the
// gates rely on. A missing or elapsed entry resets to count=1 and is
// allowed. Otherwise the count is incremented and the action is allowed
// only while count <= limit; the increment that crosses the limit is
// kept, not refunded.
func (c *Counter) IncrementOrReject(key domain.ActionKey, limit int, window time.Duration, now time.Time) bool {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.expired(now) {
		if len(s.entries) >= sweepThreshold {
			s.sweep(now)
		}
		s.entries[key] = entry{count: 1, windowStart: now, window: window}
		return true
	}

	e.count++
	s.entries[key] = e
	return e.count <= limit
}

// Peek reports the live count for a key without mutating it.
func (c *Counter) Peek(key domain.ActionKey, now time.Time) int {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.expired(now) {
		return 0
	}
	return e.count
}

func (c *Counter) shard(key domain.ActionKey) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.User))
	_, _ = h.Write([]byte(key.Kind))
	_, _ = h.Write([]byte(key.Scope))
	return &c.shards[h.Sum32()%shardCount]
}

// sweep drops expired entries. Caller holds the shard lock.
func (s *shard) sweep(now time.Time) {
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
		}
	}
}
