// Package presence tracks which users are currently online per scope.
package presence

import (
	"sync"
	"time"

	"canvas-lab/domain"
)

// sweepThreshold bounds the registry under churn: once an exclusive
// access sees this many entries, expired ones are dropped in place.
const sweepThreshold = 4096

type scopeKey struct {
	User  domain.UserID
	Scope string
}

// Registry keeps one expiring entry per (user, scope). Expiry is lazy,
// like the gate counters: an expired entry reads as offline and is
// evicted on the next write that touches the map.
type Registry struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[scopeKey]time.Time // value is expires_at
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:     ttl,
		entries: make(map[scopeKey]time.Time),
	}
}

// MarkOnline refreshes the user's entry and reports whether this was an
// offline-to-online transition. Redundant refreshes return false so the
// caller publishes a join exactly once per transition.
func (r *Registry) MarkOnline(user domain.UserID, scope string, now time.Time) bool {
	key := scopeKey{User: user, Scope: scope}

	r.mu.Lock()
	defer r.mu.Unlock()

	expiresAt, ok := r.entries[key]
	if len(r.entries) >= sweepThreshold {
		r.sweep(now)
	}
	r.entries[key] = now.Add(r.ttl)
	return !ok || !expiresAt.After(now)
}

// MarkOffline removes the entry and reports whether the user was still
// online (an expired entry counts as already offline).
func (r *Registry) MarkOffline(user domain.UserID, scope string, now time.Time) bool {
	key := scopeKey{User: user, Scope: scope}

	r.mu.Lock()
	defer r.mu.Unlock()

	expiresAt, ok := r.entries[key]
	delete(r.entries, key)
	return ok && expiresAt.After(now)
}

func (r *Registry) IsOnline(user domain.UserID, scope string, now time.Time) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expiresAt, ok := r.entries[scopeKey{User: user, Scope: scope}]
	return ok && expiresAt.After(now)
}

func (r *Registry) OnlineCount(scope string, now time.Time) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for key, expiresAt := range r.entries {
		if key.Scope == scope && expiresAt.After(now) {
			count++
		}
	}
	return count
}

// sweep drops expired entries. Caller holds the write lock.
func (r *Registry) sweep(now time.Time) {
	for key, expiresAt := range r.entries {
		if !expiresAt.After(now) {
			delete(r.entries, key)
		}
	}
}
