package gate

import (
	"time"

	"canvas-lab/domain"
)

// CooldownGate enforces a minimum interval between successive actions
// of one kind by one actor. It is the limit=1 case of the counter:
// the first action in a window is allowed, every further one rejected
// until the window elapses. O(1), no I/O, nothing mutated on reject.
type CooldownGate struct {
	counter *Counter
	policy  Policy
}

func NewCooldownGate(counter *Counter, policy Policy) *CooldownGate {
	return &CooldownGate{counter: counter, policy: policy}
}

// TryEnter reports whether the action may proceed. Kinds without a
// configured cooldown always pass.
func (g *CooldownGate) TryEnter(key domain.ActionKey, now time.Time) bool {
	rule := g.policy.Rule(key.Kind)
	if rule.Cooldown <= 0 {
		return true
	}
	return g.counter.IncrementOrReject(namespaced(key, "cooldown"), 1, rule.Cooldown, now)
}

func (g *CooldownGate) RetryAfter(kind domain.ActionKind) time.Duration {
	return g.policy.Rule(kind).Cooldown
}

// RateLimiter enforces a maximum count of actions within a window.
// Distinct from the cooldown only in that limit > 1; same primitive,
// same rejection semantics (no partial credit).
type RateLimiter struct {
	counter *Counter
	policy  Policy
}

func NewRateLimiter(counter *Counter, policy Policy) *RateLimiter {
	return &RateLimiter{counter: counter, policy: policy}
}

// TryConsume reports whether the action fits the kind's window.
// Kinds without a configured window always pass.
func (l *RateLimiter) TryConsume(key domain.ActionKey, now time.Time) bool {
	rule := l.policy.Rule(key.Kind)
	if rule.Limit <= 0 {
		return true
	}
	return l.counter.IncrementOrReject(namespaced(key, "rate"), rule.Limit, rule.Window, now)
}

func (l *RateLimiter) RetryAfter(kind domain.ActionKind) time.Duration {
	return l.policy.Rule(kind).Window
}

// namespaced keeps the two mechanisms on separate counter entries for
// kinds that carry both a cooldown and a rate window.
func namespaced(key domain.ActionKey, mechanism string) domain.ActionKey {
	key.Kind = key.Kind + ":" + domain.ActionKind(mechanism)
	return key
}
