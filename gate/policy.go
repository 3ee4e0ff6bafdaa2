package gate

import (
	"time"

	"canvas-lab/domain"
)

// Rule is the canonical pacing configuration for one action kind.
// Cooldown == 0 means no cooldown; Limit == 0 means no rate window.
// A kind may carry both, and must then pass both gates.
type Rule struct {
	Cooldown time.Duration
	Limit    int
	Window   time.Duration
}

type Policy map[domain.ActionKind]Rule

// DefaultPolicy carries the values the product shipped with:
// one pixel per 10s, chat on a 5s cooldown plus 5 per 10s,
// 30 channel actions per 10s and 5 connection attempts per minute.
func DefaultPolicy() Policy {
	return Policy{
		domain.ActionDrawPixel:         {Cooldown: 10 * time.Second},
		domain.ActionSendGlobalMessage: {Cooldown: 5 * time.Second, Limit: 5, Window: 10 * time.Second},
		domain.ActionSendGroupMessage:  {Cooldown: 5 * time.Second, Limit: 5, Window: 10 * time.Second},
		domain.ActionChannelAction:     {Limit: 30, Window: 10 * time.Second},
		domain.ActionConnect:           {Limit: 5, Window: time.Minute},
	}
}

func (p Policy) Rule(kind domain.ActionKind) Rule {
	return p[kind]
}

// RetryAfter is the hint attached to a rejection for the kind.
func (p Policy) RetryAfter(kind domain.ActionKind) time.Duration {
	r := p[kind]
	if r.Cooldown > 0 {
		return r.Cooldown
	}
	return r.Window
}
