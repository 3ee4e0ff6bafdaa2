package domain

import (
	"fmt"
	"time"
)

// RejectionReason distinguishes the two pacing mechanisms.
type RejectionReason string

const (
	ReasonCooldown    RejectionReason = "on_cooldown"
	ReasonRateLimited RejectionReason = "rate_limited"
)

// Rejection is returned when a gate refuses an action.
// It carries a retry hint and implements error so services can
// surface it synchronously without a dedicated result type.
type Rejection struct {
	Kind       ActionKind
	Reason     RejectionReason
	RetryAfter time.Duration
}

func (r Rejection) Error() string {
	return fmt.Sprintf("%s: %s, retry after %s", r.Kind, r.Reason, r.RetryAfter)
}
