package gate

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"canvas-lab/domain"
)

func TestCooldownGate_Allows_Rejects_Then_Allows_Again(t *testing.T) {
	req := require.New(t)
	counter := NewCounter()
	g := NewCooldownGate(counter, DefaultPolicy())
	key := testKey(domain.ActionDrawPixel)
	start := time.Now()

	// Given a draw at t=0
	req.True(g.TryEnter(key, start))

	// When the actor retries at t=3 with a 10s cooldown
	req.False(g.TryEnter(key, start.Add(3*time.Second)))

	// Then the attempt at t=11 passes
	req.True(g.TryEnter(key, start.Add(11*time.Second)))
}

func TestCooldownGate_N_Actions_In_Window_Allow_Exactly_One(t *testing.T) {
	req := require.New(t)
	g := NewCooldownGate(NewCounter(), DefaultPolicy())
	key := testKey(domain.ActionDrawPixel)
	start := time.Now()

	allowed := 0
	for i := 0; i < 8; i++ {
		if g.TryEnter(key, start.Add(time.Duration(i)*time.Second)) {
			allowed++
		}
	}
	req.Equal(1, allowed)
}

func TestCooldownGate_Kind_Without_Cooldown_Always_Passes(t *testing.T) {
	req := require.New(t)
	g := NewCooldownGate(NewCounter(), DefaultPolicy())
	key := testKey(domain.ActionConnect)
	now := time.Now()

	for i := 0; i < 10; i++ {
		req.True(g.TryEnter(key, now))
	}
}

func TestRateLimiter_Sixth_Message_Rejected_Seventh_After_Window_Allowed(t *testing.T) {
	req := require.New(t)
	l := NewRateLimiter(NewCounter(), DefaultPolicy())
	key := testKey(domain.ActionSendGlobalMessage)
	start := time.Now()

	// Given M1..M5 within the 5/10s window
	for i := 0; i < 5; i++ {
		req.True(l.TryConsume(key, start.Add(time.Duration(i)*time.Second)))
	}

	// When M6 arrives inside the window
	req.False(l.TryConsume(key, start.Add(6*time.Second)))

	// Then M7 after the window passes
	req.True(l.TryConsume(key, start.Add(11*time.Second)))
}

func TestGates_Same_Kind_Use_Separate_Counters(t *testing.T) {
	req := require.New(t)
	counter := NewCounter()
	policy := DefaultPolicy()
	g := NewCooldownGate(counter, policy)
	l := NewRateLimiter(counter, policy)
	key := testKey(domain.ActionSendGlobalMessage)
	now := time.Now()

	// Given the cooldown consumed its slot
	req.True(g.TryEnter(key, now))

	// Then the rate window still has all five
	for i := 0; i < 5; i++ {
		req.True(l.TryConsume(key, now))
	}
	req.False(l.TryConsume(key, now))
}

func TestPolicy_RetryAfter_Prefers_Cooldown(t *testing.T) {
	req := require.New(t)
	policy := DefaultPolicy()

	req.Equal(5*time.Second, policy.RetryAfter(domain.ActionSendGlobalMessage))
	req.Equal(time.Minute, policy.RetryAfter(domain.ActionConnect))
}

func TestGates_Scoped_Keys_Do_Not_Share_Windows(t *testing.T) {
	req := require.New(t)
	l := NewRateLimiter(NewCounter(), DefaultPolicy())
	user := domain.UserID(uuid.NewString())
	now := time.Now()
	groupA := domain.ActionKey{User: user, Kind: domain.ActionSendGroupMessage, Scope: "a"}
	groupB := domain.ActionKey{User: user, Kind: domain.ActionSendGroupMessage, Scope: "b"}

	// Given group A is exhausted
	for i := 0; i < 5; i++ {
		req.True(l.TryConsume(groupA, now))
	}
	req.False(l.TryConsume(groupA, now))

	// Then group B is untouched
	req.True(l.TryConsume(groupB, now))
}
