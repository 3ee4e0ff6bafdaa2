package gate

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"canvas-lab/domain"
)

func testKey(kind domain.ActionKind) domain.ActionKey {
	return domain.ActionKey{User: domain.UserID(uuid.NewString()), Kind: kind}
}

func TestCounter_First_Action_Allowed(t *testing.T) {
	req := require.New(t)
	counter := NewCounter()
	now := time.Now()

	// When a key is seen for the first time
	allowed := counter.IncrementOrReject(testKey(domain.ActionDrawPixel), 1, 10*time.Second, now)

	// Then the action passes
	req.True(allowed)
}

func TestCounter_Over_Limit_Rejected_Not_Refunded(t *testing.T) {
	req := require.New(t)
	counter := NewCounter()
	key := testKey(domain.ActionSendGlobalMessage)
	now := time.Now()

	// Given five messages within the window
	for i := 0; i < 5; i++ {
		req.True(counter.IncrementOrReject(key, 5, 10*time.Second, now.Add(time.Duration(i)*time.Second)))
	}

	// When a sixth arrives inside the window
	allowed := counter.IncrementOrReject(key, 5, 10*time.Second, now.Add(5*time.Second))

	// Then it is rejected and the rejected increment still counts
	req.False(allowed)
	req.Equal(6, counter.Peek(key, now.Add(5*time.Second)))
}

func TestCounter_Window_Elapsed_Resets(t *testing.T) {
	req := require.New(t)
	counter := NewCounter()
	key := testKey(domain.ActionSendGlobalMessage)
	now := time.Now()

	// Given a key rejected at the limit
	for i := 0; i < 6; i++ {
		counter.IncrementOrReject(key, 5, 10*time.Second, now)
	}
	req.False(counter.IncrementOrReject(key, 5, 10*time.Second, now))

	// When the window elapses
	later := now.Add(10 * time.Second)

	// Then the stale entry is ignored and the next action passes
	req.True(counter.IncrementOrReject(key, 5, 10*time.Second, later))
	req.Equal(1, counter.Peek(key, later))
}

func TestCounter_Distinct_Keys_Independent(t *testing.T) {
	req := require.New(t)
	counter := NewCounter()
	now := time.Now()
	key1 := testKey(domain.ActionDrawPixel)
	key2 := testKey(domain.ActionDrawPixel)

	// Given key1 is exhausted
	req.True(counter.IncrementOrReject(key1, 1, 10*time.Second, now))
	req.False(counter.IncrementOrReject(key1, 1, 10*time.Second, now))

	// Then key2 is unaffected
	req.True(counter.IncrementOrReject(key2, 1, 10*time.Second, now))
}

func TestCounter_Concurrent_Increments_Exactly_Once_Per_Window(t *testing.T) {
	req := require.New(t)
	counter := NewCounter()
	key := testKey(domain.ActionDrawPixel)
	now := time.Now()

	// When 100 goroutines race on a limit of 1
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if counter.IncrementOrReject(key, 1, 10*time.Second, now) {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Then exactly one wins
	req.Equal(1, allowed)
}
