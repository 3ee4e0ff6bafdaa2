package chat

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"canvas-lab/domain"
)

func message(content string) domain.ChatEvent {
	return domain.ChatEvent{
		ID:        uuid.New(),
		Channel:   domain.GlobalChannel,
		UserID:    "alice",
		Content:   content,
		CreatedAt: time.Now(),
	}
}

func TestRingBuffer_Recent_Is_Oldest_First(t *testing.T) {
	req := require.New(t)
	ring := NewRingBuffer(50)

	// Given three messages
	for i := 1; i <= 3; i++ {
		ring.Append(domain.GlobalChannel, message(fmt.Sprintf("m%d", i)))
	}

	// Then replay preserves append order
	recent := ring.Recent(domain.GlobalChannel, 50)
	req.Len(recent, 3)
	req.Equal("m1", recent[0].Content)
	req.Equal("m3", recent[2].Content)
}

func TestRingBuffer_Capacity_Evicts_Oldest(t *testing.T) {
	req := require.New(t)
	ring := NewRingBuffer(50)

	// Given K+1 appends
	for i := 1; i <= 51; i++ {
		ring.Append(domain.GlobalChannel, message(fmt.Sprintf("m%d", i)))
	}

	// Then the buffer holds K and the first message is gone
	req.Equal(50, ring.Len(domain.GlobalChannel))
	recent := ring.Recent(domain.GlobalChannel, 50)
	req.Len(recent, 50)
	req.Equal("m2", recent[0].Content)
	req.Equal("m51", recent[49].Content)
}

func TestRingBuffer_Recent_Caps_At_Available(t *testing.T) {
	req := require.New(t)
	ring := NewRingBuffer(50)

	ring.Append(domain.GlobalChannel, message("only"))

	req.Len(ring.Recent(domain.GlobalChannel, 10), 1)
	req.Empty(ring.Recent(domain.GroupChannel("42"), 10))
	req.Empty(ring.Recent(domain.GlobalChannel, 0))
}

func TestRingBuffer_Channels_Are_Isolated(t *testing.T) {
	req := require.New(t)
	ring := NewRingBuffer(50)

	ring.Append(domain.GlobalChannel, message("global"))
	ring.Append(domain.GroupChannel("7"), message("grouped"))

	req.Equal(1, ring.Len(domain.GlobalChannel))
	req.Equal(1, ring.Len(domain.GroupChannel("7")))
	req.Equal("global", ring.Recent(domain.GlobalChannel, 1)[0].Content)
}

func TestRingBuffer_Concurrent_Appends_Never_Exceed_Capacity(t *testing.T) {
	req := require.New(t)
	ring := NewRingBuffer(50)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ring.Append(domain.GlobalChannel, message(fmt.Sprintf("m%d", i)))
		}(i)
	}
	wg.Wait()

	req.Equal(50, ring.Len(domain.GlobalChannel))
	req.Len(ring.Recent(domain.GlobalChannel, 50), 50)
}
