// Package chat keeps the per-channel replay buffer.
// The ring is a cache for newly subscribed clients; the system of
// record lives with the persistence collaborator.
package chat

import (
	"sync"

	"canvas-lab/domain"
)

type ring struct {
	mu     sync.Mutex
	events []domain.ChatEvent
	start  int
	count  int
}

// RingBuffer holds the last K messages of every channel.
// Appends and reads are atomic per channel; a reader never observes
// a torn event.
type RingBuffer struct {
	mu       sync.RWMutex
	capacity int
	channels map[domain.ChannelID]*ring
}

func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{
		capacity: capacity,
		channels: make(map[domain.ChannelID]*ring),
	}
}

func (b *RingBuffer) Append(channel domain.ChannelID, e domain.ChatEvent) {
	r := b.channel(channel)
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count < b.capacity {
		r.events[(r.start+r.count)%b.capacity] = e
		r.count++
		return
	}
	// Full: overwrite the oldest slot.
	r.events[r.start] = e
	r.start = (r.start + 1) % b.capacity
}

// Recent returns up to n messages of the channel, oldest first.
func (b *RingBuffer) Recent(channel domain.ChannelID, n int) []domain.ChatEvent {
	b.mu.RLock()
	r, ok := b.channels[channel]
	b.mu.RUnlock()
	if !ok || n <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if n > r.count {
		n = r.count
	}
	out := make([]domain.ChatEvent, 0, n)
	for i := r.count - n; i < r.count; i++ {
		out = append(out, r.events[(r.start+i)%b.capacity])
	}
	return out
}

// Len reports how many messages the channel currently holds.
func (b *RingBuffer) Len(channel domain.ChannelID) int {
	b.mu.RLock()
	r, ok := b.channels[channel]
	b.mu.RUnlock()
	if !ok {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (b *RingBuffer) channel(channel domain.ChannelID) *ring {
	b.mu.RLock()
	r, ok := b.channels[channel]
	b.mu.RUnlock()
	if ok {
		return r
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok = b.channels[channel]; ok {
		return r
	}
	r = &ring{events: make([]domain.ChatEvent, b.capacity)}
	b.channels[channel] = r
	return r
}
