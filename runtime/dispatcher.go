// Package runtime moves accepted mutations out to their consumers.
// It orchestrates delivery without containing domain rules: stores
// return explicit event values and the dispatcher forwards them, so
// mutation and notification stay composable and testable apart.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"canvas-lab/contract"
	"canvas-lab/domain"
	"canvas-lab/domain/event"
)

// Dispatcher drains the event channel on a single goroutine, which
// keeps per-topic publish order intact, then hands each event to the
// hub and queues it for the persistence worker. Both hand-offs are
// non-blocking: a broadcast can never be failed by its consumers.
type Dispatcher struct {
	log          *slog.Logger
	hub          contract.IHub
	events       chan event.DomainEvent
	persistQueue chan event.DomainEvent

	mu          sync.Mutex
	placed      map[domain.UserID]int64
	day         string // UTC date the daily tally belongs to
	placedToday map[domain.UserID]int64
}

func NewDispatcher(log *slog.Logger, hub contract.IHub, bufferSize int) *Dispatcher {
	return &Dispatcher{
		log:          log,
		hub:          hub,
		events:       make(chan event.DomainEvent, bufferSize),
		persistQueue: make(chan event.DomainEvent, bufferSize),
	}
}

// Dispatch enqueues an event for broadcast and persistence. It never
// blocks the caller's gate/mutate sequence; under sustained overload
// the event is dropped with a warning.
func (d *Dispatcher) Dispatch(e event.DomainEvent) {
	select {
	case d.events <- e:
	default:
		d.log.Warn(fmt.Sprintf("Event channel full, dropping %T", e))
	}
}

func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.log.Debug("Context done, stopping dispatcher")
			return nil
		case e := <-d.events:
			d.hub.Publish(e.Topic(), e)
			d.tally(e)
			select {
			case d.persistQueue <- e:
			default:
				d.log.Warn(fmt.Sprintf("Persist queue full, dropping %T", e))
			}
		}
	}
}

// PersistQueue is drained by the persistence worker.
func (d *Dispatcher) PersistQueue() <-chan event.DomainEvent {
	return d.persistQueue
}

// PixelsPlaced reports the user's all-time accepted pixel count since
// boot. Product accounting happens elsewhere; this feeds it.
func (d *Dispatcher) PixelsPlaced(user domain.UserID) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.placed[user]
}

// PixelsPlacedToday reports the user's accepted pixels on the current
// UTC day. The daily map is reset lazily when a new day is observed.
func (d *Dispatcher) PixelsPlacedToday(user domain.UserID, now time.Time) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if now.UTC().Format(time.DateOnly) != d.day {
		return 0
	}
	return d.placedToday[user]
}

func (d *Dispatcher) tally(e event.DomainEvent) {
	placed, ok := e.(event.PixelPlaced)
	if !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.placed == nil {
		d.placed = make(map[domain.UserID]int64)
	}
	d.placed[placed.UserID]++

	day := placed.At.UTC().Format(time.DateOnly)
	if day != d.day {
		d.day = day
		d.placedToday = make(map[domain.UserID]int64)
	}
	d.placedToday[placed.UserID]++
}
