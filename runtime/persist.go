package runtime

import (
	"context"
	"log/slog"
	"time"

	"canvas-lab/contract"
	"canvas-lab/domain"
	"canvas-lab/domain/event"
)

// PersistWorker drains the dispatcher's persist queue and records each
// mutation through the persistence collaborator. Failures and timeouts
// are logged, never surfaced: the in-memory state and the broadcast
// already happened, durability is best effort by design of the hot path.
type PersistWorker struct {
	log     *slog.Logger
	queue   <-chan event.DomainEvent
	sink    contract.PersistenceSink
	timeout time.Duration
}

func NewPersistWorker(log *slog.Logger, queue <-chan event.DomainEvent,
	sink contract.PersistenceSink, timeout time.Duration) *PersistWorker {
	return &PersistWorker{log: log, queue: queue, sink: sink, timeout: timeout}
}

func (w *PersistWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping persist worker")
			return nil
		case e := <-w.queue:
			w.record(ctx, e)
		}
	}
}

func (w *PersistWorker) record(ctx context.Context, e event.DomainEvent) {
	recordCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	var err error
	switch evt := e.(type) {
	case event.PixelPlaced:
		err = w.sink.RecordPixel(recordCtx, domain.Cell{
			X:        evt.X,
			Y:        evt.Y,
			Color:    evt.Color,
			OwnerID:  evt.UserID,
			PlacedAt: evt.At,
		})
	case event.ChatPosted:
		err = w.sink.RecordChat(recordCtx, domain.ChatEvent{
			ID:        evt.ID,
			Channel:   evt.Channel,
			UserID:    evt.UserID,
			Content:   evt.Content,
			CreatedAt: evt.At,
		})
	default:
		// Presence and rejection events are ephemeral.
		return
	}
	if err != nil {
		w.log.Warn("Durable write failed", "topic", e.Topic(), "error", err)
	}
}
