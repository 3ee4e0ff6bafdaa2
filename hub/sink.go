package hub

import (
	"context"

	"canvas-lab/domain/event"
	"canvas-lab/errors"
)

// ChannelSink is a buffered-channel subscriber handle.
// The transport owning the connection drains Events; Consume never
// blocks the publisher.
type ChannelSink struct {
	id     string
	Events chan event.DomainEvent
}

func NewChannelSink(id string, bufferSize int) *ChannelSink {
	return &ChannelSink{id: id, Events: make(chan event.DomainEvent, bufferSize)}
}

func (s *ChannelSink) ID() string { return s.id }

// Consume hands the event to the connection's outbound buffer.
// A full buffer means the connection is too slow: the event is dropped
// for this subscriber and the next state sync heals the gap. The drop
// is reported so the publisher's logging sees it.
func (s *ChannelSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrDeliveryDropped
	}
}
