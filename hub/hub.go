// Package hub is the topic-based broadcast fabric.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// durability, or retries, and no replay: a subscriber only sees events
// published while it is attached. The hub is not a message broker.
//
// Per topic, events published by one goroutine reach each subscriber in
// publish order. Nothing is promised across topics or publishers.
package hub

import (
	"context"
	"log/slog"
	"sync"

	"canvas-lab/contract"
	"canvas-lab/domain/event"
)

type Hub struct {
	mu     sync.RWMutex
	log    *slog.Logger
	topics map[string]map[string]contract.Subscriber
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:    log,
		topics: make(map[string]map[string]contract.Subscriber),
	}
}

// Attach adds the subscriber to the topic. Attaching twice is a no-op.
func (h *Hub) Attach(topic string, sub contract.Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.topics[topic]
	if subs == nil {
		subs = make(map[string]contract.Subscriber)
		h.topics[topic] = subs
	}
	subs[sub.ID()] = sub
}

// Detach removes the subscriber from the topic and drops the topic
// entirely once nobody is left, so idle topics never accumulate.
func (h *Hub) Detach(topic, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.topics[topic]; ok {
		delete(subs, subscriberID)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Publish delivers the event to every current subscriber of the topic.
// The membership is snapshotted under the read lock and delivery happens
// outside it, so a publish in flight may race a concurrent unsubscribe:
// that subscriber gets the event or doesn't, never anything worse.
// A full or closed subscriber drops the event; it cannot stall the rest.
func (h *Hub) Publish(topic string, e event.DomainEvent) {
	if topic == "" {
		return
	}

	h.mu.RLock()
	members := h.topics[topic]
	subs := make([]contract.Subscriber, 0, len(members))
	for _, sub := range members {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.Consume(context.Background(), e); err != nil {
			h.log.Debug("Delivery dropped", "topic", topic, "subscriber", sub.ID(), "error", err)
		}
	}
}

// SubscriberCount reports the current size of a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
