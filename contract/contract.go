//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"canvas-lab/domain"
	"canvas-lab/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Subscriber is a connection attached to hub topics.
// The hub only keeps this handle; it never outlives the connection.
type Subscriber interface {
	EventSink
	ID() string
}

type IHub interface {
	Publish(topic string, e event.DomainEvent)
	Attach(topic string, sub Subscriber)
	Detach(topic, subscriberID string)
}

// IdentityProvider resolves the acting user.
// Session establishment lives with an external collaborator; the engine
// only ever asks "who is this" and rejects gated actions when the answer
// is nobody.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (domain.UserID, bool)
}

// PersistenceSink records accepted mutations durably, best effort.
// A failure here is logged by the caller and never rolls back the
// in-memory state or the broadcast.
type PersistenceSink interface {
	RecordPixel(ctx context.Context, cell domain.Cell) error
	RecordChat(ctx context.Context, message domain.ChatEvent) error
}

// HistoryQuery answers replay reads on cold start only; steady state
// reads hit the in-memory ring buffer.
type HistoryQuery interface {
	RecentMessages(channel domain.ChannelID, n int) ([]domain.ChatEvent, error)
	AllPixels() ([]domain.Cell, error)
}

// GroupMembership tells whether a user may join a group channel.
// Group accounts are owned by an external collaborator.
type GroupMembership interface {
	IsMember(user domain.UserID, groupID string) bool
}
