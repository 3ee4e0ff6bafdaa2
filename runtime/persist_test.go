package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"canvas-lab/domain"
	"canvas-lab/domain/event"
	"canvas-lab/mocks"
)

func TestPersistWorker_Records_Pixels_And_Messages(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	queue := make(chan event.DomainEvent, 4)
	sink := mocks.NewMockPersistenceSink(ctrl)
	recorded := make(chan any, 2)

	sink.EXPECT().RecordPixel(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cell domain.Cell) error {
			recorded <- cell
			return nil
		})
	sink.EXPECT().RecordChat(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, message domain.ChatEvent) error {
			recorded <- message
			return nil
		})

	worker := NewPersistWorker(log, queue, sink, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	// When a pixel and a message flow through the queue
	user := domain.UserID(uuid.NewString())
	queue <- event.PixelPlaced{X: 4, Y: 5, Color: "#ABCDEF", UserID: user, At: time.Now()}
	queue <- event.ChatPosted{ID: uuid.New(), Channel: domain.GlobalChannel, UserID: user, Content: "hello", At: time.Now()}

	// Then both reach the durable sink
	cell := (<-recorded).(domain.Cell)
	req.Equal(4, cell.X)
	req.Equal("#ABCDEF", cell.Color)
	req.Equal(user, cell.OwnerID)

	message := (<-recorded).(domain.ChatEvent)
	req.Equal(domain.GlobalChannel, message.Channel)
	req.Equal("hello", message.Content)
}

func TestPersistWorker_Skips_Ephemeral_Events(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	queue := make(chan event.DomainEvent, 4)
	sink := mocks.NewMockPersistenceSink(ctrl)
	recorded := make(chan any, 1)
	sink.EXPECT().RecordPixel(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cell domain.Cell) error {
			recorded <- cell
			return nil
		})

	worker := NewPersistWorker(log, queue, sink, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	// Given presence and rejection traffic ahead of a pixel
	queue <- event.PresenceChanged{UserID: "alice", Scope: "canvas", Action: event.ActionJoined, At: time.Now()}
	queue <- event.RateLimited{Kind: domain.ActionDrawPixel, RetryAfter: time.Second, At: time.Now()}
	queue <- event.PixelPlaced{X: 1, Y: 1, Color: "#000000", UserID: "alice", At: time.Now()}

	// Then only the pixel hits the sink; a stray call would fail the controller
	select {
	case <-recorded:
	case <-time.After(2 * time.Second):
		t.Fatal("pixel never persisted")
	}
}

func TestPersistWorker_Failure_Is_Swallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	queue := make(chan event.DomainEvent, 4)
	sink := mocks.NewMockPersistenceSink(ctrl)
	calls := make(chan struct{}, 2)

	failing := sink.EXPECT().RecordPixel(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Cell) error {
			calls <- struct{}{}
			return fmt.Errorf("disk on fire")
		})
	sink.EXPECT().RecordPixel(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Cell) error {
			calls <- struct{}{}
			return nil
		}).After(failing)

	worker := NewPersistWorker(log, queue, sink, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	// When a write fails, the worker keeps draining
	queue <- event.PixelPlaced{X: 0, Y: 0, Color: "#111111", UserID: "bob", At: time.Now()}
	queue <- event.PixelPlaced{X: 0, Y: 1, Color: "#222222", UserID: "bob", At: time.Now()}

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatal("worker stopped draining after a failure")
		}
	}
}
