package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"canvas-lab/domain"
)

func Test_Persistence_Implements_Both_Collaborator_Surfaces(t *testing.T) {
	req := require.New(t)
	persistence := NewPersistence(openTestDB(t), slog.Default())
	ctx := context.Background()
	at := time.Now().UTC()

	req.NoError(persistence.RecordPixel(ctx, storedCell(1, 2, "#336699", "Alice", at)))
	req.NoError(persistence.RecordChat(ctx, chatMessage(domain.GlobalChannel, "Alice", "hi", at)))

	cells, err := persistence.AllPixels()
	req.NoError(err)
	req.Len(cells, 1)

	messages, err := persistence.RecentMessages(domain.GlobalChannel, 10)
	req.NoError(err)
	req.Len(messages, 1)
}

func Test_Persistence_Honors_Canceled_Context(t *testing.T) {
	req := require.New(t)
	persistence := NewPersistence(openTestDB(t), slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req.Error(persistence.RecordPixel(ctx, storedCell(1, 2, "#336699", "Alice", time.Now())))
	req.Error(persistence.RecordChat(ctx, chatMessage(domain.GlobalChannel, "Alice", "hi", time.Now())))
}
