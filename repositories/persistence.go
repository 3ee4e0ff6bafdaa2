package repositories

import (
	"context"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"canvas-lab/domain"
)

// Persistence bundles the pixel and message repositories behind the
// engine's collaborator interfaces (PersistenceSink and HistoryQuery).
type Persistence struct {
	pixels   PixelRepository
	messages MessageRepository
}

func NewPersistence(db *badger.DB, log *slog.Logger) Persistence {
	return Persistence{
		pixels:   NewPixelRepository(db, log),
		messages: NewMessageRepository(db, log),
	}
}

func (p Persistence) RecordPixel(ctx context.Context, cell domain.Cell) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.pixels.StorePixel(cell)
}

func (p Persistence) RecordChat(ctx context.Context, message domain.ChatEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.messages.StoreMessage(message)
}

func (p Persistence) RecentMessages(channel domain.ChannelID, n int) ([]domain.ChatEvent, error) {
	return p.messages.RecentMessages(channel, n)
}

func (p Persistence) AllPixels() ([]domain.Cell, error) {
	return p.pixels.AllPixels()
}
