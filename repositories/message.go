// Package repositories persists accepted mutations in BadgerDB.
// Writes are best effort from the engine's point of view: a failed
// record is logged by the dispatcher and never blocks a broadcast.
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"canvas-lab/domain"
)

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

type diskMessage struct {
	ID      uuid.UUID `json:"id"`
	Channel string    `json:"channel"`
	Author  string    `json:"author"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// StoreMessage persists a chat message.
// The key is "msg:{channel}:{timestamp_padded}:{uuid}" so that:
//  1. A prefix scan per channel walks messages in chronological order
//     (19-digit zero padding keeps lexicographic and time order aligned).
//  2. Two messages on the same nanosecond cannot collide; the UUID
//     disconnects them.
func (m MessageRepository) StoreMessage(message domain.ChatEvent) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		message.Channel,
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(diskMessage{
		ID:      message.ID,
		Channel: string(message.Channel),
		Author:  string(message.UserID),
		Content: message.Content,
		At:      message.CreatedAt,
	})
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// RecentMessages returns the channel's last n messages, oldest first.
// The reverse iterator is seeked past the newest possible timestamp,
// walks back n entries, and the batch is flipped before returning.
func (m MessageRepository) RecentMessages(channel domain.ChannelID, n int) ([]domain.ChatEvent, error) {
	var newestFirst []diskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", channel))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek to the newest position msg:{channel}:9999999999999999999
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if len(newestFirst) == n {
				break
			}
			var message diskMessage
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &message)
			})
			if err != nil {
				return err
			}
			newestFirst = append(newestFirst, message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return lo.Map(lo.Reverse(newestFirst), func(item diskMessage, _ int) domain.ChatEvent {
		return domain.ChatEvent{
			ID:        item.ID,
			Channel:   domain.ChannelID(item.Channel),
			UserID:    domain.UserID(item.Author),
			Content:   item.Content,
			CreatedAt: item.At,
		}
	}), nil
}
