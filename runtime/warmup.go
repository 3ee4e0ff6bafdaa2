package runtime

import (
	"context"
	"log/slog"

	"canvas-lab/chat"
	"canvas-lab/contract"
	"canvas-lab/domain"
	"canvas-lab/grid"
)

// Warmup pre-fills the replay caches from the persistence collaborator
// once at boot: the last K messages of every known channel and the
// surviving cell of every coordinate. Steady-state reads never touch
// the collaborator again. Runs under the supervisor and finishes.
type Warmup struct {
	log      *slog.Logger
	history  contract.HistoryQuery
	ring     *chat.RingBuffer
	grid     *grid.Store
	channels []domain.ChannelID
	capacity int
}

func NewWarmup(log *slog.Logger, history contract.HistoryQuery, ring *chat.RingBuffer,
	store *grid.Store, channels []domain.ChannelID, capacity int) *Warmup {
	return &Warmup{
		log:      log,
		history:  history,
		ring:     ring,
		grid:     store,
		channels: channels,
		capacity: capacity,
	}
}

func (w *Warmup) Run(ctx context.Context) error {
	for _, channel := range w.channels {
		if ctx.Err() != nil {
			return nil
		}
		messages, err := w.history.RecentMessages(channel, w.capacity)
		if err != nil {
			// A cold ring self-heals as messages arrive; keep booting.
			w.log.Warn("Replay query failed", "channel", channel, "error", err)
			continue
		}
		for _, message := range messages {
			w.ring.Append(channel, message)
		}
		w.log.Info("Channel warmed", "channel", channel, "messages", len(messages))
	}

	cells, err := w.history.AllPixels()
	if err != nil {
		w.log.Warn("Grid hydration query failed", "error", err)
		return nil
	}
	for _, cell := range cells {
		w.grid.Hydrate(cell)
	}
	w.log.Info("Grid warmed", "cells", len(cells))
	return nil
}
