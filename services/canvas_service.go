// Package services exposes the engine's attempt APIs. Each call runs
// the same discipline: reject fast at the gates with nothing mutated,
// then mutate canonical state, then hand the resulting event value to
// the dispatcher. Broadcasting can never fail the mutation.
package services

import (
	"context"
	"log/slog"

	"canvas-lab/domain"
	"canvas-lab/domain/event"
	"canvas-lab/errors"
	"canvas-lab/gate"
	"canvas-lab/grid"
)

// Dispatcher is the forwarding step between a mutation and its
// consumers (hub, persistence).
type Dispatcher interface {
	Dispatch(e event.DomainEvent)
}

type CanvasService struct {
	log        *slog.Logger
	cooldown   *gate.CooldownGate
	grid       *grid.Store
	dispatcher Dispatcher
}

func NewCanvasService(log *slog.Logger, cooldown *gate.CooldownGate,
	store *grid.Store, dispatcher Dispatcher) *CanvasService {
	return &CanvasService{log: log, cooldown: cooldown, grid: store, dispatcher: dispatcher}
}

// PlacePixel attempts one pixel write for the actor.
// Gate rejections come back as domain.Rejection with a retry hint;
// validation failures as the sentinel errors. Neither mutates anything.
func (s *CanvasService) PlacePixel(ctx context.Context, cmd domain.PlacePixelCommand) (domain.Cell, error) {
	if cmd.Requester.Anonymous() {
		return domain.Cell{}, errors.ErrNoIdentity
	}
	if !s.cooldown.TryEnter(cmd.Requester.Key(domain.ActionDrawPixel), cmd.At) {
		return domain.Cell{}, domain.Rejection{
			Kind:       domain.ActionDrawPixel,
			Reason:     domain.ReasonCooldown,
			RetryAfter: s.cooldown.RetryAfter(domain.ActionDrawPixel),
		}
	}

	cell, applied, err := s.grid.Place(cmd)
	if err != nil {
		return domain.Cell{}, err
	}
	if applied {
		s.dispatcher.Dispatch(event.PixelPlaced{
			X:      cell.X,
			Y:      cell.Y,
			Color:  cell.Color,
			UserID: cell.OwnerID,
			At:     cell.PlacedAt,
		})
	}
	return cell, nil
}

// Snapshot hydrates a newly subscribed canvas client.
func (s *CanvasService) Snapshot() []domain.Cell {
	return s.grid.Snapshot()
}
