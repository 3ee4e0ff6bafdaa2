// Package grid owns the canonical pixel grid.
package grid

import (
	"log/slog"
	"sync"

	"canvas-lab/domain"
	"canvas-lab/errors"
)

type slot struct {
	set  bool
	cell domain.Cell
}

// Store serializes writes per cell: each coordinate has its own lock,
// so concurrent writes to different cells never block each other.
// Conflicts on one cell resolve last-writer-wins by PlacedAt, with
// ties going to the later arrival.
type Store struct {
	size  int
	locks []sync.Mutex
	slots []slot
	log   *slog.Logger
}

func NewStore(size int, log *slog.Logger) *Store {
	return &Store{
		size:  size,
		locks: make([]sync.Mutex, size*size),
		slots: make([]slot, size*size),
		log:   log,
	}
}

func (s *Store) Size() int { return s.size }

// Place validates and applies one pixel write. The returned cell is the
// state that survives at the coordinate; applied reports whether this
// write is the one surviving (a stale timestamp loses to the resident
// cell and must not be broadcast).
func (s *Store) Place(cmd domain.PlacePixelCommand) (domain.Cell, bool, error) {
	if cmd.X < 0 || cmd.X >= s.size || cmd.Y < 0 || cmd.Y >= s.size {
		return domain.Cell{}, false, errors.ErrInvalidCoordinate
	}
	color, err := domain.NormalizeColor(cmd.Color)
	if err != nil {
		return domain.Cell{}, false, err
	}

	idx := cmd.Y*s.size + cmd.X
	s.locks[idx].Lock()
	defer s.locks[idx].Unlock()

	resident := &s.slots[idx]
	if resident.set && cmd.At.Before(resident.cell.PlacedAt) {
		s.log.Debug("Stale pixel write ignored", "x", cmd.X, "y", cmd.Y, "user", cmd.Requester.UserID)
		return resident.cell, false, nil
	}

	resident.set = true
	resident.cell = domain.Cell{
		X:        cmd.X,
		Y:        cmd.Y,
		Color:    color,
		OwnerID:  cmd.Requester.UserID,
		PlacedAt: cmd.At,
	}
	return resident.cell, true, nil
}

// Hydrate installs a cell read back from the persistence collaborator.
// Same arbitration as Place, without validation: stored cells were
// validated when first accepted.
func (s *Store) Hydrate(cell domain.Cell) {
	if cell.X < 0 || cell.X >= s.size || cell.Y < 0 || cell.Y >= s.size {
		s.log.Warn("Dropping persisted cell outside the grid", "x", cell.X, "y", cell.Y)
		return
	}
	idx := cell.Y*s.size + cell.X
	s.locks[idx].Lock()
	defer s.locks[idx].Unlock()

	resident := &s.slots[idx]
	if resident.set && cell.PlacedAt.Before(resident.cell.PlacedAt) {
		return
	}
	resident.set = true
	resident.cell = cell
}

// Snapshot returns every placed cell, used once per canvas subscribe
// to hydrate the client's view. Each cell is copied under its own lock;
// the snapshot is consistent per cell, not across the grid.
func (s *Store) Snapshot() []domain.Cell {
	cells := make([]domain.Cell, 0, len(s.slots))
	for idx := range s.slots {
		s.locks[idx].Lock()
		if s.slots[idx].set {
			cells = append(cells, s.slots[idx].cell)
		}
		s.locks[idx].Unlock()
	}
	return cells
}
