package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"canvas-lab/domain"
)

type PixelRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewPixelRepository(db *badger.DB, log *slog.Logger) PixelRepository {
	return PixelRepository{db: db, log: log}
}

type diskPixel struct {
	X     int       `json:"x"`
	Y     int       `json:"y"`
	Color string    `json:"color"`
	Owner string    `json:"owner"`
	At    time.Time `json:"at"`
}

func pixelKey(x, y int) []byte {
	// One record per coordinate; the grid history belongs to another
	// collaborator, this store only mirrors the surviving cell.
	return []byte(fmt.Sprintf("px:%04d:%04d", x, y))
}

// StorePixel upserts the cell, keeping the latest PlacedAt. The
// read-compare-set runs inside one transaction so two racing records
// for the same coordinate cannot resurrect an older write.
func (p PixelRepository) StorePixel(cell domain.Cell) error {
	bytes, err := json.Marshal(diskPixel{
		X:     cell.X,
		Y:     cell.Y,
		Color: cell.Color,
		Owner: string(cell.OwnerID),
		At:    cell.PlacedAt,
	})
	if err != nil {
		return err
	}
	key := pixelKey(cell.X, cell.Y)

	return p.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == nil {
			var resident diskPixel
			err = item.Value(func(value []byte) error {
				return json.Unmarshal(value, &resident)
			})
			if err != nil {
				return err
			}
			if cell.PlacedAt.Before(resident.At) {
				p.log.Debug("Keeping newer persisted pixel", "x", cell.X, "y", cell.Y)
				return nil
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set(key, bytes)
	})
}

// AllPixels walks the pixel prefix and returns every stored cell,
// used once at boot to hydrate the grid.
func (p PixelRepository) AllPixels() ([]domain.Cell, error) {
	var cells []domain.Cell
	err := p.db.View(func(txn *badger.Txn) error {
		prefix := []byte("px:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var pixel diskPixel
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &pixel)
			})
			if err != nil {
				return err
			}
			cells = append(cells, domain.Cell{
				X:        pixel.X,
				Y:        pixel.Y,
				Color:    pixel.Color,
				OwnerID:  domain.UserID(pixel.Owner),
				PlacedAt: pixel.At,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cells, nil
}
