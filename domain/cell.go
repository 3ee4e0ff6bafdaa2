// Package domain contains core concepts of the canvas system.
// This file defines the pixel grid cell.
// Cells are overwritten last-writer-wins; the grid store arbitrates.
package domain

import (
	"time"
)

type UserID string

// Cell is the current state of one grid coordinate.
type Cell struct {
	X        int
	Y        int
	Color    string // normalized "#RRGGBB"
	OwnerID  UserID
	PlacedAt time.Time
}
