package models

import (
	"fmt"
	"sort"
	"strings"
)

// ShipsPlacements maps ship kinds to their placements.
type ShipsPlacements map[ShipKind]Placement

func (s ShipsPlacements) String() string {
	parts := make([]string, 0, len(s))
	for kind, placement := range s {
		parts = append(parts, fmt.Sprintf("%s %s", kind, placement))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}

// Hits is a set of board positions.
type Hits []Position

func (h Hits) String() string {
	parts := make([]string, 0, len(h))
	for _, position := range h {
		parts = append(parts, position.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Layout is an assignment of the five fleet ships to board placements.
type Layout struct {
	Ships ShipsPlacements
}

// NewLayout creates a layout of the given placements.
func NewLayout(ships ShipsPlacements) Layout {
	return Layout{Ships: ships}
}

func (l Layout) String() string {
	return l.Ships.String()
}

// IsValid checks that the layout contains exactly one placement per ship kind,
// that every ship cell lies within the board, that no two ship cells coincide
// and that no ship cell is horizontally or vertically adjacent to a cell of a
// different ship. Cells of the same ship along its axis are permitted.
func (l Layout) IsValid() bool {
	if len(l.Ships) != len(ShipKinds()) {
		return false
	}

	var board [BoardSize][BoardSize]bool

	for _, kind := range ShipKinds() {
		placement, ok := l.Ships[kind]
		if !ok {
			return false
		}

		cells := int(kind.Cells())
		row := int(placement.Position.Row)
		col := int(placement.Position.Col)
		incRow, incCol := placement.Orientation.Delta()

		for i := 0; i < cells; i++ {
			if row < 0 || row >= BoardSize || col < 0 || col >= BoardSize {
				return false
			}

			if board[row][col] {
				// occupied
				return false
			}

			board[row][col] = true

			// the cell behind the ships first cell
			if i == 0 && occupied(&board, row-incRow, col-incCol) {
				return false
			}

			// the cell beyond the ships last cell
			if i == cells-1 && occupied(&board, row+incRow, col+incCol) {
				return false
			}

			// the two neighbors perpendicular to the ships axis
			if incRow == 0 {
				if occupied(&board, row+1, col) || occupied(&board, row-1, col) {
					return false
				}
			}
			if incCol == 0 {
				if occupied(&board, row, col+1) || occupied(&board, row, col-1) {
					return false
				}
			}

			row += incRow
			col += incCol
		}
	}

	return true
}

func occupied(board *[BoardSize][BoardSize]bool, row, col int) bool {
	if row < 0 || row >= BoardSize || col < 0 || col >= BoardSize {
		return false
	}
	return board[row][col]
}
