package client

import (
	"math/rand"

	"battleships/internal/models"
)

// RandomLayout generates a random valid ships layout.
func RandomLayout() models.Layout {
	for {
		if layout, ok := tryRandomLayout(); ok {
			return layout
		}
	}
}

// tryRandomLayout places the ships one by one onto free cells. Placed
// ships block their cells and all surrounding cells for the next ones,
// which is slightly stricter than the layout rules but always yields a
// valid layout.
func tryRandomLayout() (models.Layout, bool) {
	var blocked [models.BoardSize][models.BoardSize]bool
	ships := make(models.ShipsPlacements)

	for _, kind := range models.ShipKinds() {
		placed := false

		for attempt := 0; attempt < 100; attempt++ {
			placement := models.Placement{
				Position: models.Position{
					Row: uint8(rand.Intn(models.BoardSize)),
					Col: uint8(rand.Intn(models.BoardSize)),
				},
				Orientation: models.Orientations()[rand.Intn(len(models.Orientations()))],
			}

			if fits(&blocked, kind, placement) {
				block(&blocked, kind, placement)
				ships[kind] = placement
				placed = true
				break
			}
		}

		if !placed {
			return models.Layout{}, false
		}
	}

	layout := models.NewLayout(ships)
	return layout, layout.IsValid()
}

func fits(blocked *[models.BoardSize][models.BoardSize]bool, kind models.ShipKind, placement models.Placement) bool {
	row := int(placement.Position.Row)
	col := int(placement.Position.Col)
	incRow, incCol := placement.Orientation.Delta()

	for i := uint8(0); i < kind.Cells(); i++ {
		if row < 0 || row >= models.BoardSize || col < 0 || col >= models.BoardSize {
			return false
		}
		if blocked[row][col] {
			return false
		}
		row += incRow
		col += incCol
	}

	return true
}

func block(blocked *[models.BoardSize][models.BoardSize]bool, kind models.ShipKind, placement models.Placement) {
	row := int(placement.Position.Row)
	col := int(placement.Position.Col)
	incRow, incCol := placement.Orientation.Delta()

	for i := uint8(0); i < kind.Cells(); i++ {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				r, c := row+dr, col+dc
				if r >= 0 && r < models.BoardSize && c >= 0 && c < models.BoardSize {
					blocked[r][c] = true
				}
			}
		}
		row += incRow
		col += incCol
	}
}
