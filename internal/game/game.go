// Package game implements the per-game Battleships state machine:
// layout placement, shot resolution, turn flipping and victory detection.
package game

import (
	"errors"
	"fmt"

	"battleships/internal/models"
)

// Errors indicating that a player did something illegal with the game.
var (
	ErrAlreadyHasLayout = errors.New("player already has a layout")
	ErrInvalidLayout    = errors.New("layout is invalid")
	ErrNotOnTurn        = errors.New("player is not on turn")
)

type cellState uint8

const (
	cellEmpty cellState = iota
	cellMiss
	cellHit
	cellShip
)

// cell is a state of one board cell. The ship kind is valid only
// when the state is cellShip.
type cell struct {
	state cellState
	ship  models.ShipKind
}

type board [models.BoardSize][models.BoardSize]cell

// ship is a fleet ship of a particular kind and remaining health.
type ship struct {
	kind   models.ShipKind
	health uint8
}

func newShip(kind models.ShipKind) *ship {
	return &ship{kind: kind, health: kind.Cells()}
}

// hit decreases the ships health by one if not already zero.
func (s *ship) hit() {
	if s.health > 0 {
		s.health--
	}
}

func (s *ship) isSunk() bool {
	return s.health == 0
}

// ShootOutcome is the kind of a shot result.
type ShootOutcome int

const (
	Missed ShootOutcome = iota
	Hit
	Sunk
)

// ShootResult is the result of shooting. Kind and Placement are valid
// only for the Sunk outcome.
type ShootResult struct {
	Outcome   ShootOutcome
	Kind      models.ShipKind
	Placement models.Placement
}

// State is the game state visible to one player, as sent on reconnect.
type State struct {
	OnTurn         models.Who
	PlayerHits     models.Hits
	PlayerMisses   models.Hits
	Layout         models.Layout
	OpponentHits   models.Hits
	OpponentMisses models.Hits
	SunkShips      models.ShipsPlacements
}

// Game is a Battleships game of two players.
type Game struct {
	firstPlayer  models.PlayerID
	secondPlayer models.PlayerID
	firstLayout  *models.Layout
	secondLayout *models.Layout
	firstBoard   board
	secondBoard  board
	firstShips   map[models.ShipKind]*ship
	secondShips  map[models.ShipKind]*ship
	onTurn       models.PlayerID
	winner       models.PlayerID
	hasWinner    bool
}

// New creates a new game with the two players. The first player is on turn.
func New(firstPlayer, secondPlayer models.PlayerID) *Game {
	return &Game{
		firstPlayer:  firstPlayer,
		secondPlayer: secondPlayer,
		firstShips:   make(map[models.ShipKind]*ship),
		secondShips:  make(map[models.ShipKind]*ship),
		onTurn:       firstPlayer,
	}
}

// Playing reports whether both ship layouts are set and the game
// is in progress.
func (g *Game) Playing() bool {
	return g.firstLayout != nil && g.secondLayout != nil
}

// Winner returns the game winner if the game has ended.
func (g *Game) Winner() (models.PlayerID, bool) {
	return g.winner, g.hasWinner
}

// OtherPlayer returns the other player in the game.
func (g *Game) OtherPlayer(player models.PlayerID) models.PlayerID {
	switch player {
	case g.firstPlayer:
		return g.secondPlayer
	case g.secondPlayer:
		return g.firstPlayer
	}
	panic(fmt.Sprintf("player %d is not in this game", player))
}

// SetLayout sets the ships layout for the player. Returns whether the
// game is now playing - both layouts are set.
func (g *Game) SetLayout(player models.PlayerID, layout models.Layout) (bool, error) {
	var l **models.Layout
	var ships map[models.ShipKind]*ship
	var b *board

	switch player {
	case g.firstPlayer:
		l, ships, b = &g.firstLayout, g.firstShips, &g.firstBoard
	case g.secondPlayer:
		l, ships, b = &g.secondLayout, g.secondShips, &g.secondBoard
	default:
		panic(fmt.Sprintf("player %d is not in this game", player))
	}

	if *l != nil {
		return false, ErrAlreadyHasLayout
	}

	if !layout.IsValid() {
		return false, ErrInvalidLayout
	}

	*l = &layout

	// prepare the fleet and mark the ships on the board
	for _, kind := range models.ShipKinds() {
		ships[kind] = newShip(kind)

		placement := layout.Ships[kind]
		row := int(placement.Position.Row)
		col := int(placement.Position.Col)
		incRow, incCol := placement.Orientation.Delta()

		for i := uint8(0); i < kind.Cells(); i++ {
			b[row][col] = cell{state: cellShip, ship: kind}
			row += incRow
			col += incCol
		}
	}

	return g.Playing(), nil
}

// Shoot fires at the position on the opponents board and returns
// the result.
//
// A repeated shot at an already hit cell returns Hit without any state
// change. A miss flips the turn to the opponent; a hit keeps the
// shooter on turn. The winner is recomputed from the fleet health
// after the shot is applied.
func (g *Game) Shoot(player models.PlayerID, position models.Position) (ShootResult, error) {
	var opponent models.PlayerID
	var opponentLayout *models.Layout
	var opponentBoard *board
	var opponentShips map[models.ShipKind]*ship

	switch player {
	case g.firstPlayer:
		opponent = g.secondPlayer
		opponentLayout, opponentBoard, opponentShips = g.secondLayout, &g.secondBoard, g.secondShips
	case g.secondPlayer:
		opponent = g.firstPlayer
		opponentLayout, opponentBoard, opponentShips = g.firstLayout, &g.firstBoard, g.firstShips
	default:
		panic(fmt.Sprintf("player %d is not in this game", player))
	}

	if g.hasWinner {
		panic("game is over")
	}

	if player != g.onTurn {
		return ShootResult{}, ErrNotOnTurn
	}

	row := int(position.Row)
	col := int(position.Col)

	// a repeated shot at an already hit cell
	if opponentBoard[row][col].state == cellHit {
		return ShootResult{Outcome: Hit}, nil
	}

	result := ShootResult{Outcome: Missed}
	g.onTurn = opponent

	if opponentBoard[row][col].state == cellShip {
		kind := opponentBoard[row][col].ship
		g.onTurn = player

		s := opponentShips[kind]
		s.hit()

		if s.isSunk() {
			result = ShootResult{Outcome: Sunk, Kind: kind, Placement: opponentLayout.Ships[kind]}
		} else {
			result = ShootResult{Outcome: Hit}
		}
	}

	if result.Outcome == Missed {
		opponentBoard[row][col].state = cellMiss
	} else {
		opponentBoard[row][col] = cell{state: cellHit}
	}

	// the winner is derived from the fleet health only
	g.hasWinner = true
	g.winner = player
	for _, s := range opponentShips {
		if !s.isSunk() {
			g.hasWinner = false
			g.winner = 0
			break
		}
	}

	return result, nil
}

// State returns the state of the game visible to the player.
// Both layouts must be set.
func (g *Game) State(player models.PlayerID) State {
	var playerBoard, opponentBoard *board
	var layout, opponentLayout *models.Layout
	var opponentShips map[models.ShipKind]*ship

	switch player {
	case g.firstPlayer:
		playerBoard, layout = &g.firstBoard, g.firstLayout
		opponentBoard, opponentLayout, opponentShips = &g.secondBoard, g.secondLayout, g.secondShips
	case g.secondPlayer:
		playerBoard, layout = &g.secondBoard, g.secondLayout
		opponentBoard, opponentLayout, opponentShips = &g.firstBoard, g.firstLayout, g.firstShips
	default:
		panic(fmt.Sprintf("player %d is not in this game", player))
	}

	onTurn := models.Opponent
	if player == g.onTurn {
		onTurn = models.You
	}

	return State{
		OnTurn:         onTurn,
		PlayerHits:     collectCells(playerBoard, cellHit),
		PlayerMisses:   collectCells(playerBoard, cellMiss),
		Layout:         *layout,
		OpponentHits:   collectCells(opponentBoard, cellHit),
		OpponentMisses: collectCells(opponentBoard, cellMiss),
		SunkShips:      sunkShips(opponentLayout, opponentShips),
	}
}

// collectCells gathers the positions of all board cells in the given state.
func collectCells(b *board, state cellState) models.Hits {
	var hits models.Hits

	for r := 0; r < models.BoardSize; r++ {
		for c := 0; c < models.BoardSize; c++ {
			if b[r][c].state == state {
				hits = append(hits, models.Position{Row: uint8(r), Col: uint8(c)})
			}
		}
	}

	return hits
}

// sunkShips gathers the placements of all sunk ships of the fleet.
func sunkShips(layout *models.Layout, ships map[models.ShipKind]*ship) models.ShipsPlacements {
	placements := make(models.ShipsPlacements)

	for kind, s := range ships {
		if s.isSunk() {
			placements[kind] = layout.Ships[kind]
		}
	}

	return placements
}
