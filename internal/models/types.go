package models

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// PlayerID identifies a registered player session.
type PlayerID uint64

// PeerID identifies a live TCP connection, independent of any player.
type PeerID uint64

// GameID identifies a running game.
type GameID uint64

// Nickname is a string of 3 - 32 alphanumeric characters identifying a player.
type Nickname string

// NewNickname validates the string and returns it as a Nickname.
func NewNickname(nickname string) (Nickname, error) {
	length := utf8.RuneCountInString(nickname)
	if length < 3 || length > 32 {
		return "", NewDomainError(InvalidLength,
			fmt.Sprintf("nickname must have 3 - 32 characters, but has %d", length))
	}

	for _, c := range nickname {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			return "", NewDomainError(InvalidCharacters,
				"nickname must contain only alphanumeric characters")
		}
	}

	return Nickname(nickname), nil
}

func (n Nickname) String() string {
	return string(n)
}

// BoardSize is the number of rows and columns of a board.
const BoardSize = 10

// Position is a cell position on a board.
type Position struct {
	Row uint8
	Col uint8
}

// NewPosition validates the row and column and returns the Position.
func NewPosition(row, col uint8) (Position, error) {
	if row >= BoardSize {
		return Position{}, NewDomainError(OutOfRange,
			fmt.Sprintf("position row must be between 0 - 9, %d given", row))
	}

	if col >= BoardSize {
		return Position{}, NewDomainError(OutOfRange,
			fmt.Sprintf("position col must be between 0 - 9, %d given", col))
	}

	return Position{Row: row, Col: col}, nil
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

// Orientation is a direction in which a ship extends from its anchor cell.
type Orientation int

const (
	East Orientation = iota
	North
	West
	South
)

// Orientations lists all orientations.
func Orientations() []Orientation {
	return []Orientation{East, North, West, South}
}

// Delta returns the row and column increments of one step in the orientation.
func (o Orientation) Delta() (incRow, incCol int) {
	switch o {
	case East:
		return 0, 1
	case North:
		return -1, 0
	case West:
		return 0, -1
	case South:
		return 1, 0
	}
	panic(fmt.Sprintf("invalid orientation %d", o))
}

func (o Orientation) String() string {
	switch o {
	case East:
		return "east"
	case North:
		return "north"
	case West:
		return "west"
	case South:
		return "south"
	}
	return "unknown"
}

// ShipKind is a kind of a fleet ship.
type ShipKind int

const (
	AircraftCarrier ShipKind = iota
	Battleship
	Cruiser
	Destroyer
	PatrolBoat
)

// ShipKinds lists all ship kinds of a fleet in a fixed order.
func ShipKinds() []ShipKind {
	return []ShipKind{AircraftCarrier, Battleship, Cruiser, Destroyer, PatrolBoat}
}

// FleetCells is the total number of cells occupied by a whole fleet.
const FleetCells = 5 + 4 + 3 + 2 + 1

// Cells returns the number of cells a ship of this kind occupies.
func (k ShipKind) Cells() uint8 {
	switch k {
	case AircraftCarrier:
		return 5
	case Battleship:
		return 4
	case Cruiser:
		return 3
	case Destroyer:
		return 2
	case PatrolBoat:
		return 1
	}
	panic(fmt.Sprintf("invalid ship kind %d", k))
}

func (k ShipKind) String() string {
	switch k {
	case AircraftCarrier:
		return "AircraftCarrier"
	case Battleship:
		return "Battleship"
	case Cruiser:
		return "Cruiser"
	case Destroyer:
		return "Destroyer"
	case PatrolBoat:
		return "PatrolBoat"
	}
	return "unknown"
}

// Who tells whether something relates to the player itself or to its opponent.
type Who int

const (
	You Who = iota
	Opponent
)

func (w Who) String() string {
	switch w {
	case You:
		return "you"
	case Opponent:
		return "opponent"
	}
	return "unknown"
}

// Placement is a single ship location on a board - an anchor cell
// and an orientation in which the ship extends.
type Placement struct {
	Position    Position
	Orientation Orientation
}

func (p Placement) String() string {
	return fmt.Sprintf("(%s, %s)", p.Position, p.Orientation)
}
