package models

import "fmt"

// RestoreState is the session snapshot emitted on a successful reconnect.
type RestoreState interface {
	isRestoreState()
	fmt.Stringer
}

// RestoreLobby tells the reconnected player it is in the lobby.
type RestoreLobby struct{}

func (RestoreLobby) isRestoreState() {}

func (RestoreLobby) String() string {
	return "lobby"
}

// RestoreGame describes the visible state of a game the reconnected
// player is part of.
type RestoreGame struct {
	Opponent       Nickname
	OnTurn         Who
	PlayerHits     Hits
	PlayerMisses   Hits
	Layout         Layout
	OpponentHits   Hits
	OpponentMisses Hits
	SunkShips      ShipsPlacements
}

func (RestoreGame) isRestoreState() {}

func (g RestoreGame) String() string {
	return fmt.Sprintf("game (%s, %s, %s, %s, %s, %s, %s)",
		g.Opponent, g.OnTurn, g.PlayerHits, g.PlayerMisses, g.OpponentHits, g.OpponentMisses, g.SunkShips)
}
