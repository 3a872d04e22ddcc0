package network

import (
	"fmt"

	"battleships/internal/models"
)

// Message is a protocol message that can be serialized into its wire form.
type Message interface {
	Serialize() string
}

// ClientMessage is a message received from a client.
type ClientMessage interface {
	Message
	fmt.Stringer
	clientMessage()
}

// ServerMessage is a message sent to a client.
type ServerMessage interface {
	Message
	fmt.Stringer
	serverMessage()
}

// ---client messages---

// Alive is a keepalive request.
type Alive struct{}

// Login logs the client in under a nickname, or restores the offline
// session registered under it.
type Login struct {
	Nickname models.Nickname
}

// JoinGame puts the player into the matchmaking queue.
type JoinGame struct{}

// Layout submits the players ship layout.
type Layout struct {
	Layout models.Layout
}

// Shoot fires at a position on the opponents board.
type Shoot struct {
	Position models.Position
}

// LeaveGame leaves the current game or the matchmaking queue.
type LeaveGame struct{}

// LogOut destroys the players session.
type LogOut struct{}

func (Alive) clientMessage()     {}
func (Login) clientMessage()     {}
func (JoinGame) clientMessage()  {}
func (Layout) clientMessage()    {}
func (Shoot) clientMessage()     {}
func (LeaveGame) clientMessage() {}
func (LogOut) clientMessage()    {}

func (Alive) String() string       { return "[alive]" }
func (m Login) String() string     { return fmt.Sprintf("[login: %s]", m.Nickname) }
func (JoinGame) String() string    { return "[join game]" }
func (m Layout) String() string    { return fmt.Sprintf("[layout: %s]", m.Layout) }
func (m Shoot) String() string     { return fmt.Sprintf("[shoot: %s]", m.Position) }
func (LeaveGame) String() string   { return "[leave game]" }
func (LogOut) String() string      { return "[logout]" }

// ---server messages---

// IllegalState answers any request that is not legal in the current state.
type IllegalState struct{}

// AliveOk answers an Alive request.
type AliveOk struct{}

// LoginOk confirms a login under a fresh nickname.
type LoginOk struct{}

// LoginRestored confirms a login under a known offline nickname and
// carries the session snapshot.
type LoginRestored struct {
	State models.RestoreState
}

// LoginFull refuses a login because the player capacity is reached.
type LoginFull struct{}

// LoginTaken refuses a login because the nickname is currently online.
type LoginTaken struct{}

// JoinGameWait tells the player it is waiting for an opponent.
type JoinGameWait struct{}

// JoinGameOk tells the player it was matched with the named opponent.
type JoinGameOk struct {
	Opponent models.Nickname
}

// LayoutOk confirms a submitted layout.
type LayoutOk struct{}

// LayoutFail refuses an invalid layout.
type LayoutFail struct{}

// ShootHit tells the shooter the shot hit a ship.
type ShootHit struct{}

// ShootMissed tells the shooter the shot missed.
type ShootMissed struct{}

// ShootSunk tells the shooter the shot sunk a whole ship.
type ShootSunk struct {
	Kind      models.ShipKind
	Placement models.Placement
}

// LeaveGameOk confirms leaving a game or the matchmaking queue.
type LeaveGameOk struct{}

// LogoutOk confirms a logout.
type LogoutOk struct{}

// Disconnect tells the client the server is shutting down.
type Disconnect struct{}

// OpponentJoined tells the waiting player an opponent joined its game.
type OpponentJoined struct {
	Opponent models.Nickname
}

// OpponentReady tells the player the opponent submitted a layout or
// came back online.
type OpponentReady struct{}

// OpponentOffline tells the player the opponent went offline.
type OpponentOffline struct{}

// OpponentLeft tells the player the opponent left and the game is over.
type OpponentLeft struct{}

// OpponentMissed tells the player the opponent missed at a position.
type OpponentMissed struct {
	Position models.Position
}

// OpponentHit tells the player the opponent hit one of its ships.
type OpponentHit struct {
	Position models.Position
}

// GameOver announces the game winner.
type GameOver struct {
	Winner models.Who
}

func (IllegalState) serverMessage()    {}
func (AliveOk) serverMessage()         {}
func (LoginOk) serverMessage()         {}
func (LoginRestored) serverMessage()   {}
func (LoginFull) serverMessage()       {}
func (LoginTaken) serverMessage()      {}
func (JoinGameWait) serverMessage()    {}
func (JoinGameOk) serverMessage()      {}
func (LayoutOk) serverMessage()        {}
func (LayoutFail) serverMessage()      {}
func (ShootHit) serverMessage()        {}
func (ShootMissed) serverMessage()     {}
func (ShootSunk) serverMessage()       {}
func (LeaveGameOk) serverMessage()     {}
func (LogoutOk) serverMessage()        {}
func (Disconnect) serverMessage()      {}
func (OpponentJoined) serverMessage()  {}
func (OpponentReady) serverMessage()   {}
func (OpponentOffline) serverMessage() {}
func (OpponentLeft) serverMessage()    {}
func (OpponentMissed) serverMessage()  {}
func (OpponentHit) serverMessage()     {}
func (GameOver) serverMessage()        {}

func (IllegalState) String() string      { return "[illegal state]" }
func (AliveOk) String() string           { return "[alive ok]" }
func (LoginOk) String() string           { return "[login ok]" }
func (m LoginRestored) String() string   { return fmt.Sprintf("[login restored: %s]", m.State) }
func (LoginFull) String() string         { return "[login full]" }
func (LoginTaken) String() string        { return "[login taken]" }
func (JoinGameWait) String() string      { return "[join game wait]" }
func (m JoinGameOk) String() string      { return fmt.Sprintf("[join game ok: %s]", m.Opponent) }
func (LayoutOk) String() string          { return "[layout ok]" }
func (LayoutFail) String() string        { return "[layout fail]" }
func (ShootHit) String() string          { return "[shoot hit]" }
func (ShootMissed) String() string       { return "[shoot missed]" }
func (m ShootSunk) String() string       { return fmt.Sprintf("[shoot sunk: %s, %s]", m.Kind, m.Placement) }
func (LeaveGameOk) String() string       { return "[leave game ok]" }
func (LogoutOk) String() string          { return "[logout ok]" }
func (Disconnect) String() string        { return "[disconnect]" }
func (m OpponentJoined) String() string  { return fmt.Sprintf("[opponent joined: %s]", m.Opponent) }
func (OpponentReady) String() string     { return "[opponent ready]" }
func (OpponentOffline) String() string   { return "[opponent offline]" }
func (OpponentLeft) String() string      { return "[opponent left]" }
func (m OpponentMissed) String() string  { return fmt.Sprintf("[opponent missed: %s]", m.Position) }
func (m OpponentHit) String() string     { return fmt.Sprintf("[opponent hit: %s]", m.Position) }
func (m GameOver) String() string        { return fmt.Sprintf("[game over: %s]", m.Winner) }
