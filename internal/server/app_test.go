package server

import (
	"io"
	"os"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"battleships/internal/models"
	"battleships/internal/network"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

const (
	peerKarel = models.PeerID(100)
	peerPepa  = models.PeerID(200)
)

func testConfig() models.ServerConfig {
	config := models.DefaultServerConfig()
	config.MaxPlayers = 8
	return config
}

func testLayout() models.Layout {
	return models.NewLayout(models.ShipsPlacements{
		models.AircraftCarrier: {Position: models.Position{Row: 0, Col: 0}, Orientation: models.East},
		models.Battleship:      {Position: models.Position{Row: 2, Col: 0}, Orientation: models.East},
		models.Cruiser:         {Position: models.Position{Row: 4, Col: 0}, Orientation: models.East},
		models.Destroyer:       {Position: models.Position{Row: 6, Col: 0}, Orientation: models.East},
		models.PatrolBoat:      {Position: models.Position{Row: 8, Col: 0}, Orientation: models.East},
	})
}

// messagesFor extracts the messages the commands carry for the peer.
func messagesFor(commands []Command, peer models.PeerID) []network.ServerMessage {
	var messages []network.ServerMessage
	for _, command := range commands {
		if m, ok := command.(MessageCommand); ok && m.Peer == peer {
			messages = append(messages, m.Message)
		}
	}
	return messages
}

// onlyMessage expects exactly one message for the peer and returns it.
func onlyMessage(t *testing.T, commands []Command, peer models.PeerID) network.ServerMessage {
	t.Helper()

	messages := messagesFor(commands, peer)
	if len(messages) != 1 {
		t.Fatalf("peer got messages %v, want exactly one", messages)
	}
	return messages[0]
}

// loggedInApp returns an app with Karel and Pepa logged in.
func loggedInApp(t *testing.T) *App {
	t.Helper()

	app := NewApp(testConfig())

	reply := onlyMessage(t, app.HandleMessage(peerKarel, network.Login{Nickname: "Karel"}), peerKarel)
	if _, ok := reply.(network.LoginOk); !ok {
		t.Fatalf("Karels login got %s", reply)
	}

	reply = onlyMessage(t, app.HandleMessage(peerPepa, network.Login{Nickname: "Pepa"}), peerPepa)
	if _, ok := reply.(network.LoginOk); !ok {
		t.Fatalf("Pepas login got %s", reply)
	}

	return app
}

// playingApp returns an app with Karel and Pepa in a running game.
// Karel joined first, so Karel is on turn.
func playingApp(t *testing.T) *App {
	t.Helper()

	app := loggedInApp(t)

	app.HandleMessage(peerKarel, network.JoinGame{})
	app.HandleMessage(peerPepa, network.JoinGame{})
	app.HandleMessage(peerKarel, network.Layout{Layout: testLayout()})
	app.HandleMessage(peerPepa, network.Layout{Layout: testLayout()})

	return app
}

func TestLoginTaken(t *testing.T) {
	app := loggedInApp(t)

	other := models.PeerID(300)
	reply := onlyMessage(t, app.HandleMessage(other, network.Login{Nickname: "Karel"}), other)
	if _, ok := reply.(network.LoginTaken); !ok {
		t.Errorf("login under an online nickname got %s, want login taken", reply)
	}
}

func TestLoginFull(t *testing.T) {
	config := testConfig()
	config.MaxPlayers = 1
	app := NewApp(config)

	app.HandleMessage(peerKarel, network.Login{Nickname: "Karel"})

	reply := onlyMessage(t, app.HandleMessage(peerPepa, network.Login{Nickname: "Pepa"}), peerPepa)
	if _, ok := reply.(network.LoginFull); !ok {
		t.Errorf("login over the limit got %s, want login full", reply)
	}
}

func TestLoginTwice(t *testing.T) {
	app := loggedInApp(t)

	reply := onlyMessage(t, app.HandleMessage(peerKarel, network.Login{Nickname: "Karel2"}), peerKarel)
	if _, ok := reply.(network.IllegalState); !ok {
		t.Errorf("second login on one connection got %s, want illegal state", reply)
	}
}

func TestLoginRestoredIntoLobby(t *testing.T) {
	app := loggedInApp(t)

	app.HandleOffline(peerKarel)

	other := models.PeerID(300)
	reply := onlyMessage(t, app.HandleMessage(other, network.Login{Nickname: "Karel"}), other)

	restored, ok := reply.(network.LoginRestored)
	if !ok {
		t.Fatalf("reconnect login got %s, want login restored", reply)
	}
	if _, ok := restored.State.(models.RestoreLobby); !ok {
		t.Errorf("restored state is %s, want the lobby", restored.State)
	}
}

func TestNotLoggedInIsIllegal(t *testing.T) {
	app := NewApp(testConfig())

	messages := []network.ClientMessage{
		network.JoinGame{},
		network.Layout{Layout: testLayout()},
		network.Shoot{Position: models.Position{Row: 0, Col: 0}},
		network.LeaveGame{},
		network.LogOut{},
	}

	for _, message := range messages {
		reply := onlyMessage(t, app.HandleMessage(peerKarel, message), peerKarel)
		if _, ok := reply.(network.IllegalState); !ok {
			t.Errorf("%s without login got %s, want illegal state", message, reply)
		}
	}
}

func TestMatchmaking(t *testing.T) {
	app := loggedInApp(t)

	reply := onlyMessage(t, app.HandleMessage(peerKarel, network.JoinGame{}), peerKarel)
	if _, ok := reply.(network.JoinGameWait); !ok {
		t.Fatalf("first join got %s, want join game wait", reply)
	}

	reply = onlyMessage(t, app.HandleMessage(peerKarel, network.JoinGame{}), peerKarel)
	if _, ok := reply.(network.IllegalState); !ok {
		t.Errorf("joining twice got %s, want illegal state", reply)
	}

	commands := app.HandleMessage(peerPepa, network.JoinGame{})

	joined, ok := onlyMessage(t, commands, peerKarel).(network.OpponentJoined)
	if !ok || joined.Opponent != "Pepa" {
		t.Errorf("Karel got %s, want opponent joined by Pepa", onlyMessage(t, commands, peerKarel))
	}

	joinOk, ok := onlyMessage(t, commands, peerPepa).(network.JoinGameOk)
	if !ok || joinOk.Opponent != "Karel" {
		t.Errorf("Pepa got %s, want join game ok against Karel", onlyMessage(t, commands, peerPepa))
	}
}

func TestLayoutFlow(t *testing.T) {
	app := loggedInApp(t)
	app.HandleMessage(peerKarel, network.JoinGame{})
	app.HandleMessage(peerPepa, network.JoinGame{})

	invalid := models.NewLayout(models.ShipsPlacements{
		models.PatrolBoat: {Position: models.Position{Row: 0, Col: 0}, Orientation: models.East},
	})
	reply := onlyMessage(t, app.HandleMessage(peerKarel, network.Layout{Layout: invalid}), peerKarel)
	if _, ok := reply.(network.LayoutFail); !ok {
		t.Errorf("invalid layout got %s, want layout fail", reply)
	}

	commands := app.HandleMessage(peerKarel, network.Layout{Layout: testLayout()})
	if _, ok := onlyMessage(t, commands, peerKarel).(network.LayoutOk); !ok {
		t.Errorf("valid layout got %s, want layout ok", onlyMessage(t, commands, peerKarel))
	}
	if _, ok := onlyMessage(t, commands, peerPepa).(network.OpponentReady); !ok {
		t.Errorf("Pepa got %s, want opponent ready", onlyMessage(t, commands, peerPepa))
	}

	reply = onlyMessage(t, app.HandleMessage(peerKarel, network.Layout{Layout: testLayout()}), peerKarel)
	if _, ok := reply.(network.IllegalState); !ok {
		t.Errorf("second layout got %s, want illegal state", reply)
	}

	// shooting before both layouts are in is illegal
	reply = onlyMessage(t, app.HandleMessage(peerKarel, network.Shoot{Position: models.Position{Row: 0, Col: 0}}), peerKarel)
	if _, ok := reply.(network.IllegalState); !ok {
		t.Errorf("premature shot got %s, want illegal state", reply)
	}
}

func TestShootFlow(t *testing.T) {
	app := playingApp(t)

	// Pepa is not on turn
	reply := onlyMessage(t, app.HandleMessage(peerPepa, network.Shoot{Position: models.Position{Row: 0, Col: 0}}), peerPepa)
	if _, ok := reply.(network.IllegalState); !ok {
		t.Fatalf("shot out of turn got %s, want illegal state", reply)
	}

	// Karel hits
	commands := app.HandleMessage(peerKarel, network.Shoot{Position: models.Position{Row: 0, Col: 0}})
	if _, ok := onlyMessage(t, commands, peerKarel).(network.ShootHit); !ok {
		t.Errorf("Karel got %s, want shoot hit", onlyMessage(t, commands, peerKarel))
	}
	hit, ok := onlyMessage(t, commands, peerPepa).(network.OpponentHit)
	if !ok || hit.Position != (models.Position{Row: 0, Col: 0}) {
		t.Errorf("Pepa got %s, want opponent hit at (0, 0)", onlyMessage(t, commands, peerPepa))
	}

	// Karel sinks the patrol boat
	commands = app.HandleMessage(peerKarel, network.Shoot{Position: models.Position{Row: 8, Col: 0}})
	sunk, ok := onlyMessage(t, commands, peerKarel).(network.ShootSunk)
	if !ok || sunk.Kind != models.PatrolBoat {
		t.Errorf("Karel got %s, want the patrol boat sunk", onlyMessage(t, commands, peerKarel))
	}

	// Karel misses, the turn passes to Pepa
	commands = app.HandleMessage(peerKarel, network.Shoot{Position: models.Position{Row: 9, Col: 9}})
	if _, ok := onlyMessage(t, commands, peerKarel).(network.ShootMissed); !ok {
		t.Errorf("Karel got %s, want shoot missed", onlyMessage(t, commands, peerKarel))
	}
	missed, ok := onlyMessage(t, commands, peerPepa).(network.OpponentMissed)
	if !ok || missed.Position != (models.Position{Row: 9, Col: 9}) {
		t.Errorf("Pepa got %s, want opponent missed at (9, 9)", onlyMessage(t, commands, peerPepa))
	}

	commands = app.HandleMessage(peerPepa, network.Shoot{Position: models.Position{Row: 9, Col: 9}})
	if _, ok := onlyMessage(t, commands, peerPepa).(network.ShootMissed); !ok {
		t.Errorf("Pepa got %s, want shoot missed", onlyMessage(t, commands, peerPepa))
	}
}

func TestGameOver(t *testing.T) {
	app := playingApp(t)

	var last []Command
	for _, kind := range models.ShipKinds() {
		placement := testLayout().Ships[kind]
		row := int(placement.Position.Row)
		col := int(placement.Position.Col)
		incRow, incCol := placement.Orientation.Delta()

		for i := uint8(0); i < kind.Cells(); i++ {
			last = app.HandleMessage(peerKarel, network.Shoot{
				Position: models.Position{Row: uint8(row), Col: uint8(col)},
			})
			row += incRow
			col += incCol
		}
	}

	karelMessages := messagesFor(last, peerKarel)
	if len(karelMessages) != 2 {
		t.Fatalf("Karel got %v after the last shot, want the result and game over", karelMessages)
	}
	if over, ok := karelMessages[1].(network.GameOver); !ok || over.Winner != models.You {
		t.Errorf("Karel got %s, want game over in his favor", karelMessages[1])
	}

	pepaMessages := messagesFor(last, peerPepa)
	if len(pepaMessages) != 2 {
		t.Fatalf("Pepa got %v after the last shot, want the hit and game over", pepaMessages)
	}
	if over, ok := pepaMessages[1].(network.GameOver); !ok || over.Winner != models.Opponent {
		t.Errorf("Pepa got %s, want game over against him", pepaMessages[1])
	}

	// the game is gone
	reply := onlyMessage(t, app.HandleMessage(peerKarel, network.Shoot{Position: models.Position{Row: 9, Col: 9}}), peerKarel)
	if _, ok := reply.(network.IllegalState); !ok {
		t.Errorf("shot after game over got %s, want illegal state", reply)
	}
}

func TestLeaveGamePending(t *testing.T) {
	app := loggedInApp(t)

	app.HandleMessage(peerKarel, network.JoinGame{})

	reply := onlyMessage(t, app.HandleMessage(peerKarel, network.LeaveGame{}), peerKarel)
	if _, ok := reply.(network.LeaveGameOk); !ok {
		t.Fatalf("leaving the queue got %s, want leave game ok", reply)
	}

	reply = onlyMessage(t, app.HandleMessage(peerKarel, network.LeaveGame{}), peerKarel)
	if _, ok := reply.(network.IllegalState); !ok {
		t.Errorf("leaving nothing got %s, want illegal state", reply)
	}
}

func TestLeaveGameRunning(t *testing.T) {
	app := playingApp(t)

	commands := app.HandleMessage(peerKarel, network.LeaveGame{})
	if _, ok := onlyMessage(t, commands, peerKarel).(network.LeaveGameOk); !ok {
		t.Errorf("Karel got %s, want leave game ok", onlyMessage(t, commands, peerKarel))
	}
	if _, ok := onlyMessage(t, commands, peerPepa).(network.OpponentLeft); !ok {
		t.Errorf("Pepa got %s, want opponent left", onlyMessage(t, commands, peerPepa))
	}

	// both can queue again
	reply := onlyMessage(t, app.HandleMessage(peerPepa, network.JoinGame{}), peerPepa)
	if _, ok := reply.(network.JoinGameWait); !ok {
		t.Errorf("rejoin got %s, want join game wait", reply)
	}
}

func TestOfflineInRunningGame(t *testing.T) {
	app := playingApp(t)

	commands := app.HandleOffline(peerKarel)
	if _, ok := onlyMessage(t, commands, peerPepa).(network.OpponentOffline); !ok {
		t.Fatalf("Pepa got %s, want opponent offline", onlyMessage(t, commands, peerPepa))
	}

	// Karel reconnects under his nickname from a new connection
	other := models.PeerID(300)
	commands = app.HandleMessage(other, network.Login{Nickname: "Karel"})

	restored, ok := onlyMessage(t, commands, other).(network.LoginRestored)
	if !ok {
		t.Fatalf("reconnect got %s, want login restored", onlyMessage(t, commands, other))
	}

	state, ok := restored.State.(models.RestoreGame)
	if !ok {
		t.Fatalf("restored state is %s, want the game", restored.State)
	}
	if state.Opponent != "Pepa" || state.OnTurn != models.You {
		t.Errorf("restored game state = %s, want Pepa as opponent and Karel on turn", state)
	}

	if _, ok := onlyMessage(t, commands, peerPepa).(network.OpponentReady); !ok {
		t.Errorf("Pepa got %s, want opponent ready", onlyMessage(t, commands, peerPepa))
	}
}

func TestOfflineBeforePlaying(t *testing.T) {
	app := loggedInApp(t)
	app.HandleMessage(peerKarel, network.JoinGame{})
	app.HandleMessage(peerPepa, network.JoinGame{})

	// the game has no layouts yet, so it is dropped right away
	commands := app.HandleOffline(peerKarel)
	if _, ok := onlyMessage(t, commands, peerPepa).(network.OpponentLeft); !ok {
		t.Fatalf("Pepa got %s, want opponent left", onlyMessage(t, commands, peerPepa))
	}

	reply := onlyMessage(t, app.HandleMessage(peerPepa, network.JoinGame{}), peerPepa)
	if _, ok := reply.(network.JoinGameWait); !ok {
		t.Errorf("rejoin got %s, want join game wait", reply)
	}
}

func TestCleanup(t *testing.T) {
	app := playingApp(t)

	app.HandleOffline(peerKarel)

	// nothing expires before the session timeout
	if commands := app.HandleCleanup(time.Now()); len(commands) != 0 {
		t.Fatalf("premature cleanup produced %v", commands)
	}

	karel := app.nicknames["Karel"]
	app.sessions[karel].lastActive = time.Now().Add(-2 * app.config.SessionTimeout)

	commands := app.HandleCleanup(time.Now())
	if _, ok := onlyMessage(t, commands, peerPepa).(network.OpponentLeft); !ok {
		t.Fatalf("Pepa got %v, want opponent left", messagesFor(commands, peerPepa))
	}

	// the nickname is free again
	other := models.PeerID(300)
	reply := onlyMessage(t, app.HandleMessage(other, network.Login{Nickname: "Karel"}), other)
	if _, ok := reply.(network.LoginOk); !ok {
		t.Errorf("login after cleanup got %s, want a fresh login ok", reply)
	}
}

func TestCleanupClosesBoundPeer(t *testing.T) {
	app := loggedInApp(t)

	karel := app.nicknames["Karel"]
	app.sessions[karel].lastActive = time.Now().Add(-2 * app.config.SessionTimeout)

	commands := app.HandleCleanup(time.Now())
	closed := false
	for _, command := range commands {
		if c, ok := command.(CloseCommand); ok && c.Peer == peerKarel {
			closed = true
		}
	}
	if !closed {
		t.Errorf("cleanup of an idle but connected player produced %v, want a close", commands)
	}

	// the connection is anonymous again
	reply := onlyMessage(t, app.HandleMessage(peerKarel, network.JoinGame{}), peerKarel)
	if _, ok := reply.(network.IllegalState); !ok {
		t.Errorf("join after cleanup got %s, want illegal state", reply)
	}
}

func TestShutdown(t *testing.T) {
	app := playingApp(t)

	commands := app.HandleShutdown()

	for _, peer := range []models.PeerID{peerKarel, peerPepa} {
		if _, ok := onlyMessage(t, commands, peer).(network.Disconnect); !ok {
			t.Errorf("peer %d got %v, want disconnect", peer, messagesFor(commands, peer))
		}
		closed := false
		for _, command := range commands {
			if c, ok := command.(CloseCommand); ok && c.Peer == peer {
				closed = true
			}
		}
		if !closed {
			t.Errorf("peer %d was not closed on shutdown", peer)
		}
	}

	if len(app.sessions) != 0 || len(app.games) != 0 {
		t.Errorf("shutdown left %d sessions and %d games behind", len(app.sessions), len(app.games))
	}
}

func TestLogout(t *testing.T) {
	app := playingApp(t)

	commands := app.HandleMessage(peerKarel, network.LogOut{})
	if _, ok := onlyMessage(t, commands, peerKarel).(network.LogoutOk); !ok {
		t.Errorf("Karel got %s, want logout ok", onlyMessage(t, commands, peerKarel))
	}
	if _, ok := onlyMessage(t, commands, peerPepa).(network.OpponentLeft); !ok {
		t.Errorf("Pepa got %s, want opponent left", onlyMessage(t, commands, peerPepa))
	}

	// the connection is anonymous again
	reply := onlyMessage(t, app.HandleMessage(peerKarel, network.JoinGame{}), peerKarel)
	if _, ok := reply.(network.IllegalState); !ok {
		t.Errorf("join after logout got %s, want illegal state", reply)
	}

	// the nickname is free for a fresh login
	reply = onlyMessage(t, app.HandleMessage(peerKarel, network.Login{Nickname: "Karel"}), peerKarel)
	if _, ok := reply.(network.LoginOk); !ok {
		t.Errorf("relogin got %s, want login ok", reply)
	}
}
