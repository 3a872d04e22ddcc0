package server

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"battleships/internal/game"
	"battleships/internal/models"
	"battleships/internal/network"
)

// gameRecord is a running game together with the match id used in logs.
type gameRecord struct {
	game    *game.Game
	matchID string
}

// App holds the whole server state and implements the protocol logic.
// It maps connections to player sessions, runs the matchmaking and the
// games, and reacts to every client message with a list of commands for
// the server loop to execute.
//
// The app is driven by the single server loop and is not safe for
// concurrent use.
type App struct {
	config models.ServerConfig

	// sessions indexed by player ids
	sessions map[models.PlayerID]*Session
	// player ids indexed by the registered nicknames
	nicknames map[models.Nickname]models.PlayerID

	// games indexed by game ids
	games map[models.GameID]*gameRecord
	// player-to-game map
	playersGames map[models.PlayerID]models.GameID

	// peer-to-player and player-to-peer maps of online players
	peersPlayers map[models.PeerID]models.PlayerID
	playersPeers map[models.PlayerID]models.PeerID

	// a player waiting for an opponent
	pendingPlayer *models.PlayerID
}

// NewApp creates an app with no players.
func NewApp(config models.ServerConfig) *App {
	return &App{
		config:       config,
		sessions:     make(map[models.PlayerID]*Session),
		nicknames:    make(map[models.Nickname]models.PlayerID),
		games:        make(map[models.GameID]*gameRecord),
		playersGames: make(map[models.PlayerID]models.GameID),
		peersPlayers: make(map[models.PeerID]models.PlayerID),
		playersPeers: make(map[models.PlayerID]models.PeerID),
	}
}

// HandleMessage handles one message from the peer.
func (a *App) HandleMessage(peer models.PeerID, message network.ClientMessage) []Command {
	log.Infof("message from peer %016X: %s", uint64(peer), message)

	switch m := message.(type) {
	case network.Alive:
		return a.handleAlive(peer)
	case network.Login:
		return a.handleLogin(peer, m.Nickname)
	case network.JoinGame:
		return a.handleJoinGame(peer)
	case network.Layout:
		return a.handleLayout(peer, m.Layout)
	case network.Shoot:
		return a.handleShoot(peer, m.Position)
	case network.LeaveGame:
		return a.handleLeaveGame(peer)
	case network.LogOut:
		return a.handleLogout(peer)
	}

	return nil
}

func (a *App) handleAlive(peer models.PeerID) []Command {
	log.Debugf("peer %016X is alive", uint64(peer))

	if player, ok := a.peersPlayers[peer]; ok {
		a.sessions[player].Touch()
	}

	return []Command{MessageCommand{peer, network.AliveOk{}}}
}

func (a *App) handleLogin(peer models.PeerID, nickname models.Nickname) []Command {
	log.Debugf("peer %016X wants to login as %s", uint64(peer), nickname)

	if player, ok := a.peersPlayers[peer]; ok {
		log.Warnf("already logged in as %s", a.sessions[player].Nickname())
		a.sessions[player].Touch()
		return []Command{MessageCommand{peer, network.IllegalState{}}}
	}

	if player, ok := a.nicknames[nickname]; ok {
		if _, online := a.playersPeers[player]; online {
			log.Warnf("nickname %s is already online", nickname)
			return []Command{MessageCommand{peer, network.LoginTaken{}}}
		}

		return a.restoreSession(peer, player)
	}

	if len(a.sessions) >= a.config.MaxPlayers {
		log.Warnf("refused %s, the player limit of %d is reached", nickname, a.config.MaxPlayers)
		return []Command{MessageCommand{peer, network.LoginFull{}}}
	}

	player := a.uniquePlayerID()
	a.sessions[player] = NewSession(nickname)
	a.nicknames[nickname] = player
	a.peersPlayers[peer] = player
	a.playersPeers[player] = peer

	log.Infof("player %s logged in as %016X", nickname, uint64(player))

	return []Command{MessageCommand{peer, network.LoginOk{}}}
}

// restoreSession binds the peer to the offline session and replies with
// the snapshot of the session state.
func (a *App) restoreSession(peer models.PeerID, player models.PlayerID) []Command {
	session := a.sessions[player]
	session.Touch()
	a.peersPlayers[peer] = player
	a.playersPeers[player] = peer

	gameID, inGame := a.playersGames[player]
	if !inGame {
		log.Infof("player %s restored into the lobby", session.Nickname())
		return []Command{MessageCommand{peer, network.LoginRestored{State: models.RestoreLobby{}}}}
	}

	record := a.games[gameID]
	opponent := record.game.OtherPlayer(player)

	log.Infof("player %s restored into match %s", session.Nickname(), record.matchID)

	var commands []Command
	if opponentPeer, online := a.playersPeers[opponent]; online {
		commands = append(commands, MessageCommand{opponentPeer, network.OpponentReady{}})
	}

	state := record.game.State(player)
	commands = append(commands, MessageCommand{peer, network.LoginRestored{State: models.RestoreGame{
		Opponent:       a.sessions[opponent].Nickname(),
		OnTurn:         state.OnTurn,
		PlayerHits:     state.PlayerHits,
		PlayerMisses:   state.PlayerMisses,
		Layout:         state.Layout,
		OpponentHits:   state.OpponentHits,
		OpponentMisses: state.OpponentMisses,
		SunkShips:      state.SunkShips,
	}}})

	return commands
}

func (a *App) handleJoinGame(peer models.PeerID) []Command {
	log.Debugf("peer %016X wants to join a game", uint64(peer))

	player, ok := a.peersPlayers[peer]
	if !ok {
		log.Warn("not logged in, can't join a game")
		return []Command{MessageCommand{peer, network.IllegalState{}}}
	}

	a.sessions[player].Touch()

	if _, inGame := a.playersGames[player]; inGame {
		log.Warn("already in a game")
		return []Command{MessageCommand{peer, network.IllegalState{}}}
	}

	if a.pendingPlayer == nil {
		pending := player
		a.pendingPlayer = &pending

		log.Debugf("no pending player, %s waits for an opponent", a.sessions[player].Nickname())

		return []Command{MessageCommand{peer, network.JoinGameWait{}}}
	}

	opponent := *a.pendingPlayer

	if opponent == player {
		log.Warn("already waiting for a game")
		return []Command{MessageCommand{peer, network.IllegalState{}}}
	}

	a.pendingPlayer = nil

	gameID := a.uniqueGameID()
	record := &gameRecord{
		game:    game.New(opponent, player),
		matchID: uuid.New().String(),
	}
	a.games[gameID] = record
	a.playersGames[player] = gameID
	a.playersGames[opponent] = gameID

	log.Infof("match %s started: %s vs %s",
		record.matchID, a.sessions[opponent].Nickname(), a.sessions[player].Nickname())

	opponentPeer := a.playersPeers[opponent]

	return []Command{
		MessageCommand{opponentPeer, network.OpponentJoined{Opponent: a.sessions[player].Nickname()}},
		MessageCommand{peer, network.JoinGameOk{Opponent: a.sessions[opponent].Nickname()}},
	}
}

func (a *App) handleLayout(peer models.PeerID, layout models.Layout) []Command {
	log.Debugf("peer %016X wants to choose a layout", uint64(peer))
	log.Tracef("layout: %s", layout)

	player, ok := a.peersPlayers[peer]
	if !ok {
		log.Warn("not logged in, can't choose a layout")
		return []Command{MessageCommand{peer, network.IllegalState{}}}
	}

	a.sessions[player].Touch()

	gameID, inGame := a.playersGames[player]
	if !inGame {
		log.Warn("not in a game, can't choose a layout")
		return []Command{MessageCommand{peer, network.IllegalState{}}}
	}

	record := a.games[gameID]

	if record.game.Playing() {
		log.Warn("already playing, can't choose a layout")
		return []Command{MessageCommand{peer, network.IllegalState{}}}
	}

	_, err := record.game.SetLayout(player, layout)
	switch err {
	case nil:
	case game.ErrInvalidLayout:
		log.Warnf("match %s: layout is invalid", record.matchID)
		return []Command{MessageCommand{peer, network.LayoutFail{}}}
	case game.ErrAlreadyHasLayout:
		log.Warnf("match %s: layout is already set", record.matchID)
		return []Command{MessageCommand{peer, network.IllegalState{}}}
	default:
		return []Command{MessageCommand{peer, network.IllegalState{}}}
	}

	log.Debugf("match %s: layout set", record.matchID)

	commands := []Command{MessageCommand{peer, network.LayoutOk{}}}

	opponent := record.game.OtherPlayer(player)
	if opponentPeer, online := a.playersPeers[opponent]; online {
		commands = append(commands, MessageCommand{opponentPeer, network.OpponentReady{}})
	}

	return commands
}

func (a *App) handleShoot(peer models.PeerID, position models.Position) []Command {
	log.Debugf("peer %016X wants to shoot", uint64(peer))
	log.Tracef("position: %s", position)

	player, ok := a.peersPlayers[peer]
	if !ok {
		log.Warn("not logged in, can't shoot")
		return []Command{MessageCommand{peer, network.IllegalState{}}}
	}

	a.sessions[player].Touch()

	gameID, inGame := a.playersGames[player]
	if !inGame {
		log.Warn("not in a game, can't shoot")
		return []Command{MessageCommand{peer, network.IllegalState{}}}
	}

	record := a.games[gameID]

	if !record.game.Playing() {
		log.Warn("not playing yet, can't shoot")
		return []Command{MessageCommand{peer, network.IllegalState{}}}
	}

	result, err := record.game.Shoot(player, position)
	if err != nil {
		log.Warnf("match %s: not on turn", record.matchID)
		return []Command{MessageCommand{peer, network.IllegalState{}}}
	}

	opponent := record.game.OtherPlayer(player)
	opponentPeer, opponentOnline := a.playersPeers[opponent]

	var commands []Command

	switch result.Outcome {
	case game.Missed:
		log.Debugf("match %s: missed", record.matchID)

		commands = append(commands, MessageCommand{peer, network.ShootMissed{}})
		if opponentOnline {
			commands = append(commands, MessageCommand{opponentPeer, network.OpponentMissed{Position: position}})
		}
	case game.Hit:
		log.Debugf("match %s: hit", record.matchID)

		commands = append(commands, MessageCommand{peer, network.ShootHit{}})
		if opponentOnline {
			commands = append(commands, MessageCommand{opponentPeer, network.OpponentHit{Position: position}})
		}
	case game.Sunk:
		log.Debugf("match %s: sunk a %s", record.matchID, result.Kind)

		commands = append(commands, MessageCommand{peer, network.ShootSunk{Kind: result.Kind, Placement: result.Placement}})
		if opponentOnline {
			commands = append(commands, MessageCommand{opponentPeer, network.OpponentHit{Position: position}})
		}
	}

	if winner, over := record.game.Winner(); over {
		log.Infof("match %s: game over, %s won", record.matchID, a.sessions[winner].Nickname())

		who := models.Opponent
		if winner == player {
			who = models.You
		}
		commands = append(commands, MessageCommand{peer, network.GameOver{Winner: who}})

		if opponentOnline {
			who = models.Opponent
			if winner == opponent {
				who = models.You
			}
			commands = append(commands, MessageCommand{opponentPeer, network.GameOver{Winner: who}})
		}

		delete(a.games, gameID)
		delete(a.playersGames, player)
		delete(a.playersGames, opponent)
	}

	return commands
}

func (a *App) handleLeaveGame(peer models.PeerID) []Command {
	log.Debugf("peer %016X wants to leave the game", uint64(peer))

	player, ok := a.peersPlayers[peer]
	if !ok {
		log.Warn("not logged in, can't leave a game")
		return []Command{MessageCommand{peer, network.IllegalState{}}}
	}

	a.sessions[player].Touch()

	gameID, inGame := a.playersGames[player]
	if !inGame {
		if a.pendingPlayer != nil && *a.pendingPlayer == player {
			log.Debugf("player %s stops waiting for a game", a.sessions[player].Nickname())

			a.pendingPlayer = nil
			return []Command{MessageCommand{peer, network.LeaveGameOk{}}}
		}

		log.Warn("neither in a game nor waiting, can't leave")
		return []Command{MessageCommand{peer, network.IllegalState{}}}
	}

	record := a.games[gameID]
	opponent := record.game.OtherPlayer(player)

	log.Infof("match %s: player %s left", record.matchID, a.sessions[player].Nickname())

	delete(a.games, gameID)
	delete(a.playersGames, player)
	delete(a.playersGames, opponent)

	commands := []Command{MessageCommand{peer, network.LeaveGameOk{}}}
	if opponentPeer, online := a.playersPeers[opponent]; online {
		commands = append(commands, MessageCommand{opponentPeer, network.OpponentLeft{}})
	}

	return commands
}

func (a *App) handleLogout(peer models.PeerID) []Command {
	log.Debugf("peer %016X wants to logout", uint64(peer))

	player, ok := a.peersPlayers[peer]
	if !ok {
		log.Warn("not logged in, can't logout")
		return []Command{MessageCommand{peer, network.IllegalState{}}}
	}

	commands := a.removePlayer(player)

	log.Infof("player %s logged out", a.sessions[player].Nickname())

	delete(a.nicknames, a.sessions[player].Nickname())
	delete(a.sessions, player)
	delete(a.playersPeers, player)
	delete(a.peersPlayers, peer)

	return append(commands, MessageCommand{peer, network.LogoutOk{}})
}

// removePlayer takes the player out of the matchmaking queue or its
// running game and returns the commands notifying the opponent.
func (a *App) removePlayer(player models.PlayerID) []Command {
	if a.pendingPlayer != nil && *a.pendingPlayer == player {
		a.pendingPlayer = nil
		return nil
	}

	gameID, inGame := a.playersGames[player]
	if !inGame {
		return nil
	}

	record := a.games[gameID]
	opponent := record.game.OtherPlayer(player)

	log.Debugf("match %s: removing, player %016X is gone", record.matchID, uint64(player))

	delete(a.games, gameID)
	delete(a.playersGames, player)
	delete(a.playersGames, opponent)

	if opponentPeer, online := a.playersPeers[opponent]; online {
		return []Command{MessageCommand{opponentPeer, network.OpponentLeft{}}}
	}

	return nil
}

// HandleOffline handles a lost peer connection. A logged in player stays
// registered until the session timeout; a game that has not started yet
// is removed right away.
func (a *App) HandleOffline(peer models.PeerID) []Command {
	log.Debugf("peer %016X went offline", uint64(peer))

	player, ok := a.peersPlayers[peer]
	if !ok {
		return nil
	}

	session := a.sessions[player]
	session.Touch()

	delete(a.playersPeers, player)
	delete(a.peersPlayers, peer)

	if a.pendingPlayer != nil && *a.pendingPlayer == player {
		log.Debugf("player %s was waiting for a game, removing", session.Nickname())
		a.pendingPlayer = nil
		return nil
	}

	gameID, inGame := a.playersGames[player]
	if !inGame {
		return nil
	}

	record := a.games[gameID]
	opponent := record.game.OtherPlayer(player)
	opponentPeer, opponentOnline := a.playersPeers[opponent]

	if !record.game.Playing() {
		log.Debugf("match %s has not started, removing", record.matchID)

		delete(a.games, gameID)
		delete(a.playersGames, player)
		delete(a.playersGames, opponent)

		if opponentOnline {
			return []Command{MessageCommand{opponentPeer, network.OpponentLeft{}}}
		}
		return nil
	}

	log.Infof("match %s: player %s went offline", record.matchID, session.Nickname())

	if opponentOnline {
		return []Command{MessageCommand{opponentPeer, network.OpponentOffline{}}}
	}
	return nil
}

// HandleCleanup removes the sessions of players inactive past the
// session timeout, as if they left their game and logged out. A peer
// still bound to an expired session is closed.
func (a *App) HandleCleanup(now time.Time) []Command {
	var commands []Command

	for player, session := range a.sessions {
		if now.Sub(session.LastActive()) < a.config.SessionTimeout {
			continue
		}

		log.Infof("session of %s timed out, removing", session.Nickname())

		commands = append(commands, a.removePlayer(player)...)

		if peer, online := a.playersPeers[player]; online {
			commands = append(commands, CloseCommand{Peer: peer})
			delete(a.playersPeers, player)
			delete(a.peersPlayers, peer)
		}

		delete(a.nicknames, session.Nickname())
		delete(a.sessions, player)
	}

	return commands
}

// HandleShutdown tells every bound peer the server is going down and
// drops all state.
func (a *App) HandleShutdown() []Command {
	log.Info("disconnecting all players")

	var commands []Command
	for peer := range a.peersPlayers {
		commands = append(commands,
			MessageCommand{Peer: peer, Message: network.Disconnect{}},
			CloseCommand{Peer: peer})
	}

	a.sessions = make(map[models.PlayerID]*Session)
	a.nicknames = make(map[models.Nickname]models.PlayerID)
	a.games = make(map[models.GameID]*gameRecord)
	a.playersGames = make(map[models.PlayerID]models.GameID)
	a.peersPlayers = make(map[models.PeerID]models.PlayerID)
	a.playersPeers = make(map[models.PlayerID]models.PeerID)
	a.pendingPlayer = nil

	return commands
}

func (a *App) uniquePlayerID() models.PlayerID {
	for {
		id := models.PlayerID(rand.Uint64())
		if _, taken := a.sessions[id]; !taken && id != 0 {
			return id
		}
	}
}

func (a *App) uniqueGameID() models.GameID {
	for {
		id := models.GameID(rand.Uint64())
		if _, taken := a.games[id]; !taken && id != 0 {
			return id
		}
	}
}
