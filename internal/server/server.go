package server

import (
	"math/rand"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"battleships/internal/models"
	"battleships/internal/network"
)

// listenerToken is the poll token reserved for the listening socket.
const listenerToken = 0

// pollTimeoutMs bounds one poll wait so that timeouts and the shutdown
// flag are checked regularly.
const pollTimeoutMs = 1000

// Server runs the whole game server in a single readiness-driven loop:
// it accepts connections, reads client messages, feeds them to the app
// and writes the responses back.
type Server struct {
	config   models.ServerConfig
	app      *App
	listener *Listener
	poller   *Poller
	peers    map[models.PeerID]*Peer
}

// NewServer binds the listening socket and prepares the server to run.
func NewServer(config models.ServerConfig) (*Server, error) {
	listener, err := NewListener(config.IP, config.Port)
	if err != nil {
		return nil, err
	}

	poller, err := NewPoller()
	if err != nil {
		listener.Close()
		return nil, err
	}

	if err := poller.Register(listener.Fd(), listenerToken, false); err != nil {
		poller.Close()
		listener.Close()
		return nil, err
	}

	return &Server{
		config:   config,
		app:      NewApp(config),
		listener: listener,
		poller:   poller,
		peers:    make(map[models.PeerID]*Peer),
	}, nil
}

// Run runs the server loop until the shutdown flag is set. On shutdown
// every connected client is sent a disconnect notice and closed.
func (s *Server) Run(shutdown *atomic.Bool) error {
	log.Infof("server listening on %s", s.config.Address())
	log.Infof("player capacity %d, peer timeout %s, session timeout %s",
		s.config.MaxPlayers, s.config.PeerTimeout, s.config.SessionTimeout)

	for !shutdown.Load() {
		events, err := s.poller.Poll(pollTimeoutMs)
		if err != nil {
			return err
		}

		for _, event := range events {
			if event.Token == listenerToken {
				s.acceptPeers()
				continue
			}

			id := models.PeerID(event.Token)
			peer, ok := s.peers[id]
			if !ok {
				// a stale event for an already closed peer
				continue
			}

			if event.Readable {
				s.readPeer(id, peer)
			}

			// the peer may have been closed by the read handling
			if peer, ok = s.peers[id]; ok && event.Writable {
				s.flushPeer(id, peer)
			}
		}

		s.checkTimeouts()
	}

	log.Info("server shutting down")
	s.execute(s.app.HandleShutdown())
	s.disconnectAll()
	s.poller.Close()
	s.listener.Close()

	return nil
}

// acceptPeers accepts all waiting connections.
func (s *Server) acceptPeers() {
	for {
		fd, address, err := s.listener.Accept()
		if err == ErrWouldBlock {
			return
		}
		if err != nil {
			log.Errorf("accept failed: %v", err)
			return
		}

		id := s.uniquePeerID()
		peer := NewPeer(fd, address)

		if err := s.poller.Register(fd, uint64(id), false); err != nil {
			log.Errorf("can't watch the new connection: %v", err)
			peer.Close()
			continue
		}

		s.peers[id] = peer

		log.Infof("peer %016X connected from %s", uint64(id), address)
	}
}

// readPeer reads all available messages from the peer and handles them.
func (s *Server) readPeer(id models.PeerID, peer *Peer) {
	messages, err := peer.DoRead()

	for _, message := range messages {
		// the peer may close itself mid-batch
		if _, ok := s.peers[id]; !ok {
			return
		}
		s.execute(s.app.HandleMessage(id, message))
	}

	if err != nil {
		var peerErr *PeerError
		if pe, ok := err.(*PeerError); ok {
			peerErr = pe
		}

		if peerErr != nil && peerErr.Kind == PeerDeserialization {
			log.Warnf("peer %016X sent an invalid stream: %v", uint64(id), peerErr.Cause)
		} else {
			log.Debugf("peer %016X disconnected: %v", uint64(id), err)
		}

		s.closePeer(id)
	}
}

// flushPeer writes the pending outgoing bytes and keeps the peer
// registered for writability only while some remain.
func (s *Server) flushPeer(id models.PeerID, peer *Peer) {
	if err := peer.DoWrite(); err != nil {
		log.Debugf("write to peer %016X failed: %v", uint64(id), err)
		s.closePeer(id)
		return
	}

	if err := s.poller.Reregister(peer.Fd(), uint64(id), peer.HasPendingBytes()); err != nil {
		log.Errorf("can't rearm peer %016X: %v", uint64(id), err)
		s.closePeer(id)
	}
}

// execute carries out the commands produced by the app.
func (s *Server) execute(commands []Command) {
	for _, command := range commands {
		switch c := command.(type) {
		case MessageCommand:
			if peer, ok := s.peers[c.Peer]; ok {
				peer.AddMessage(c.Message)
				s.flushPeer(c.Peer, peer)
			}
		case CloseCommand:
			if peer, ok := s.peers[c.Peer]; ok {
				peer.DoWrite()
				s.closePeer(c.Peer)
			}
		}
	}
}

// checkTimeouts closes the connections that were silent for too long and
// cleans up the timed out sessions.
func (s *Server) checkTimeouts() {
	now := time.Now()

	for id, peer := range s.peers {
		if now.Sub(peer.LastActive()) >= s.config.PeerTimeout {
			log.Debugf("peer %016X timed out", uint64(id))
			s.closePeer(id)
		}
	}

	s.execute(s.app.HandleCleanup(now))
}

// closePeer closes the connection and tells the app the peer is gone.
func (s *Server) closePeer(id models.PeerID) {
	peer, ok := s.peers[id]
	if !ok {
		return
	}

	if err := s.poller.Deregister(peer.Fd()); err != nil {
		log.Errorf("can't unwatch peer %016X: %v", uint64(id), err)
	}

	peer.Close()
	delete(s.peers, id)

	log.Infof("peer %016X closed", uint64(id))

	s.execute(s.app.HandleOffline(id))
}

// disconnectAll sends a disconnect notice to the connections left after
// the app said goodbye to its players and closes them.
func (s *Server) disconnectAll() {
	for id, peer := range s.peers {
		peer.AddMessage(network.Disconnect{})
		// best effort, the socket may refuse the bytes
		peer.DoWrite()
		peer.Close()
		delete(s.peers, id)
	}
}

func (s *Server) uniquePeerID() models.PeerID {
	for {
		id := models.PeerID(rand.Uint64())
		if _, taken := s.peers[id]; !taken && id != listenerToken {
			return id
		}
	}
}
