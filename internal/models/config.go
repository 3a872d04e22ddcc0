package models

import (
	"net"
	"strconv"
	"time"
)

// ServerConfig holds all configurable server parameters.
type ServerConfig struct {
	// IP is the address on which the server listens.
	IP string
	// Port is the TCP port on which the server listens.
	Port uint16
	// MaxPlayers is the maximum number of players logged in at once.
	MaxPlayers int
	// PeerTimeout is the time after which an inactive connection is closed.
	PeerTimeout time.Duration
	// SessionTimeout is the time after which an inactive session is removed.
	SessionTimeout time.Duration
}

// DefaultServerConfig returns the server configuration defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		IP:             "0.0.0.0",
		Port:           10000,
		MaxPlayers:     1024,
		PeerTimeout:    10 * time.Second,
		SessionTimeout: 60 * time.Second,
	}
}

// Address returns the host:port string the server binds to.
func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.IP, strconv.Itoa(int(c.Port)))
}
