package server

import (
	"time"

	"battleships/internal/models"
)

// Session is a logged in player registration. It survives a lost
// connection until the session timeout passes.
type Session struct {
	nickname   models.Nickname
	lastActive time.Time
}

// NewSession creates a session for the nickname, active now.
func NewSession(nickname models.Nickname) *Session {
	return &Session{
		nickname:   nickname,
		lastActive: time.Now(),
	}
}

// Nickname returns the nickname the session is registered under.
func (s *Session) Nickname() models.Nickname {
	return s.nickname
}

// LastActive returns the time of the last player activity.
func (s *Session) LastActive() time.Time {
	return s.lastActive
}

// Touch marks the session as active now.
func (s *Session) Touch() {
	s.lastActive = time.Now()
}
