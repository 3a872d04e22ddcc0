package server

import (
	"battleships/internal/models"
	"battleships/internal/network"
)

// Command is an action the server loop executes on behalf of the app.
type Command interface {
	isCommand()
}

// MessageCommand queues a message for the peer and flushes it.
type MessageCommand struct {
	Peer    models.PeerID
	Message network.ServerMessage
}

// CloseCommand closes the peer connection.
type CloseCommand struct {
	Peer models.PeerID
}

func (MessageCommand) isCommand() {}
func (CloseCommand) isCommand()   {}
