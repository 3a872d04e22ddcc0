package server

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"battleships/internal/network"
)

// PeerErrorKind describes why a peer became unusable.
type PeerErrorKind int

const (
	// PeerClosed means the connection was closed or broke.
	PeerClosed PeerErrorKind = iota
	// PeerDeserialization means the peer sent data that is not
	// a valid message stream.
	PeerDeserialization
)

// PeerError indicates that the peer connection must be closed.
type PeerError struct {
	Kind  PeerErrorKind
	Cause error
}

func closedError(cause error) *PeerError {
	return &PeerError{Kind: PeerClosed, Cause: cause}
}

func deserializationError(cause error) *PeerError {
	return &PeerError{Kind: PeerDeserialization, Cause: cause}
}

func (e *PeerError) Error() string {
	switch e.Kind {
	case PeerClosed:
		if e.Cause != nil {
			return fmt.Sprintf("peer connection closed: %v", e.Cause)
		}
		return "peer connection closed"
	case PeerDeserialization:
		return fmt.Sprintf("peer stream is invalid: %v", e.Cause)
	}
	return "peer error"
}

func (e *PeerError) Unwrap() error {
	return e.Cause
}

// Peer is one nonblocking client connection with its incremental
// message decoder, an outgoing byte buffer and the last activity time.
type Peer struct {
	fd         int
	address    string
	decoder    network.LineDecoder
	encoder    network.Encoder
	readBuf    []byte
	lastActive time.Time
}

// NewPeer wraps an accepted nonblocking socket.
func NewPeer(fd int, address string) *Peer {
	return &Peer{
		fd:         fd,
		address:    address,
		readBuf:    make([]byte, 4096),
		lastActive: time.Now(),
	}
}

// Fd returns the underlying socket file descriptor.
func (p *Peer) Fd() int {
	return p.fd
}

// Address returns the remote address of the connection.
func (p *Peer) Address() string {
	return p.address
}

// LastActive returns the time of the last parsed inbound message or
// successfully written outbound bytes.
func (p *Peer) LastActive() time.Time {
	return p.lastActive
}

// DoRead reads all currently available bytes from the socket and returns
// the complete messages decoded from them. Messages decoded before an
// error are returned along with the error.
func (p *Peer) DoRead() ([]network.ClientMessage, error) {
	var messages []network.ClientMessage

	for {
		n, err := unix.Read(p.fd, p.readBuf)

		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			// no more bytes for now
			break
		}
		if err != nil {
			return messages, closedError(err)
		}
		if n == 0 {
			// orderly shutdown from the other side
			return messages, closedError(nil)
		}

		frames, err := p.decoder.Decode(p.readBuf[:n])
		if err != nil {
			return messages, deserializationError(err)
		}

		if len(frames) > 0 {
			p.lastActive = time.Now()
		}

		for _, frame := range frames {
			message, err := network.ParseClientMessage(frame)
			if err != nil {
				return messages, deserializationError(err)
			}
			messages = append(messages, message)
		}
	}

	return messages, nil
}

// AddMessage serializes the message into the outgoing buffer.
func (p *Peer) AddMessage(message network.ServerMessage) {
	p.encoder.Append(message)
}

// HasPendingBytes reports whether outgoing bytes are waiting to be written.
func (p *Peer) HasPendingBytes() bool {
	return p.encoder.HasBytes()
}

// DoWrite writes as much of the outgoing buffer as the socket accepts.
// Returns nil when the socket would block; the rest is written once the
// socket becomes writable again.
func (p *Peer) DoWrite() error {
	for p.encoder.HasBytes() {
		n, err := unix.Write(p.fd, p.encoder.Bytes())

		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			return nil
		}
		if err != nil {
			return closedError(err)
		}

		p.encoder.Discard(n)
		p.lastActive = time.Now()
	}

	return nil
}

// Close closes the socket.
func (p *Peer) Close() {
	unix.Close(p.fd)
}
