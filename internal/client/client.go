// Package client implements the TCP game client and its terminal UI.
package client

import (
	"net"
	"sync"
	"time"

	"battleships/internal/network"
)

// Client is a connection to the game server. Received messages are
// delivered on the Messages channel by a background reader; the channel
// is closed when the connection dies and the cause is left in Err.
type Client struct {
	conn     net.Conn
	Messages chan network.ServerMessage

	writeMu sync.Mutex

	errMu sync.Mutex
	err   error
}

// Connect dials the server and starts the background reader.
func Connect(address string) (*Client, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:     conn,
		Messages: make(chan network.ServerMessage, 64),
	}

	go c.readLoop()

	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.Messages)

	var decoder network.LineDecoder
	buf := make([]byte, 4096)

	for {
		n, err := c.conn.Read(buf)

		if n > 0 {
			frames, derr := decoder.Decode(buf[:n])
			if derr != nil {
				c.setErr(derr)
				return
			}

			for _, frame := range frames {
				message, perr := network.ParseServerMessage(frame)
				if perr != nil {
					c.setErr(perr)
					return
				}
				c.Messages <- message
			}
		}

		if err != nil {
			c.setErr(err)
			return
		}
	}
}

// Send serializes the message and writes it to the server.
func (c *Client) Send(message network.ClientMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	var encoder network.Encoder
	encoder.Append(message)

	_, err := c.conn.Write(encoder.Bytes())
	return err
}

// KeepAlive starts sending alive messages in the given interval and
// returns a function that stops it.
func (c *Client) KeepAlive(interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := c.Send(network.Alive{}); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}

// Err returns the error that ended the connection, if any.
func (c *Client) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *Client) setErr(err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

// Close closes the connection.
func (c *Client) Close() {
	c.conn.Close()
}
