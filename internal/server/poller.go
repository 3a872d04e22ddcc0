package server

import "golang.org/x/sys/unix"

// PollEvent is a readiness event for the socket registered under Token.
type PollEvent struct {
	Token    uint64
	Readable bool
	Writable bool
}

// Poller is a level-triggered epoll instance. Sockets are registered
// under 64-bit tokens carried back in the events.
type Poller struct {
	epollFd int
	events  []unix.EpollEvent
}

// NewPoller creates an epoll instance.
func NewPoller() (*Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}

	return &Poller{
		epollFd: fd,
		events:  make([]unix.EpollEvent, 128),
	}, nil
}

// epollEvent packs the token into the event data. The 64-bit token is
// split between the Fd and Pad fields.
func epollEvent(token uint64, writable bool) unix.EpollEvent {
	events := uint32(unix.EPOLLIN)
	if writable {
		events |= unix.EPOLLOUT
	}

	return unix.EpollEvent{
		Events: events,
		Fd:     int32(token),
		Pad:    int32(token >> 32),
	}
}

// Register starts watching the socket for readability, and for
// writability if requested.
func (p *Poller) Register(fd int, token uint64, writable bool) error {
	event := epollEvent(token, writable)
	return unix.EpollCtl(p.epollFd, unix.EPOLL_CTL_ADD, fd, &event)
}

// Reregister changes the interests of an already watched socket.
func (p *Poller) Reregister(fd int, token uint64, writable bool) error {
	event := epollEvent(token, writable)
	return unix.EpollCtl(p.epollFd, unix.EPOLL_CTL_MOD, fd, &event)
}

// Deregister stops watching the socket. A socket that is already gone
// is not an error.
func (p *Poller) Deregister(fd int) error {
	err := unix.EpollCtl(p.epollFd, unix.EPOLL_CTL_DEL, fd, nil)
	if err == unix.EBADF || err == unix.ENOENT {
		return nil
	}
	return err
}

// Poll waits for readiness events up to the timeout in milliseconds.
// An interrupted wait returns no events.
func (p *Poller) Poll(timeoutMs int) ([]PollEvent, error) {
	n, err := unix.EpollWait(p.epollFd, p.events, timeoutMs)

	if err == unix.EINTR {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	events := make([]PollEvent, 0, n)
	for _, e := range p.events[:n] {
		token := uint64(uint32(e.Fd)) | uint64(uint32(e.Pad))<<32

		// hangups and errors surface through the read path
		readable := e.Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLERR) != 0

		events = append(events, PollEvent{
			Token:    token,
			Readable: readable,
			Writable: e.Events&unix.EPOLLOUT != 0,
		})
	}

	return events, nil
}

// Close closes the epoll instance.
func (p *Poller) Close() {
	unix.Close(p.epollFd)
}
