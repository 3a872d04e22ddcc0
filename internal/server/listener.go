package server

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

// ErrWouldBlock is returned by Accept when no connection is waiting.
var ErrWouldBlock = errors.New("operation would block")

// Listener is a nonblocking TCP listening socket.
type Listener struct {
	fd int
}

// NewListener binds a nonblocking listening socket to the address.
func NewListener(ip string, port uint16) (*Listener, error) {
	address := net.ParseIP(ip)
	if address == nil {
		return nil, fmt.Errorf("invalid listen address %q", ip)
	}

	var domain int
	var sockaddr unix.Sockaddr

	if v4 := address.To4(); v4 != nil {
		domain = unix.AF_INET
		sa := &unix.SockaddrInet4{Port: int(port)}
		copy(sa.Addr[:], v4)
		sockaddr = sa
	} else {
		domain = unix.AF_INET6
		sa := &unix.SockaddrInet6{Port: int(port)}
		copy(sa.Addr[:], address.To16())
		sockaddr = sa
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("create listening socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set SO_REUSEADDR: %w", err)
	}

	if err := unix.Bind(fd, sockaddr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind to %s: %w", net.JoinHostPort(ip, strconv.Itoa(int(port))), err)
	}

	if err := unix.Listen(fd, 128); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("listen: %w", err)
	}

	return &Listener{fd: fd}, nil
}

// Fd returns the listening socket file descriptor.
func (l *Listener) Fd() int {
	return l.fd
}

// Accept accepts one waiting connection and returns its nonblocking
// socket and the remote address. Returns ErrWouldBlock when no
// connection is waiting.
func (l *Listener) Accept() (int, string, error) {
	for {
		fd, sa, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)

		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			return 0, "", ErrWouldBlock
		}
		if err != nil {
			return 0, "", err
		}

		return fd, sockaddrString(sa), nil
	}
}

// Close closes the listening socket.
func (l *Listener) Close() {
	unix.Close(l.fd)
}

func sockaddrString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	case *unix.SockaddrInet6:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	}
	return "unknown"
}
