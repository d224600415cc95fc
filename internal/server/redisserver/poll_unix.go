//go:build linux || darwin || freebsd || netbsd || openbsd

package redisserver

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

const (
	pollIn  = unix.POLLIN
	pollOut = unix.POLLOUT

	// pollGone is reported for hang-up or socket errors; a read then
	// surfaces EOF or the error.
	pollGone = unix.POLLHUP | unix.POLLERR | unix.POLLNVAL
)

type pollFd = unix.PollFd

// listenFD binds addr and returns a non-blocking listening descriptor. The
// returned file owns the descriptor and must be closed to release it.
func listenFD(addr string) (*os.File, int, net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, -1, nil, err
	}
	defer ln.Close()

	tl, ok := ln.(*net.TCPListener)
	if !ok {
		return nil, -1, nil, fmt.Errorf("unexpected listener type %T", ln)
	}

	f, err := tl.File()
	if err != nil {
		return nil, -1, nil, fmt.Errorf("listener file: %w", err)
	}

	fd := int(f.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = f.Close()
		return nil, -1, nil, fmt.Errorf("set nonblock: %w", err)
	}

	return f, fd, ln.Addr(), nil
}

// acceptFD accepts one pending connection. ok is false when none is
// pending.
func acceptFD(lfd int) (fd int, remote string, ok bool, err error) {
	nfd, sa, err := unix.Accept(lfd)
	if err != nil {
		if wouldBlock(err) || errors.Is(err, unix.ECONNABORTED) {
			return -1, "", false, nil
		}
		return -1, "", false, err
	}

	unix.CloseOnExec(nfd)
	if err := unix.SetNonblock(nfd, true); err != nil {
		_ = unix.Close(nfd)
		return -1, "", false, err
	}
	_ = unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)

	return nfd, sockaddrString(sa), true, nil
}

// pollWait blocks until a descriptor in fds is ready or timeout elapses.
// An interrupted wait reports zero ready descriptors.
func pollWait(fds []pollFd, timeout time.Duration) (int, error) {
	n, err := unix.Poll(fds, int(timeout/time.Millisecond))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func readFD(fd int, p []byte) (int, error) {
	return unix.Read(fd, p)
}

func writeFD(fd int, p []byte) (int, error) {
	n, err := unix.Write(fd, p)
	if n < 0 {
		n = 0
	}
	return n, err
}

func closeFD(fd int) error {
	return unix.Close(fd)
}

func wouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR)
}

func sockaddrString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	case *unix.SockaddrInet6:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	case *unix.SockaddrUnix:
		return a.Name
	default:
		return "unknown"
	}
}
