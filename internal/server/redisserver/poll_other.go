//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package redisserver

import (
	"errors"
	"net"
	"os"
	"time"
)

var errUnsupportedPlatform = errors.New("redisserver: poll(2) event loop is not supported on this platform")

const (
	pollIn   = 0x1
	pollOut  = 0x4
	pollGone = 0x18
)

type pollFd struct {
	Fd      int32
	Events  int16
	Revents int16
}

func listenFD(string) (*os.File, int, net.Addr, error) {
	return nil, -1, nil, errUnsupportedPlatform
}

func acceptFD(int) (int, string, bool, error) {
	return -1, "", false, errUnsupportedPlatform
}

func pollWait([]pollFd, time.Duration) (int, error) {
	return 0, errUnsupportedPlatform
}

func readFD(int, []byte) (int, error)  { return 0, errUnsupportedPlatform }
func writeFD(int, []byte) (int, error) { return 0, errUnsupportedPlatform }
func closeFD(int) error                { return nil }
func wouldBlock(error) bool            { return false }
