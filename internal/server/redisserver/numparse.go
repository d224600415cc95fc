package redisserver

import (
	"fmt"
	"strconv"

	"github.com/yndnr/respkv/pkg/resp"
)

// numErr classifies a failed numeric argument.
type numErr int

const (
	numOK numErr = iota
	numNotInteger
	numOutOfRange
	numNonPositive
)

func (e numErr) String() string {
	switch e {
	case numOK:
		return "ok"
	case numNotInteger:
		return "not an integer"
	case numOutOfRange:
		return "out of range"
	case numNonPositive:
		return "non-positive"
	default:
		return "unknown"
	}
}

// parseInt parses a signed decimal argument.
func parseInt(b []byte) (int64, numErr) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, numOutOfRange
		}
		return 0, numNotInteger
	}
	return n, numOK
}

// parsePositive parses a decimal argument that must be greater than zero.
func parsePositive(b []byte) (int64, numErr) {
	n, e := parseInt(b)
	if e != numOK {
		return 0, e
	}
	if n <= 0 {
		return 0, numNonPositive
	}
	return n, numOK
}

// parseUint parses an unsigned decimal argument.
func parseUint(b []byte) (uint64, numErr) {
	n, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, numOutOfRange
		}
		return 0, numNotInteger
	}
	return n, numOK
}

func errorf(format string, args ...any) resp.Value {
	return resp.Error(fmt.Sprintf(format, args...))
}
