package redisserver

import (
	"errors"
	"strings"

	"github.com/yndnr/respkv/pkg/resp"
)

// connState is the lifecycle of a client connection.
type connState int

const (
	// stateOpen is normal duplex operation.
	stateOpen connState = iota

	// stateClosing is entered on peer EOF, an I/O error, or after QUIT once
	// output has drained. The loop removes closing connections.
	stateClosing
)

// handler executes one decoded request.
type handler interface {
	Handle(req resp.Value) Reply
}

// Conn is the per-connection state owned by the event loop.
type Conn struct {
	id     string
	fd     int
	remote string

	in  []byte
	out []byte

	state connState

	// quit is set once QUIT has been processed; no further input is read or
	// executed.
	quit bool

	// blocked is set when process stopped on a full output buffer with
	// input still buffered.
	blocked bool

	protocolErrors uint64
}

func newConn(id string, fd int, remote string) *Conn {
	return &Conn{
		id:     id,
		fd:     fd,
		remote: remote,
	}
}

// ID returns the connection id.
func (c *Conn) ID() string {
	return c.id
}

// wantsRead reports whether the loop should poll for input. Read interest is
// withdrawn while the output buffer is at or above maxOut.
func (c *Conn) wantsRead(maxOut int) bool {
	return c.state == stateOpen && !c.quit && len(c.out) < maxOut
}

// wantsWrite reports whether output is pending.
func (c *Conn) wantsWrite() bool {
	return len(c.out) > 0
}

// hasBacklog reports whether input left unprocessed by a full output buffer
// can now be processed.
func (c *Conn) hasBacklog(maxOut int) bool {
	return c.blocked && c.state == stateOpen && !c.quit && len(c.out) < maxOut
}

// feed appends freshly read bytes to the input buffer.
func (c *Conn) feed(p []byte) {
	c.in = append(c.in, p...)
}

// process decodes and executes buffered requests until the input is
// exhausted or incomplete, or the output buffer reaches maxOut.
//
// On a protocol error one byte is discarded and decoding resumes at the
// next offset. It returns the number of requests executed.
func (c *Conn) process(h handler, maxOut int) int {
	executed := 0
	consumed := 0

	for consumed < len(c.in) && len(c.out) < maxOut && !c.quit {
		v, n, err := resp.Decode(c.in[consumed:])
		if err != nil {
			if errors.Is(err, resp.ErrIncomplete) {
				break
			}
			c.out = resp.AppendValue(c.out, resp.Error("ERR Protocol error: "+protocolDetail(err)))
			c.protocolErrors++
			consumed++
			continue
		}

		consumed += n
		reply := h.Handle(v)
		c.out = resp.AppendValue(c.out, reply.Value)
		executed++
		if reply.Close {
			c.quit = true
		}
	}

	if consumed > 0 {
		c.in = append(c.in[:0], c.in[consumed:]...)
	}
	c.blocked = len(c.in) > 0 && len(c.out) >= maxOut
	if c.quit {
		c.in = nil
	}
	return executed
}

// flush writes up to budget bytes of pending output using write, which
// follows the semantics of write(2) on a non-blocking socket. It returns
// the number of bytes written.
func (c *Conn) flush(budget int, write func([]byte) (int, error)) (int, error) {
	if budget <= 0 || len(c.out) == 0 {
		return 0, nil
	}

	chunk := c.out
	if len(chunk) > budget {
		chunk = chunk[:budget]
	}

	n, err := write(chunk)
	if n > 0 {
		c.out = c.out[n:]
		if len(c.out) == 0 {
			c.out = nil
		}
	}
	if err != nil {
		return n, err
	}

	if c.quit && len(c.out) == 0 {
		c.state = stateClosing
	}
	return n, nil
}

// protocolDetail strips the codec's package prefix from a decode error.
func protocolDetail(err error) string {
	msg := err.Error()
	msg = strings.TrimPrefix(msg, resp.ErrProtocol.Error()+": ")
	return msg
}
