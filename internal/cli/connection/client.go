package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/yndnr/respkv/pkg/resp"
)

// DefaultAddr is the server address used when none is given.
const DefaultAddr = "127.0.0.1:6380"

// DefaultTimeout bounds dialing and each request round trip.
const DefaultTimeout = 5 * time.Second

// ErrClosed is returned after Close or once the server has closed the
// connection.
var ErrClosed = errors.New("connection: closed")

const readChunk = 16 << 10

// Client is a RESP client. It is not safe for concurrent use.
type Client struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	buf     []byte
}

// Dial connects to addr. A non-positive timeout uses DefaultTimeout.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}

	return &Client{
		addr:    addr,
		timeout: timeout,
		conn:    conn,
	}, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Do sends one command and waits for its reply. An error reply from the
// server is returned as a Value; err is set only for transport and
// protocol failures.
func (c *Client) Do(args ...string) (resp.Value, error) {
	if len(args) == 0 {
		return resp.Value{}, errors.New("connection: empty command")
	}
	if err := c.Send(resp.Command(args...)); err != nil {
		return resp.Value{}, err
	}
	return c.Receive()
}

// Send writes an encoded request without waiting for the reply.
func (c *Client) Send(req resp.Value) error {
	if c.conn == nil {
		return ErrClosed
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	if _, err := c.conn.Write(resp.Encode(req)); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// Receive reads the next reply.
func (c *Client) Receive() (resp.Value, error) {
	if c.conn == nil {
		return resp.Value{}, ErrClosed
	}

	var chunk []byte
	for {
		v, n, err := resp.Decode(c.buf)
		if err == nil {
			c.buf = c.buf[n:]
			return v, nil
		}
		if !errors.Is(err, resp.ErrIncomplete) {
			return resp.Value{}, fmt.Errorf("decode reply: %w", err)
		}

		if chunk == nil {
			chunk = make([]byte, readChunk)
		}
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return resp.Value{}, err
		}
		m, err := c.conn.Read(chunk)
		c.buf = append(c.buf, chunk[:m]...)
		if err != nil {
			if m > 0 {
				continue
			}
			if errors.Is(err, io.EOF) {
				return resp.Value{}, ErrClosed
			}
			return resp.Value{}, fmt.Errorf("receive: %w", err)
		}
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
