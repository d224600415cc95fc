package command

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/yndnr/respkv/pkg/resp"
)

// fakeServer answers RESP requests with canned replies and records them.
type fakeServer struct {
	addr string

	mu       sync.Mutex
	requests [][]string
	reply    func(args []string) resp.Value
}

func newFakeServer(t *testing.T, reply func(args []string) resp.Value) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	s := &fakeServer{addr: ln.Addr().String(), reply: reply}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serve(conn)
		}
	}()
	return s
}

func (s *fakeServer) serve(conn net.Conn) {
	defer conn.Close()
	var buf []byte
	chunk := make([]byte, 4096)
	for {
		n, err := conn.Read(chunk)
		if err != nil {
			return
		}
		buf = append(buf, chunk[:n]...)
		for {
			v, used, err := resp.Decode(buf)
			if errors.Is(err, resp.ErrIncomplete) {
				break
			}
			if err != nil {
				return
			}
			buf = buf[used:]

			raw, _ := v.BulkArgs()
			args := make([]string, len(raw))
			for i, a := range raw {
				args[i] = string(a)
			}

			s.mu.Lock()
			s.requests = append(s.requests, args)
			s.mu.Unlock()

			if _, err := conn.Write(resp.Encode(s.reply(args))); err != nil {
				return
			}
		}
	}
}

func (s *fakeServer) lastRequest() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

func (s *fakeServer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// runApp runs the CLI against srv and returns everything it printed.
func runApp(t *testing.T, srv *fakeServer, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(input)
	app.Writer = &out
	app.ErrWriter = &out

	full := append([]string{"respkv-cli", "--server", srv.addr}, args...)
	err := app.Run(full)
	return out.String(), err
}

// echoReply replies +OK to everything except a few commands used by tests.
func echoReply(args []string) resp.Value {
	if len(args) == 0 {
		return resp.Error("ERR missing command")
	}
	switch strings.ToUpper(args[0]) {
	case "PING":
		if len(args) > 1 {
			return resp.BulkString(args[1])
		}
		return resp.SimpleString("PONG")
	case "GET":
		if args[1] == "missing" {
			return resp.NullBulk()
		}
		return resp.BulkString("value-of-" + args[1])
	case "DEL":
		return resp.Integer(int64(len(args) - 1))
	case "INFO":
		return resp.BulkString("# Server\r\nrespkv_version:dev\r\n")
	case "CONFIG":
		if strings.ToUpper(args[1]) == "GET" {
			return resp.ArrayOf(resp.BulkString(args[2]), resp.BulkString("0"))
		}
		return resp.SimpleString("OK")
	case "DEBUG":
		return resp.BulkString("00000000deadbeef")
	case "BOOM":
		return resp.Error("ERR unknown command 'BOOM'")
	default:
		return resp.SimpleString("OK")
	}
}
