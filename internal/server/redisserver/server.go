package redisserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"
)

// Config holds the event loop configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string

	// PollTimeout bounds each readiness wait so the sweep runs without traffic.
	PollTimeout time.Duration

	// SweepInterval is the spacing between active expiry sweeps.
	SweepInterval time.Duration

	// MaxOutputBuffer is the per-connection output size at which read
	// interest is withdrawn.
	MaxOutputBuffer int

	// WriteBudget is the number of bytes written across all connections in
	// one loop iteration.
	WriteBudget int

	// ReadChunk is the size of a single read.
	ReadChunk int

	// MaxClients caps concurrent connections. 0 disables the cap.
	MaxClients int

	// AcceptRate limits new connections per second. 0 disables the limit.
	AcceptRate float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:            "127.0.0.1:6380",
		PollTimeout:     100 * time.Millisecond,
		SweepInterval:   5 * time.Second,
		MaxOutputBuffer: 2 << 20,
		WriteBudget:     1 << 20,
		ReadChunk:       16 << 10,
		MaxClients:      10000,
	}
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = def.PollTimeout
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.MaxOutputBuffer <= 0 {
		cfg.MaxOutputBuffer = def.MaxOutputBuffer
	}
	if cfg.WriteBudget <= 0 {
		cfg.WriteBudget = def.WriteBudget
	}
	if cfg.ReadChunk <= 0 {
		cfg.ReadChunk = def.ReadChunk
	}
}

var (
	// ErrServerClosed is returned by Run after the server has stopped.
	ErrServerClosed = errors.New("redisserver: server closed")

	errMaxClients = []byte("-ERR max number of clients reached\r\n")
	errAcceptRate = []byte("-ERR connection rate limit exceeded\r\n")
)

// Server is the single-threaded RESP server. All sockets, the dispatcher
// and the store are owned by the goroutine running Run.
type Server struct {
	cfg        *Config
	dispatcher *Dispatcher
	metrics    Metrics
	logger     *slog.Logger

	lnFile *os.File
	lnFD   int
	addr   net.Addr

	// conns is kept in accept order; it is the write budget's iteration order.
	conns   []*Conn
	clients atomic.Int64

	acceptLimiter *rate.Limiter
	readBuf       []byte
	write         func(c *Conn, p []byte) (int, error)
	pollFds       []pollFd
	lastSweep     time.Time

	running atomic.Bool
	stopped atomic.Bool
}

// New creates a server around d. Metrics are taken from d.
func New(cfg *Config, d *Dispatcher, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	applyDefaults(cfg)
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:        cfg,
		dispatcher: d,
		metrics:    d.metrics,
		logger:     logger,
		lnFD:       -1,
		readBuf:    make([]byte, cfg.ReadChunk),
		write: func(c *Conn, p []byte) (int, error) {
			return writeFD(c.fd, p)
		},
	}
	if cfg.AcceptRate > 0 {
		burst := int(cfg.AcceptRate)
		if burst < 1 {
			burst = 1
		}
		s.acceptLimiter = rate.NewLimiter(rate.Limit(cfg.AcceptRate), burst)
	}

	d.setClientCounter(s.ConnectedClients)
	return s
}

// Listen binds the listening socket. Run calls it when needed.
func (s *Server) Listen() error {
	if s.lnFile != nil {
		return nil
	}

	f, fd, addr, err := listenFD(s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}

	s.lnFile = f
	s.lnFD = fd
	s.addr = addr
	s.logger.Info("resp server listening", "address", addr.String())
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// ConnectedClients returns the number of open connections.
func (s *Server) ConnectedClients() int {
	return int(s.clients.Load())
}

// Run serves connections until ctx is cancelled. It returns nil on
// cancellation and a non-nil error only when the listener cannot be bound
// or the readiness wait fails.
func (s *Server) Run(ctx context.Context) error {
	if s.stopped.Load() {
		return ErrServerClosed
	}
	if err := s.Listen(); err != nil {
		return err
	}

	s.running.Store(true)
	defer s.teardown()

	s.lastSweep = time.Now()
	for {
		if ctx.Err() != nil {
			s.logger.Info("resp server stopping")
			return nil
		}
		if err := s.iterate(); err != nil {
			return err
		}
	}
}

// Running reports whether Run is active.
func (s *Server) Running() bool {
	return s.running.Load()
}

// iterate runs one readiness wait and services every ready descriptor.
func (s *Server) iterate() error {
	maxOut := s.cfg.MaxOutputBuffer

	fds := s.pollFds[:0]
	fds = append(fds, pollFd{Fd: int32(s.lnFD), Events: pollIn})
	backlog := false
	for _, c := range s.conns {
		var events int16
		if c.wantsRead(maxOut) {
			events |= pollIn
		}
		if c.wantsWrite() {
			events |= pollOut
		}
		if c.hasBacklog(maxOut) {
			backlog = true
		}
		fds = append(fds, pollFd{Fd: int32(c.fd), Events: events})
	}
	s.pollFds = fds

	timeout := s.cfg.PollTimeout
	if backlog {
		timeout = 0
	}

	if _, err := pollWait(fds, timeout); err != nil {
		return fmt.Errorf("poll: %w", err)
	}

	// conns may grow during accept; the first len(fds)-1 entries line up
	// with fds[1:].
	polled := s.conns
	if fds[0].Revents&pollIn != 0 {
		s.acceptAll()
	}

	for i, c := range polled {
		revents := fds[i+1].Revents
		if revents&(pollIn|pollGone) != 0 && c.wantsRead(maxOut) {
			s.readConn(c)
		}
		if c.hasBacklog(maxOut) {
			s.processConn(c)
		}
	}

	s.writeAll()
	s.reap()
	s.sweepIfDue(time.Now())

	s.metrics.ObserveClients(len(s.conns))
	s.metrics.ObserveStore(s.dispatcher.store.Stats())
	s.metrics.ObserveAOF(s.dispatcher.AOFEnabled(), s.dispatcher.AOFLastFsync())
	return nil
}

// acceptAll accepts until no connection is pending.
func (s *Server) acceptAll() {
	for {
		fd, remote, ok, err := acceptFD(s.lnFD)
		if err != nil {
			s.logger.Warn("accept failed", "error", err)
			return
		}
		if !ok {
			return
		}

		if s.cfg.MaxClients > 0 && len(s.conns) >= s.cfg.MaxClients {
			s.reject(fd, remote, errMaxClients, "max_clients")
			continue
		}
		if s.acceptLimiter != nil && !s.acceptLimiter.Allow() {
			s.reject(fd, remote, errAcceptRate, "accept_rate")
			continue
		}

		c := newConn(ulid.Make().String(), fd, remote)
		s.conns = append(s.conns, c)
		s.clients.Store(int64(len(s.conns)))
		s.metrics.ConnectionAccepted()
		s.logger.Debug("client connected", "conn_id", c.id, "remote", remote)
	}
}

func (s *Server) reject(fd int, remote string, msg []byte, reason string) {
	_, _ = writeFD(fd, msg)
	_ = closeFD(fd)
	s.metrics.ConnectionRejected(reason)
	s.logger.Warn("connection rejected", "remote", remote, "reason", reason)
}

// readConn performs one read and processes the buffered input.
func (s *Server) readConn(c *Conn) {
	n, err := readFD(c.fd, s.readBuf)
	if err != nil {
		if wouldBlock(err) {
			return
		}
		s.logger.Debug("read failed", "conn_id", c.id, "error", err)
		c.state = stateClosing
		return
	}
	if n == 0 {
		c.state = stateClosing
		return
	}

	c.feed(s.readBuf[:n])
	s.processConn(c)
}

// processConn runs the buffered input of c through the dispatcher and
// reports the protocol errors it hit.
func (s *Server) processConn(c *Conn) {
	before := c.protocolErrors
	c.process(s.dispatcher, s.cfg.MaxOutputBuffer)
	for i := before; i < c.protocolErrors; i++ {
		s.metrics.ProtocolError()
	}
}

// sweepIfDue runs an active expiry sweep once SweepInterval has passed
// since the previous one.
func (s *Server) sweepIfDue(now time.Time) {
	if now.Sub(s.lastSweep) < s.cfg.SweepInterval {
		return
	}
	if n := s.dispatcher.store.Sweep(); n > 0 {
		s.logger.Debug("expired keys swept", "count", n)
	}
	s.lastSweep = now
}

// writeAll drains output buffers within the per-iteration write budget.
// Each connection is offered an equal share of what remains; unused share
// rolls over to the connections after it.
func (s *Server) writeAll() {
	remaining := s.cfg.WriteBudget

	pending := 0
	for _, c := range s.conns {
		if c.state == stateOpen && c.wantsWrite() {
			pending++
		}
	}

	for _, c := range s.conns {
		if c.state != stateOpen || !c.wantsWrite() {
			continue
		}
		if remaining <= 0 {
			break
		}

		share := remaining / pending
		if share == 0 {
			share = remaining
		}
		pending--

		n, err := c.flush(share, func(p []byte) (int, error) {
			return s.write(c, p)
		})
		remaining -= n
		if err != nil && !wouldBlock(err) {
			s.logger.Debug("write failed", "conn_id", c.id, "error", err)
			c.state = stateClosing
		}
	}
}

// reap closes and removes connections in the closing state.
func (s *Server) reap() {
	kept := s.conns[:0]
	for _, c := range s.conns {
		if c.state == stateClosing {
			s.closeConn(c)
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(s.conns); i++ {
		s.conns[i] = nil
	}
	s.conns = kept
	s.clients.Store(int64(len(s.conns)))
}

func (s *Server) closeConn(c *Conn) {
	_ = closeFD(c.fd)
	c.in = nil
	c.out = nil
	s.logger.Debug("client disconnected", "conn_id", c.id, "remote", c.remote)
}

// teardown closes every connection and the listener.
func (s *Server) teardown() {
	for _, c := range s.conns {
		s.closeConn(c)
	}
	s.conns = nil
	s.clients.Store(0)

	if s.lnFile != nil {
		_ = s.lnFile.Close()
		s.lnFile = nil
		s.lnFD = -1
	}

	s.running.Store(false)
	s.stopped.Store(true)
	s.logger.Info("resp server stopped")
}
