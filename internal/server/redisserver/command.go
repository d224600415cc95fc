package redisserver

import (
	"log/slog"
	"strings"
	"time"

	"github.com/yndnr/respkv/internal/storage/aof"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/pkg/resp"
)

// handlerFunc executes a command whose arity has already been checked.
// It returns the reply and whether the request must be appended to the AOF.
type handlerFunc func(d *Dispatcher, args [][]byte) (reply resp.Value, logMutation bool)

type command struct {
	name    string
	minArgs int
	maxArgs int // -1: unbounded
	handler handlerFunc

	// closeConn asks the connection to close once the reply is written.
	closeConn bool
}

// commandTable maps the upper-cased verb to its command.
var commandTable = map[string]*command{}

func register(c *command) {
	commandTable[c.name] = c
}

func init() {
	register(&command{name: "PING", minArgs: 1, maxArgs: 2, handler: handlePing})
	register(&command{name: "ECHO", minArgs: 2, maxArgs: 2, handler: handleEcho})
	register(&command{name: "GET", minArgs: 2, maxArgs: 2, handler: handleGet})
	register(&command{name: "SET", minArgs: 3, maxArgs: -1, handler: handleSet})
	register(&command{name: "DEL", minArgs: 2, maxArgs: -1, handler: handleDel})
	register(&command{name: "DBSIZE", minArgs: 1, maxArgs: 1, handler: handleDBSize})
	register(&command{name: "QUIT", minArgs: 1, maxArgs: 1, handler: handleQuit, closeConn: true})
	register(&command{name: "CONFIG", minArgs: 2, maxArgs: -1, handler: handleConfig})
	register(&command{name: "AOF", minArgs: 2, maxArgs: 2, handler: handleAOF})
	register(&command{name: "INFO", minArgs: 1, maxArgs: 1, handler: handleInfo})
	register(&command{name: "DEBUG", minArgs: 2, maxArgs: -1, handler: handleDebug})
}

// Reply is the outcome of dispatching one request.
type Reply struct {
	Value resp.Value

	// Close reports that the connection should close after Value is sent.
	Close bool
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	Store *memory.Store

	// AOFPath and AOFPolicy are used whenever persistence is enabled, at
	// startup or through AOF ENABLE.
	AOFPath   string
	AOFPolicy aof.FsyncPolicy

	// RunID and Version are reported by INFO.
	RunID   string
	Version string

	Metrics Metrics
	Logger  *slog.Logger
}

// Dispatcher executes decoded requests against the store and the AOF.
//
// A Dispatcher is not safe for concurrent use. The server event loop is its
// only caller once startup replay has finished.
type Dispatcher struct {
	store     *memory.Store
	aofPath   string
	aofPolicy aof.FsyncPolicy
	log       *aof.Log // nil while persistence is disabled

	runID   string
	version string
	clients func() int

	metrics Metrics
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher. Persistence starts disabled; call
// EnableAOF after replay.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Store == nil {
		cfg.Store = memory.New()
	}
	if cfg.AOFPath == "" {
		cfg.AOFPath = aof.DefaultPath
	}
	if cfg.AOFPolicy == "" {
		cfg.AOFPolicy = aof.FsyncEverySec
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Dispatcher{
		store:     cfg.Store,
		aofPath:   cfg.AOFPath,
		aofPolicy: cfg.AOFPolicy,
		runID:     cfg.RunID,
		version:   cfg.Version,
		clients:   func() int { return 0 },
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
}

// Store returns the underlying store.
func (d *Dispatcher) Store() *memory.Store {
	return d.store
}

// setClientCounter installs the source of INFO connected_clients.
func (d *Dispatcher) setClientCounter(fn func() int) {
	d.clients = fn
}

// Dispatch executes req and returns the reply value.
func (d *Dispatcher) Dispatch(req resp.Value) resp.Value {
	return d.execute(req, true).Value
}

// Handle executes req on behalf of a connection.
func (d *Dispatcher) Handle(req resp.Value) Reply {
	return d.execute(req, true)
}

func (d *Dispatcher) execute(req resp.Value, logMutation bool) Reply {
	args, ok := req.BulkArgs()
	if !ok {
		return Reply{Value: resp.Error("ERR protocol error: expected array of bulk strings")}
	}
	if len(args) == 0 {
		return Reply{Value: resp.Error("ERR missing command")}
	}

	name := strings.ToUpper(string(args[0]))
	cmd, ok := commandTable[name]
	if !ok {
		d.metrics.CommandProcessed("unknown", true)
		return Reply{Value: errorf("ERR unknown command '%s'", args[0])}
	}

	if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
		d.metrics.CommandProcessed(cmd.name, true)
		return Reply{Value: wrongArity(cmd.name)}
	}

	reply, mutated := cmd.handler(d, args)
	d.metrics.CommandProcessed(cmd.name, reply.IsError())

	if mutated && logMutation {
		d.appendAOF(req)
	}

	return Reply{Value: reply, Close: cmd.closeConn}
}

// appendAOF writes the wire form of req to the log. A write failure
// disables persistence for the rest of the session.
func (d *Dispatcher) appendAOF(req resp.Value) {
	if d.log == nil {
		return
	}

	if err := d.log.Append(resp.Encode(req), d.store.Now()); err != nil {
		d.logger.Error("aof append failed, disabling persistence",
			"path", d.log.Path(),
			"error", err)
		_ = d.log.Close()
		d.log = nil
	}
}

// Replay applies every command in the AOF at the configured path without
// logging them again and discards the replies. An incomplete trailing
// command is cut from the file so that later appends stay decodable.
func (d *Dispatcher) Replay() (aof.ReplayStats, error) {
	start := time.Now()
	stats, err := aof.Replay(d.aofPath, func(req resp.Value) {
		d.execute(req, false)
	}, d.logger)
	if err != nil {
		return stats, err
	}

	if stats.TrailingBytes > 0 {
		if err := aof.Truncate(d.aofPath, stats.Bytes); err != nil {
			return stats, err
		}
		d.logger.Warn("aof incomplete trailing command truncated",
			"path", d.aofPath,
			"size", stats.Bytes,
			"dropped_bytes", stats.TrailingBytes)
	}

	d.logger.Info("aof replayed",
		"path", d.aofPath,
		"commands", stats.Commands,
		"bytes", stats.Bytes,
		"duration", time.Since(start))
	return stats, nil
}

// EnableAOF opens the log for appending. Enabling twice is a no-op.
func (d *Dispatcher) EnableAOF() error {
	if d.log != nil {
		return nil
	}

	l, err := aof.Open(aof.Config{
		Path:   d.aofPath,
		Policy: d.aofPolicy,
		Logger: d.logger,
	})
	if err != nil {
		return err
	}

	d.log = l
	d.logger.Info("aof enabled", "path", d.aofPath, "fsync", string(d.aofPolicy))
	return nil
}

// DisableAOF fsyncs and closes the log.
func (d *Dispatcher) DisableAOF() error {
	if d.log == nil {
		return nil
	}

	err := d.log.Close()
	d.log = nil
	d.logger.Info("aof disabled", "path", d.aofPath)
	return err
}

// AOFEnabled reports whether persistence is active.
func (d *Dispatcher) AOFEnabled() bool {
	return d.log != nil
}

// AOFLastFsync returns the time of the latest fsync, or the zero time.
func (d *Dispatcher) AOFLastFsync() time.Time {
	if d.log == nil {
		return time.Time{}
	}
	return d.log.LastFsync()
}

// Close releases the AOF.
func (d *Dispatcher) Close() error {
	return d.DisableAOF()
}

func wrongArity(name string) resp.Value {
	return errorf("ERR wrong number of arguments for '%s' command", name)
}

var (
	errSyntax     = resp.Error("ERR syntax error")
	errNotInteger = resp.Error("ERR value is not an integer or out of range")
	errExpireTime = resp.Error("ERR invalid expire time in 'set' command")
	replyOK       = resp.SimpleString("OK")
	replyPong     = resp.SimpleString("PONG")
)
