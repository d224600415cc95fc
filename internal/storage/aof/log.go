package aof

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrClosed is returned by operations on a closed Log.
	ErrClosed = errors.New("aof: log is closed")

	// ErrInvalidPolicy is returned for an unknown fsync policy name.
	ErrInvalidPolicy = errors.New("aof: invalid fsync policy")
)

// File constants.
const (
	DefaultPath     = "appendonly.aof"
	DefaultFilePerm = 0600
	DefaultDirPerm  = 0750
)

// FsyncPolicy controls when appended data is made durable.
type FsyncPolicy string

const (
	// FsyncEverySec writes every append to the OS and fsyncs at most once
	// per second.
	FsyncEverySec FsyncPolicy = "everysec"

	// FsyncNo never fsyncs explicitly except on Close.
	FsyncNo FsyncPolicy = "no"
)

// DefaultSyncInterval is the minimum spacing between fsyncs under
// FsyncEverySec.
const DefaultSyncInterval = time.Second

// ParseFsyncPolicy parses a policy name, case-insensitively.
func ParseFsyncPolicy(s string) (FsyncPolicy, error) {
	switch FsyncPolicy(strings.ToLower(s)) {
	case FsyncEverySec:
		return FsyncEverySec, nil
	case FsyncNo:
		return FsyncNo, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// Config configures a Log.
type Config struct {
	Path   string
	Policy FsyncPolicy

	// SyncInterval overrides DefaultSyncInterval.
	SyncInterval time.Duration

	Logger *slog.Logger
}

// Log appends serialized commands to a file.
type Log struct {
	path   string
	policy FsyncPolicy
	file   *os.File
	logger *slog.Logger

	// syncLimiter admits one fsync per interval.
	syncLimiter *rate.Limiter
	lastFsync   time.Time
	bytes       int64
	closed      bool
}

// Open opens (creating if needed) the log file for appending.
func Open(cfg Config) (*Log, error) {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.Policy == "" {
		cfg.Policy = FsyncEverySec
	}
	if _, err := ParseFsyncPolicy(string(cfg.Policy)); err != nil {
		return nil, err
	}
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = DefaultSyncInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
			return nil, fmt.Errorf("aof: create dir: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, DefaultFilePerm)
	if err != nil {
		return nil, fmt.Errorf("aof: open %s: %w", cfg.Path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("aof: stat %s: %w", cfg.Path, err)
	}

	return &Log{
		path:        cfg.Path,
		policy:      cfg.Policy,
		file:        f,
		logger:      cfg.Logger,
		syncLimiter: rate.NewLimiter(rate.Every(cfg.SyncInterval), 1),
		bytes:       info.Size(),
	}, nil
}

// Path returns the file path.
func (l *Log) Path() string {
	return l.path
}

// Policy returns the active fsync policy.
func (l *Log) Policy() FsyncPolicy {
	return l.policy
}

// SetPolicy changes the fsync policy for subsequent appends.
func (l *Log) SetPolicy(p FsyncPolicy) {
	l.policy = p
}

// LastFsync returns the time of the most recent fsync, or the zero time.
func (l *Log) LastFsync() time.Time {
	return l.lastFsync
}

// Size returns the file size in bytes.
func (l *Log) Size() int64 {
	return l.bytes
}

// Append writes p to the file. Under FsyncEverySec it then fsyncs if at
// least one interval has passed since the previous fsync; otherwise the
// fsync is deferred to a later append or to Close.
func (l *Log) Append(p []byte, now time.Time) error {
	if l.closed {
		return ErrClosed
	}

	n, err := l.file.Write(p)
	l.bytes += int64(n)
	if err != nil {
		return fmt.Errorf("aof: write: %w", err)
	}

	if l.policy == FsyncEverySec && l.syncLimiter.AllowN(now, 1) {
		return l.sync(now)
	}
	return nil
}

// Sync forces an fsync regardless of policy.
func (l *Log) Sync(now time.Time) error {
	if l.closed {
		return ErrClosed
	}
	return l.sync(now)
}

func (l *Log) sync(now time.Time) error {
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("aof: fsync: %w", err)
	}
	l.lastFsync = now
	return nil
}

// Close fsyncs and closes the file. Closing twice is a no-op.
func (l *Log) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true

	syncErr := l.file.Sync()
	closeErr := l.file.Close()
	if syncErr != nil {
		return fmt.Errorf("aof: fsync on close: %w", syncErr)
	}
	if closeErr != nil {
		return fmt.Errorf("aof: close: %w", closeErr)
	}

	l.logger.Debug("aof closed", "path", l.path, "bytes", l.bytes)
	return nil
}
