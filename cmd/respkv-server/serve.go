package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/internal/infra/confloader"
	"github.com/yndnr/respkv/internal/infra/shutdown"
	"github.com/yndnr/respkv/internal/server/config"
	"github.com/yndnr/respkv/internal/server/httpserver"
	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

var errNotRunning = errors.New("resp server is not running")

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	slogger := log.Slog()

	info := buildinfo.Get()
	log.Info("starting respkv-server",
		"version", info.Version,
		"commit", info.Commit,
		"run_id", info.RunID,
		"config", c.String("config"))

	policy, err := config.FsyncPolicy(cfg)
	if err != nil {
		return err
	}

	var registry *metric.Registry
	var metrics redisserver.Metrics
	if cfg.Metrics.Enabled {
		registry = metric.NewRegistry()
		metrics = registry
	}

	store := memory.New(config.MemoryOptions(cfg)...)
	dispatcher := redisserver.NewDispatcher(redisserver.DispatcherConfig{
		Store:     store,
		AOFPath:   cfg.AOF.Path,
		AOFPolicy: policy,
		RunID:     info.RunID,
		Version:   info.Version,
		Metrics:   metrics,
		Logger:    slogger,
	})

	if cfg.AOF.Enabled {
		if _, err := dispatcher.Replay(); err != nil {
			return fmt.Errorf("replay %s: %w", cfg.AOF.Path, err)
		}
		if err := dispatcher.EnableAOF(); err != nil {
			log.Error("aof could not be opened, continuing without persistence",
				"path", cfg.AOF.Path,
				"error", err)
		}
	}

	srv := redisserver.New(config.ToRedisServerConfig(cfg), dispatcher, slogger)
	if err := srv.Listen(); err != nil {
		_ = dispatcher.Close()
		return err
	}

	ctx := logger.WithRunID(logger.WithLogger(context.Background(), log), info.RunID)
	sh := shutdown.NewHandler(shutdown.DefaultTimeout, slogger)
	ctx, stop := sh.Notify(ctx)
	defer stop()

	sh.OnShutdown("aof", func(context.Context) error {
		return dispatcher.Close()
	})

	if registry != nil {
		admin := httpserver.New(cfg.Metrics.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
			Metrics: registry.Handler(),
			Health: func() error {
				if !srv.Running() {
					return errNotRunning
				}
				return nil
			},
			Build:  info,
			Logger: slogger,
		}), slogger)
		if err := admin.Start(); err != nil {
			_ = sh.Shutdown()
			return fmt.Errorf("admin http: %w", err)
		}
		sh.OnShutdown("http", admin.Shutdown)
	}

	if path := c.String("config"); path != "" {
		if err := watchLogLevel(ctx, sh, path); err != nil {
			logger.L(ctx).Warn("config watch disabled", "path", path, "error", err)
		}
	}

	logger.L(ctx).Info("server started", "address", srv.Addr().String())
	runErr := srv.Run(ctx)
	if runErr != nil {
		logger.L(ctx).Error("event loop failed", "error", runErr)
	}

	if err := sh.Shutdown(); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		return runErr
	}
	log.Info("server stopped gracefully")
	return nil
}

// loadConfig layers defaults, the config file, dotenv files, environment
// and explicitly set flags, in increasing priority.
func loadConfig(c *cli.Context) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithDotEnv(confloader.DefaultDotEnvFiles...)}
	if path := c.String("config"); path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if overrides := flagOverrides(c); len(overrides) > 0 {
		if err := loader.LoadMap(overrides); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}

	cfg = config.Sanitize(cfg)
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// flagOverrides maps the flags the user actually set onto config keys.
func flagOverrides(c *cli.Context) map[string]any {
	m := make(map[string]any)
	if c.IsSet("addr") {
		m["server.addr"] = c.String("addr")
	}
	if c.IsSet("aof") {
		m["aof.enabled"] = c.Bool("aof")
	}
	if c.IsSet("aof-path") {
		m["aof.path"] = c.String("aof-path")
	}
	if c.IsSet("maxmemory") {
		m["memory.max_bytes"] = c.Uint64("maxmemory")
	}
	if c.IsSet("log-level") {
		m["log.level"] = c.String("log-level")
	}
	if c.IsSet("metrics-addr") {
		m["metrics.enabled"] = true
		m["metrics.addr"] = c.String("metrics-addr")
	}
	return m
}

// watchLogLevel re-reads the config file on change and applies log.level.
// Other settings need a restart or the CONFIG command.
func watchLogLevel(ctx context.Context, sh *shutdown.Handler, path string) error {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.FromContext(ctx).Slog()))
	if err != nil {
		return err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return err
	}

	w.OnChange(func(string) {
		l := confloader.NewLoader(confloader.WithConfigFile(path))
		if err := l.LoadFile(path); err != nil {
			logger.L(ctx).Warn("config reload failed", "path", path, "error", err)
			return
		}
		level := l.GetString("log.level")
		if level == "" {
			return
		}
		if err := logger.SetLevel(level); err != nil {
			logger.L(ctx).Warn("config reload ignored log level", "level", level, "error", err)
			return
		}
		logger.L(ctx).Info("log level changed", "level", logger.GetLevel())
	})
	w.StartAsync()

	sh.OnShutdown("config-watcher", func(context.Context) error {
		return w.Stop()
	})
	return nil
}
