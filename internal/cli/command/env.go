package command

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/gamesvc-go/internal/bridge/simbridge"
	"github.com/yndnr/gamesvc-go/internal/config"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
	"github.com/yndnr/gamesvc-go/internal/core/service"
	"github.com/yndnr/gamesvc-go/internal/infra/shutdown"
	"github.com/yndnr/gamesvc-go/internal/infra/tlsroots"
	"github.com/yndnr/gamesvc-go/internal/storage"
	"github.com/yndnr/gamesvc-go/internal/storage/memory"
	"github.com/yndnr/gamesvc-go/internal/telemetry/logger"
	"github.com/yndnr/gamesvc-go/internal/telemetry/metric"
)

const envKey = "gamesvc.env"

// environment is everything a command needs, opened on first use and
// closed by the app's After hook.
type environment struct {
	cfg       *config.Config
	overrides map[string]any
	log       logger.Logger
	metrics   *metric.Metrics
	engine    storage.KVEngine
	platform  *simbridge.Platform
	manager   *service.Manager

	metricsAddr string
	hooks       *shutdown.Handler

	// resolution decides detected conflicts while set.
	resolution atomic.Pointer[domain.ConflictResolution]

	// shared environments belong to an enclosing shell.
	shared bool
}

// loadConfig loads the configuration the global flags select.
func loadConfig(c *cli.Context) (*config.Config, map[string]any, error) {
	flags := ParseGlobalFlags(c)
	overrides, err := flags.overrides()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(flags.Config, overrides)
	if err != nil {
		return nil, nil, err
	}
	return cfg, overrides, nil
}

// openEnv returns the command's environment, opening it on first use.
func openEnv(c *cli.Context) (*environment, error) {
	if env, ok := c.App.Metadata[envKey].(*environment); ok {
		return env, nil
	}

	flags := ParseGlobalFlags(c)
	cfg, overrides, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	l, err := logger.New(logger.Config{
		Level:  flags.LogLevel,
		Format: cfg.Log.Format,
		Output: stderr(c),
	})
	if err != nil {
		return nil, err
	}

	env := &environment{
		cfg:       cfg,
		overrides: overrides,
		log:       l,
		metrics:   metric.New(),
		hooks:     shutdown.NewHandler(shutdown.DefaultTimeout, l),
	}
	if err := env.open(c.Context, service.Platform(flags.Platform)); err != nil {
		env.close()
		return nil, err
	}
	c.App.Metadata[envKey] = env
	return env, nil
}

func (e *environment) open(ctx context.Context, platform service.Platform) error {
	engine, err := openEngine(e.cfg.Storage, e.log)
	if err != nil {
		return err
	}
	e.engine = engine
	e.hooks.OnClose("storage", engine.Close)
	if b, ok := engine.(*storage.BadgerEngine); ok {
		b.RegisterMetrics(e.metrics.Registry())
	}

	opts := service.Options{
		Platform: platform,
		Engine:   engine,
		Logger:   e.log,
		Metrics:  e.metrics,
	}
	if ca := e.cfg.CloudSave.CoverCAFile; ca != "" {
		if opts.HTTPClient, err = tlsroots.ClientForCAFile(ca, e.cfg.Bridge.Timeout); err != nil {
			return err
		}
	}
	if platform == service.PlatformBridge {
		bridgeOpts := []simbridge.Option{
			simbridge.WithLatency(e.cfg.Bridge.Latency),
			simbridge.WithLogger(e.log),
		}
		if base := e.cfg.Bridge.CoverBaseURL; base != "" {
			bridgeOpts = append(bridgeOpts, simbridge.WithCoverBaseURL(base))
		}
		e.platform = simbridge.New(engine, bridgeOpts...)
		e.hooks.OnClose("simbridge", e.platform.Close)
		if err := e.platform.Seed(ctx, simbridge.DefaultSeed()); err != nil {
			return fmt.Errorf("seed simulated bridge: %w", err)
		}
		opts.Bridges = service.Bridges{
			Auth:         e.platform.Auth(),
			Achievements: e.platform.Achievements(),
			Leaderboards: e.platform.Leaderboards(),
			CloudSave:    e.platform.CloudSave(),
			Stats:        e.platform.Stats(),
			Events:       e.platform.Events(),
		}
	}

	m, err := service.NewManager(e.cfg, opts)
	if err != nil {
		return err
	}
	e.manager = m
	e.hooks.OnClose("services", m.Close)
	if cs := m.CloudSave(); cs != nil {
		cs.OnConflictDetected(e.conflictDetected(cs))
	}

	if addr := e.cfg.Metrics.Addr; addr != "" {
		if err := e.serveMetrics(addr); err != nil {
			return err
		}
	}
	return nil
}

func openEngine(cfg config.StorageSection, l logger.Logger) (storage.KVEngine, error) {
	if cfg.Engine == config.EngineMemory {
		return memory.New(), nil
	}
	kv := storage.DefaultKVConfig(filepath.Join(cfg.Dir, "data"))
	e, err := storage.NewBadgerEngine(kv, l)
	if err != nil {
		return nil, fmt.Errorf("open data dir %s: %w", cfg.Dir, err)
	}
	return e, nil
}

func (e *environment) serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.Error("metrics server stopped", "error", err)
		}
	}()
	e.metricsAddr = ln.Addr().String()
	e.hooks.OnShutdown("metrics", srv.Shutdown)
	e.log.Info("serving metrics", "addr", e.metricsAddr)
	return nil
}

func (e *environment) conflictDetected(cs provider.CloudSave) func(*domain.SavedGameConflict) {
	return func(conflict *domain.SavedGameConflict) {
		r := e.resolution.Load()
		e.log.Warn("saved game conflict",
			"filename", conflict.Filename,
			"local_modified", conflict.Local.LastModifiedTimestamp,
			"server_modified", conflict.Server.LastModifiedTimestamp,
			"decided", r != nil,
		)
		if r == nil {
			return
		}
		go func() {
			if err := cs.ResolveConflict(context.Background(), *r); err != nil {
				e.log.Warn("conflict resolution rejected", "filename", conflict.Filename, "error", err)
			}
		}()
	}
}

// resolveWith makes detected conflicts resolve with name until the
// returned func runs. An empty name leaves them to the conflict timeout.
func (e *environment) resolveWith(name string) (func(), error) {
	if name == "" {
		return func() {}, nil
	}
	r, err := domain.ParseConflictResolution(name)
	if err != nil {
		return nil, err
	}
	e.resolution.Store(&r)
	return func() { e.resolution.Store(nil) }, nil
}

// historyFile is the shell history path inside the data directory.
func (e *environment) historyFile() string {
	if e.cfg.Storage.Engine == config.EngineMemory {
		return ""
	}
	return filepath.Join(e.cfg.Storage.Dir, "history")
}

func (e *environment) close() error {
	return e.hooks.Shutdown()
}

// closeEnv closes the environment a command opened.
func closeEnv(c *cli.Context) error {
	env, ok := c.App.Metadata[envKey].(*environment)
	if !ok || env.shared {
		return nil
	}
	delete(c.App.Metadata, envKey)
	return env.close()
}
