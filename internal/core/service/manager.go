package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/gamesvc-go/internal/bridge"
	"github.com/yndnr/gamesvc-go/internal/config"
	"github.com/yndnr/gamesvc-go/internal/core/dispatch"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
	"github.com/yndnr/gamesvc-go/internal/mock"
	"github.com/yndnr/gamesvc-go/internal/storage"
	"github.com/yndnr/gamesvc-go/internal/storage/memory"
	"github.com/yndnr/gamesvc-go/internal/telemetry/logger"
	"github.com/yndnr/gamesvc-go/internal/telemetry/metric"
)

// Platform selects the provider implementations a Manager builds.
type Platform string

// Platforms.
const (
	// PlatformBridge builds controllers over vendor bridges.
	PlatformBridge Platform = "bridge"
	// PlatformMock builds in-process mocks driven by config.MockSettings.
	PlatformMock Platform = "mock"
)

// Bridges are the vendor bindings of PlatformBridge. Every enabled service
// needs its bridge.
type Bridges struct {
	Auth         bridge.Auth
	Achievements bridge.Achievements
	Leaderboards bridge.Leaderboards
	CloudSave    bridge.CloudSave
	Stats        bridge.Stats
	Events       bridge.Events
}

// Options configures a Manager.
type Options struct {
	Platform Platform
	Bridges  Bridges

	// Engine stores local preferences. Nil keeps them in memory for the
	// Manager's lifetime.
	Engine storage.KVEngine

	Logger     logger.Logger
	Metrics    *metric.Metrics
	HTTPClient *http.Client

	// MockDelay is the simulated latency of PlatformMock; see mock.Options.
	MockDelay time.Duration
}

// ErrMissingBridge is returned by NewManager when an enabled service has no
// bridge.
var ErrMissingBridge = errors.New("service: missing bridge")

// Manager builds the enabled providers once and owns their lifetime.
//
// Bridge callbacks are marshaled through one dispatcher whose Run loop the
// Manager drives. Disabled services return nil providers.
type Manager struct {
	cfg      atomic.Pointer[config.Config]
	platform Platform
	log      logger.Logger

	dispatcher *dispatch.Dispatcher
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	ownedEngine storage.KVEngine

	auth         provider.Auth
	achievements provider.Achievements
	leaderboards provider.Leaderboards
	cloudSave    provider.CloudSave
	stats        provider.Stats
	events       provider.Events

	closeOnce sync.Once
	closeErr  error
}

// NewManager validates cfg and builds every enabled service.
func NewManager(cfg *config.Config, opts Options) (*Manager, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := config.Verify(cfg); err != nil {
		return nil, err
	}
	if opts.Platform == "" {
		opts.Platform = PlatformBridge
	}
	if opts.Platform != PlatformBridge && opts.Platform != PlatformMock {
		return nil, fmt.Errorf("service: unknown platform %q", opts.Platform)
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}

	m := &Manager{
		platform: opts.Platform,
		log:      opts.Logger.With("component", "manager"),
	}
	m.cfg.Store(cfg)

	engine := opts.Engine
	if engine == nil {
		engine = memory.New()
		m.ownedEngine = engine
	}
	prefs := storage.NewPrefs(engine, storage.DefaultPrefsNamespace)

	var err error
	if opts.Platform == PlatformMock {
		m.buildMocks(cfg, opts, prefs)
	} else {
		err = m.buildControllers(cfg, opts, prefs)
	}
	if err != nil {
		m.Close()
		return nil, err
	}

	m.log.Info("games services initialized",
		"platform", string(m.platform),
		"services", m.Services(),
		"sidekick_tier", config.EvaluateSidekick(cfg).String(),
	)
	return m, nil
}

func (m *Manager) buildMocks(cfg *config.Config, opts Options, prefs *storage.Prefs) {
	mo := mock.Options{Logger: opts.Logger, Delay: opts.MockDelay, Prefs: prefs}
	s := cfg.Services
	if s.Auth {
		m.auth = mock.NewAuth(cfg.Mock, mo)
	}
	if s.Achievements {
		m.achievements = mock.NewAchievements(cfg.Mock, mo)
	}
	if s.Leaderboards {
		m.leaderboards = mock.NewLeaderboards(cfg.Mock, mo)
	}
	if s.CloudSave {
		m.cloudSave = mock.NewCloudSave(cfg.Mock, cfg.CloudSave.RequireMetadata, mo)
	}
	if s.Stats {
		m.stats = mock.NewStats(cfg.Mock, mo)
	}
	if s.Events {
		m.events = mock.NewEvents(cfg.Mock, mo)
	}
}

func (m *Manager) buildControllers(cfg *config.Config, opts Options, prefs *storage.Prefs) error {
	b, s := opts.Bridges, cfg.Services
	for _, need := range []struct {
		name    string
		enabled bool
		present bool
	}{
		{"auth", s.Auth, b.Auth != nil},
		{"achievements", s.Achievements, b.Achievements != nil},
		{"leaderboards", s.Leaderboards, b.Leaderboards != nil},
		{"cloud_save", s.CloudSave, b.CloudSave != nil},
		{"stats", s.Stats, b.Stats != nil},
		{"events", s.Events, b.Events != nil},
	} {
		if need.enabled && !need.present {
			return fmt.Errorf("%w: %s", ErrMissingBridge, need.name)
		}
	}

	m.dispatcher = dispatch.New(dispatch.Config{
		QueueSize: cfg.Dispatch.QueueSize,
		Logger:    opts.Logger,
		Observer:  opts.Metrics,
	})
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.dispatcher.Run(ctx, cfg.Dispatch.Tick)
	}()

	deps := Deps{
		Dispatcher: m.dispatcher,
		Logger:     opts.Logger,
		Metrics:    opts.Metrics,
		Timeout:    cfg.Bridge.Timeout,
	}
	if s.Auth {
		m.auth = NewAuthController(b.Auth, deps)
	}
	if s.Achievements {
		m.achievements = NewAchievementController(b.Achievements, AchievementConfig{Prefs: prefs}, deps)
	}
	if s.Leaderboards {
		m.leaderboards = NewLeaderboardController(b.Leaderboards, deps)
	}
	if s.CloudSave {
		m.cloudSave = NewCloudSaveController(b.CloudSave, CloudSaveConfig{
			ConflictTimeout: cfg.CloudSave.ConflictTimeout,
			RequireMetadata: cfg.CloudSave.RequireMetadata,
			Covers:          CoverOptions{HTTPClient: opts.HTTPClient},
		}, deps)
	}
	if s.Stats {
		m.stats = NewStatsController(b.Stats, deps)
	}
	if s.Events {
		m.events = NewEventController(b.Events, cfg.Events.FlushInterval, deps)
	}
	return nil
}

// Platform returns the platform the providers were built for.
func (m *Manager) Platform() Platform { return m.platform }

// Config returns the active configuration.
func (m *Manager) Config() *config.Config { return m.cfg.Load() }

// Auth returns the auth provider, or nil when disabled.
func (m *Manager) Auth() provider.Auth { return m.auth }

// Achievements returns the achievements provider, or nil when disabled.
func (m *Manager) Achievements() provider.Achievements { return m.achievements }

// Leaderboards returns the leaderboards provider, or nil when disabled.
func (m *Manager) Leaderboards() provider.Leaderboards { return m.leaderboards }

// CloudSave returns the cloud save provider, or nil when disabled.
func (m *Manager) CloudSave() provider.CloudSave { return m.cloudSave }

// Stats returns the stats provider, or nil when disabled.
func (m *Manager) Stats() provider.Stats { return m.stats }

// Events returns the events provider, or nil when disabled.
func (m *Manager) Events() provider.Events { return m.events }

// Services lists the enabled services.
func (m *Manager) Services() []string {
	var names []string
	for _, s := range []struct {
		name string
		on   bool
	}{
		{"auth", m.auth != nil},
		{"achievements", m.achievements != nil},
		{"leaderboards", m.leaderboards != nil},
		{"cloud_save", m.cloudSave != nil},
		{"stats", m.stats != nil},
		{"events", m.events != nil},
	} {
		if s.on {
			names = append(names, s.name)
		}
	}
	return names
}

// Apply takes the reloadable settings of cfg: the log level and the
// conflict timeout. Service toggles need a new Manager.
func (m *Manager) Apply(cfg *config.Config) {
	if cfg == nil {
		return
	}
	old := m.cfg.Swap(cfg)
	if cfg.Log.Level != old.Log.Level {
		logger.SetLevel(cfg.Log.Level)
	}
	if c, ok := m.cloudSave.(*CloudSaveController); ok && cfg.CloudSave.ConflictTimeout != old.CloudSave.ConflictTimeout {
		c.Resolver().SetTimeout(cfg.CloudSave.ConflictTimeout)
	}
	m.log.Info("configuration applied",
		"log_level", cfg.Log.Level,
		"conflict_timeout", cfg.CloudSave.ConflictTimeout,
	)
}

// SidekickTier reports the Sidekick readiness tier of the active
// configuration.
func (m *Manager) SidekickTier() config.SidekickTier {
	return config.EvaluateSidekick(m.Config())
}

// Readiness is a Sidekick readiness report.
type Readiness struct {
	Tier     string                 `json:"tier" yaml:"tier"`
	Platform string                 `json:"platform" yaml:"platform"`
	Services []string               `json:"services" yaml:"services"`
	Checks   []config.SidekickCheck `json:"checks" yaml:"checks"`

	// AchievementCount is the number of achievements the provider
	// reports, or -1 when they could not be loaded.
	AchievementCount int      `json:"achievement_count" yaml:"achievement_count"`
	Warnings         []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Readiness evaluates the configuration and checks it against the live
// achievement catalog.
func (m *Manager) Readiness(ctx context.Context) *Readiness {
	cfg := m.Config()
	r := &Readiness{
		Tier:             config.EvaluateSidekick(cfg).String(),
		Platform:         string(m.platform),
		Services:         m.Services(),
		Checks:           config.SidekickChecks(cfg),
		AchievementCount: -1,
	}
	if m.achievements == nil {
		return r
	}

	list, err := m.achievements.Load(ctx, false)
	if err != nil {
		r.Warnings = append(r.Warnings, "achievements could not be loaded: "+err.Error())
		return r
	}
	r.AchievementCount = len(list)
	if expected := cfg.Quality.ExpectedAchievementCount; len(list) < expected {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("found %d achievements, expected %d", len(list), expected))
	}
	return r
}

// Close flushes buffered events, closes every provider and stops the
// dispatcher. Callbacks already queued still run.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		var errs []error
		if m.events != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			if err := m.events.Flush(ctx); err != nil && !errors.Is(err, domain.ErrClosed) {
				m.log.Warn("failed to flush events on close", "error", err)
			}
			cancel()
		}
		for _, p := range []interface{ Close() error }{
			m.events, m.cloudSave, m.achievements, m.leaderboards, m.stats, m.auth,
		} {
			if p == nil {
				continue
			}
			if err := p.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		if m.dispatcher != nil {
			m.dispatcher.Close()
			m.cancel()
			m.wg.Wait()
		}
		if m.ownedEngine != nil {
			if err := m.ownedEngine.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		m.closeErr = errors.Join(errs...)
		m.log.Info("games services closed")
	})
	return m.closeErr
}
