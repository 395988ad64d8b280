package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/gamesvc-go/internal/config"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/storage/memory"
	"github.com/yndnr/gamesvc-go/internal/telemetry/logger"
	"github.com/yndnr/gamesvc-go/internal/telemetry/metric"
)

func allServices() *config.Config {
	cfg := config.Default()
	cfg.Services.Events = true
	return cfg
}

func TestManager_Mock(t *testing.T) {
	cfg := allServices()
	m, err := NewManager(cfg, Options{
		Platform:  PlatformMock,
		Logger:    logger.Nop(),
		MockDelay: -1,
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(func() { m.Close() })
	ctx := testContext(t)

	if got := len(m.Services()); got != 6 {
		t.Fatalf("Services() = %v", m.Services())
	}

	player, err := m.Auth().Authenticate(ctx)
	if err != nil || player.ID != cfg.Mock.PlayerID {
		t.Fatalf("Authenticate() = %+v, %v", player, err)
	}

	if err := m.CloudSave().Save(ctx, "slot1", []byte("progress"), fullMetadata()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := m.CloudSave().Load(ctx, "slot1")
	if err != nil || string(data) != "progress" {
		t.Errorf("Load() = %q, %v", data, err)
	}

	if err := m.Events().Increment(ctx, "event_trade", 2); err != nil {
		t.Fatal(err)
	}

	r := m.Readiness(ctx)
	if r.Platform != "mock" || r.Tier != config.SidekickNone.String() {
		t.Errorf("readiness = %+v", r)
	}
	if r.AchievementCount <= 0 || r.AchievementCount >= cfg.Quality.ExpectedAchievementCount {
		t.Fatalf("AchievementCount = %d", r.AchievementCount)
	}
	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], "expected 10") {
		t.Errorf("Warnings = %v", r.Warnings)
	}

	if err := m.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := m.CloudSave().Load(ctx, "slot1"); !errors.Is(err, domain.ErrClosed) {
		t.Errorf("Load() after Close error = %v", err)
	}
}

func TestManager_Bridge(t *testing.T) {
	h := newHarness(t)
	cfg := allServices()
	cfg.Sidekick.Ready = true
	cfg.Dispatch.Tick = 5 * time.Millisecond

	m, err := NewManager(cfg, Options{
		Platform: PlatformBridge,
		Bridges: Bridges{
			Auth:         h.p.Auth(),
			Achievements: h.p.Achievements(),
			Leaderboards: h.p.Leaderboards(),
			CloudSave:    h.p.CloudSave(),
			Stats:        h.p.Stats(),
			Events:       h.p.Events(),
		},
		Engine:  memory.New(),
		Logger:  logger.Nop(),
		Metrics: metric.New(),
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(func() { m.Close() })
	ctx := testContext(t)

	if m.SidekickTier() != config.SidekickTier2 {
		t.Errorf("SidekickTier() = %v", m.SidekickTier())
	}
	if _, ok := m.CloudSave().(*CloudSaveController); !ok {
		t.Fatalf("CloudSave() = %T", m.CloudSave())
	}

	if err := m.Achievements().Unlock(ctx, "achievement_first_trade"); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if err := m.CloudSave().Save(ctx, "slot1", []byte("v1"), fullMetadata()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	next := allServices()
	next.CloudSave.ConflictTimeout = 3 * time.Second
	next.Log.Level = cfg.Log.Level
	m.Apply(next)
	if got := m.CloudSave().(*CloudSaveController).Resolver().Timeout(); got != 3*time.Second {
		t.Errorf("conflict timeout after Apply = %v", got)
	}
	if m.Config() != next {
		t.Error("Config() does not return the applied configuration")
	}

	r := m.Readiness(ctx)
	if r.AchievementCount != 5 || len(r.Checks) == 0 {
		t.Errorf("readiness = %+v", r)
	}
}

func TestManager_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := NewManager(allServices(), Options{
		Platform: PlatformBridge,
		Bridges:  Bridges{Auth: h.p.Auth()},
		Logger:   logger.Nop(),
	})
	if !errors.Is(err, ErrMissingBridge) {
		t.Errorf("missing bridges error = %v", err)
	}

	if _, err := NewManager(nil, Options{Platform: "console", Logger: logger.Nop()}); err == nil {
		t.Error("unknown platform accepted")
	}

	bad := config.Default()
	bad.Dispatch.QueueSize = -1
	if _, err := NewManager(bad, Options{Platform: PlatformMock, Logger: logger.Nop()}); err == nil {
		t.Error("invalid configuration accepted")
	}

	cfg := config.Default()
	cfg.Services = config.ServicesSection{}
	m, err := NewManager(cfg, Options{Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("NewManager() with nothing enabled error = %v", err)
	}
	if m.Auth() != nil || m.CloudSave() != nil || len(m.Services()) != 0 {
		t.Error("disabled services were built")
	}
	if err := m.Close(); err != nil {
		t.Error(err)
	}
}
