package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/yndnr/gamesvc-go/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version %d (want %d)", cfg.Version, CurrentVersion)
	}
	if cfg.Quality.ExpectedAchievementCount < 0 {
		return errors.New("quality.expected_achievement_count must not be negative")
	}
	if cfg.Bridge.Timeout <= 0 {
		return errors.New("bridge.timeout must be positive")
	}
	if cfg.Bridge.Latency < 0 {
		return errors.New("bridge.latency must not be negative")
	}
	if cfg.Events.FlushInterval <= 0 {
		return errors.New("events.flush_interval must be positive")
	}
	if err := verifyDispatch(&cfg.Dispatch); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyMock(&cfg.Mock); err != nil {
		return err
	}
	if !logger.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level %q is invalid", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return fmt.Errorf("log.format %q is invalid", cfg.Log.Format)
	}
	return nil
}

func verifyDispatch(cfg *DispatchSection) error {
	if cfg.QueueSize < 1 {
		return errors.New("dispatch.queue_size must be at least 1")
	}
	if cfg.Tick < 0 {
		return errors.New("dispatch.tick must not be negative")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Engine {
	case EngineMemory:
		return nil
	case EngineBadger:
		if cfg.Dir == "" {
			return errors.New("storage.dir is required for the badger engine")
		}
		return nil
	default:
		return fmt.Errorf("storage.engine %q is invalid", cfg.Engine)
	}
}

const maxAuthDelay = 5 * time.Second

func verifyMock(cfg *MockSettings) error {
	if !validAuthErrorType(cfg.AuthErrorType) {
		return fmt.Errorf("mock.auth_error_type %q is invalid", cfg.AuthErrorType)
	}
	if cfg.AuthDelay < 0 || cfg.AuthDelay > maxAuthDelay {
		return errors.New("mock.auth_delay must be between 0s and 5s")
	}
	if cfg.ChurnProbability < 0 || cfg.ChurnProbability > 1 {
		return errors.New("mock.churn_probability must be between 0 and 1")
	}
	if cfg.UnlockedCount < 0 {
		return errors.New("mock.unlocked_count must not be negative")
	}
	return nil
}
