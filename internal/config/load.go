package config

import (
	"fmt"
	"os"

	"github.com/yndnr/gamesvc-go/internal/infra/confloader"
)

// Load reads the configuration file at path (optional), upgrading legacy
// documents, then applies GAMESVC_ environment variables and overrides
// keyed by dotted path. The result is verified.
func Load(path string, overrides map[string]any) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if cfg, err = Migrate(data); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	l := confloader.NewLoader(confloader.WithOverrides(overrides))
	if err := l.Load(cfg); err != nil {
		return nil, err
	}

	if err := Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
