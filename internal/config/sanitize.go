package config

import "github.com/yndnr/gamesvc-go/internal/telemetry/logger"

// Sanitize returns a copy of the config with personal data masked.
func Sanitize(cfg *Config) *Config {
	sanitized := *cfg
	if sanitized.Mock.Email != "" {
		sanitized.Mock.Email = logger.RedactString(sanitized.Mock.Email)
	}
	return &sanitized
}
