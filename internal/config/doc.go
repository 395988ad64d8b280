// Package config defines the gamesvc configuration structure.
//
//   - spec.go: Config struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation
//   - migrate.go: Upgrade of legacy version 1 (mock-only) documents
//   - sidekick.go: Sidekick readiness evaluation
//   - reload.go: Hot reload of the mutable settings
//
// Configuration is loaded via internal/infra/confloader from a YAML file,
// GAMESVC_ environment variables and command line overrides.
package config
