// Package command defines the gamesvc CLI.
//
// Commands drive a service.Manager against the simulated bridge, persisted
// in a Badger data directory, or against the in-process mocks:
//
//   - root.go: application, global flags and output helpers
//   - env.go: configuration, storage, platform and Manager wiring
//   - saves.go: save, load, delete, info, cover and simulated conflicts
//   - achievements.go, leaderboard.go, stats.go, events.go, auth.go
//   - readiness.go: Sidekick readiness report
//   - config.go: show, validate and migrate configuration files
//   - shell.go: interactive mode sharing one Manager across commands
package command
