// Package main provides the entry point for gamesvc.
//
// The CLI exercises every games service against a simulated vendor
// bridge persisted in a data directory, or against the in-process mocks:
//
//   - Cloud saves (save, load, delete, simulated conflicts)
//   - Achievements, leaderboards, player stats and events
//   - Sign-in and server-side access
//   - Sidekick readiness and configuration tooling
//
// Usage:
//
//	gamesvc [global flags] command [flags] [args]
//	gamesvc save --data "level=3" --description "Level 3" slot1
//	gamesvc -o json achievements list
//	gamesvc --platform mock shell
package main
