// Package domain defines the core domain models for gamesvc.
//
// Domain models are pure value objects without any IO dependencies or
// vendor coupling. This package contains:
//
//   - Snapshot: cloud save handles, commit metadata and conflicts
//   - Achievement: achievement state and progress
//   - Leaderboard: score entries and query scopes
//   - Player: signed-in player and server-side access responses
//   - Stats: player engagement statistics
//   - Event: game event counters
//   - Errors: local and vendor error definitions
package domain
