// Package service implements the games services over the vendor bridge.
//
// Each controller turns fire-and-forget bridge calls into blocking calls:
//
//   - CloudSaveController: saved game transactions and conflict resolution
//   - AchievementController: unlock, increment, reveal and load
//   - LeaderboardController: score submission and paging
//   - AuthController: sign-in and server-side access
//   - StatsController: player engagement statistics
//   - EventController: batched event counters
//
// A call installs a pending completion, invokes the bridge and waits. Bridge
// callbacks are marshaled through the Manager's dispatcher and settle the
// completion there. One call per operation kind (or per key, for
// achievements and score submission) is outstanding at a time; a newer call
// cancels the older one.
//
// Manager builds the enabled controllers, or mocks, from configuration and
// owns their lifetime.
package service
