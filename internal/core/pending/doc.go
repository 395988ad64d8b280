// Package pending tracks bridge calls that are waiting for a callback.
//
// A Completion is a single-assignment result. A Slot keeps one outstanding
// completion per operation kind and a Table keeps one per key (achievement
// id, leaderboard id). Issuing a new call cancels the stale completion rather
// than queueing behind it, and CancelAll on close leaves nothing unsettled.
package pending
