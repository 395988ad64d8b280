// Package cmap provides a concurrent map for gamesvc.
//
// Keys are spread over a power-of-two number of shards by a murmur3
// hash of their string form; each shard is guarded by its own RWMutex.
//
// Usage:
//
//	m := cmap.New[string, *Completion](cmap.WithShardCount(8))
//	old, replaced := m.Swap("ach_first_win", c)
//	val, ok := m.Get("ach_first_win")
//
// All operations are safe for concurrent use. Range and the bulk helpers
// lock shard by shard, so their view is not a consistent snapshot.
package cmap
