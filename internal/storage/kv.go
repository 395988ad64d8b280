// Package storage provides embedded key-value storage for gamesvc.
//
// The KVEngine interface backs two things: the local preferences store
// (unlocked achievement markers) and the simulated vendor bridge used by
// the CLI and tests. BadgerEngine persists to disk; storage/memory keeps
// everything in process.
package storage

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("kv engine closed")
)

// Engine names accepted by KVConfig.Engine.
const (
	EngineBadger = "badger"
	EngineMemory = "memory"
)

// KVEngine defines the interface for embedded key-value storage.
//
// Implementations must be safe for concurrent use.
type KVEngine interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound if key doesn't exist.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores a key-value pair.
	Set(ctx context.Context, key, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Scan iterates over keys with a given prefix in key order.
	// Callback returns false to stop iteration.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error

	// GC reclaims space where the engine supports it. Returns bytes reclaimed.
	GC(ctx context.Context) (uint64, error)

	// Stats returns storage statistics.
	Stats(ctx context.Context) (*KVStats, error)

	// Close gracefully shuts down the engine.
	Close() error
}

// KVStats contains storage engine statistics.
type KVStats struct {
	// TotalKeys is the approximate number of keys.
	TotalKeys uint64

	// TotalSize is the total size in bytes.
	TotalSize uint64

	// LSMSize is the LSM tree size (Badger only).
	LSMSize uint64

	// ValueLogSize is the value log size (Badger only).
	ValueLogSize uint64

	// LastGCTime is the last GC run timestamp (Unix milliseconds).
	LastGCTime int64

	// GCBytesReclaimed is the total bytes reclaimed by GC.
	GCBytesReclaimed uint64
}

// KVConfig configures an embedded KV engine.
type KVConfig struct {
	// Engine is "badger" or "memory". Default: "badger".
	Engine string

	// Dir is the storage directory (Badger only).
	Dir string

	Badger BadgerConfig
}

// BadgerConfig contains Badger tuning parameters.
type BadgerConfig struct {
	// GCInterval is the interval between automatic GC runs. Default: 10m.
	GCInterval string

	// GCThreshold is the value log discard ratio (0.0-1.0). Default: 0.5.
	GCThreshold float64

	// CacheSize is the block cache size in bytes. Default: 16MB.
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes. Default: 64MB.
	ValueLogFileSize int64

	// NumMemtables is the number of memtables. Default: 2.
	NumMemtables int

	// SyncWrites fsyncs after each write. Default: true.
	SyncWrites bool

	// InMemory runs Badger without touching disk. Used by tests.
	InMemory bool
}

// DefaultKVConfig returns the default KV configuration.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{
		Engine: EngineBadger,
		Dir:    dir,
		Badger: DefaultBadgerConfig(),
	}
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:       "10m",
		GCThreshold:      0.5,
		CacheSize:        16 << 20,
		ValueLogFileSize: 64 << 20,
		NumMemtables:     2,
		SyncWrites:       true,
	}
}
