package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/gamesvc-go/internal/telemetry/logger"
)

func newTestBadger(t *testing.T) *BadgerEngine {
	t.Helper()
	cfg := DefaultKVConfig(t.TempDir())
	cfg.Badger.GCInterval = "1h"
	cfg.Badger.SyncWrites = false

	engine, err := NewBadgerEngine(cfg, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestBadgerEngine_BasicOperations(t *testing.T) {
	engine := newTestBadger(t)
	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		if err := engine.Set(ctx, []byte("k"), []byte("v")); err != nil {
			t.Fatal(err)
		}
		got, err := engine.Get(ctx, []byte("k"))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "v" {
			t.Errorf("expected v, got %s", got)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		if _, err := engine.Get(ctx, []byte("missing")); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		engine.Set(ctx, []byte("gone"), []byte("x"))
		if err := engine.Delete(ctx, []byte("gone")); err != nil {
			t.Fatal(err)
		}
		if _, err := engine.Get(ctx, []byte("gone")); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
		}
	})
}

func TestBadgerEngine_Scan(t *testing.T) {
	engine := newTestBadger(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		engine.Set(ctx, []byte(fmt.Sprintf("snap/slot%d", i)), []byte{byte(i)})
	}
	engine.Set(ctx, []byte("prefs/x"), []byte("1"))

	var keys []string
	err := engine.Scan(ctx, []byte("snap/"), func(k, _ []byte) bool {
		keys = append(keys, string(k))
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 5 || keys[0] != "snap/slot0" {
		t.Errorf("Scan keys = %v", keys)
	}

	count := 0
	engine.Scan(ctx, []byte("snap/"), func(_, _ []byte) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("Scan should stop early, visited %d", count)
	}
}

func TestBadgerEngine_Persistence(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultKVConfig(dir)
	cfg.Badger.GCInterval = "1h"
	ctx := context.Background()

	e1, err := NewBadgerEngine(cfg, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	e1.Set(ctx, []byte("prefs/ach"), []byte("1"))
	if err := e1.Close(); err != nil {
		t.Fatal(err)
	}

	e2, err := NewBadgerEngine(cfg, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer e2.Close()

	got, err := e2.Get(ctx, []byte("prefs/ach"))
	if err != nil || string(got) != "1" {
		t.Errorf("after reopen Get() = %q, %v", got, err)
	}
}

func TestBadgerEngine_GCAndStats(t *testing.T) {
	engine := newTestBadger(t)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		engine.Set(ctx, []byte(fmt.Sprintf("k%03d", i)), make([]byte, 128))
	}
	if _, err := engine.GC(ctx); err != nil {
		t.Fatalf("GC() error = %v", err)
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.LastGCTime == 0 {
		t.Error("LastGCTime should be set after GC")
	}
}

func TestBadgerEngine_Closed(t *testing.T) {
	cfg := DefaultKVConfig("")
	cfg.Badger.InMemory = true
	engine, err := NewBadgerEngine(cfg, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	engine.RegisterMetrics(prometheus.NewRegistry())

	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}
	if err := engine.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if err := engine.Set(context.Background(), []byte("k"), nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after Close = %v, want ErrClosed", err)
	}
}

func TestNewBadgerEngine_RequiresDir(t *testing.T) {
	if _, err := NewBadgerEngine(KVConfig{}, logger.Nop()); err == nil {
		t.Error("expected error without dir")
	}
}
