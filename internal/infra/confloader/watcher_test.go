package confloader

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/yndnr/gamesvc-go/internal/telemetry/logger"
)

func TestWatcher_FileChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "gamesvc.yaml")
	os.WriteFile(path, []byte("log:\n  level: info\n"), 0644)

	w, err := NewWatcher(path, WithWatcherLogger(logger.Nop()), WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	changed := make(chan string, 4)
	w.OnChange(func(p string) {
		calls.Add(1)
		changed <- p
	})
	w.StartAsync()

	// Writes to other files in the directory are ignored.
	os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1"), 0644)
	os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644)

	select {
	case p := <-changed:
		if p != filepath.Clean(path) {
			t.Errorf("callback path = %q", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback not called")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	w.Wait()

	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestNewWatcher_MissingDir(t *testing.T) {
	if _, err := NewWatcher("/nonexistent/dir/gamesvc.yaml", WithWatcherLogger(logger.Nop())); err == nil {
		t.Error("expected error for missing directory")
	}
}
