package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/yndnr/gamesvc-go/internal/telemetry/logger"
)

func TestHandler_ReverseOrder(t *testing.T) {
	h := NewHandler(time.Second, logger.Nop())

	var mu sync.Mutex
	var order []string
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}
	h.OnShutdown("storage", record("storage"))
	h.OnShutdown("manager", record("manager"))
	h.OnClose("metrics", func() error { return record("metrics")(nil) })

	if err := h.Shutdown(); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}

	want := []string{"metrics", "manager", "storage"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done should be closed after Shutdown")
	}
}

func TestHandler_HookErrors(t *testing.T) {
	h := NewHandler(time.Second, logger.Nop())
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	ran := 0
	h.OnShutdown("a", func(context.Context) error { ran++; return errA })
	h.OnShutdown("ok", func(context.Context) error { ran++; return nil })
	h.OnShutdown("b", func(context.Context) error { ran++; return errB })

	err := h.Shutdown()
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Shutdown() = %v, want both hook errors", err)
	}
	if ran != 3 {
		t.Errorf("ran %d hooks, want 3", ran)
	}

	if again := h.Shutdown(); again != err || ran != 3 {
		t.Error("second Shutdown should not rerun hooks")
	}
}

func TestHandler_DeadlinePassedToHooks(t *testing.T) {
	h := NewHandler(50*time.Millisecond, logger.Nop())
	h.OnShutdown("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if err := h.Shutdown(); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() = %v, want deadline exceeded", err)
	}
}

func TestHandler_WaitOnContext(t *testing.T) {
	h := NewHandler(time.Second, logger.Nop())
	called := make(chan struct{})
	h.OnShutdown("x", func(context.Context) error { close(called); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return")
	}
	<-called
}

func TestWithSignals(t *testing.T) {
	ctx, stop := WithSignals(context.Background())
	defer stop()

	syscall.Kill(syscall.Getpid(), syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not canceled by SIGTERM")
	}
}
