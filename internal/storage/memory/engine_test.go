package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/yndnr/gamesvc-go/internal/storage"
)

func TestEngine_GetSetDelete(t *testing.T) {
	e := New()
	ctx := context.Background()

	val := []byte("v1")
	e.Set(ctx, []byte("k"), val)
	val[0] = 'X'

	got, err := e.Get(ctx, []byte("k"))
	if err != nil || string(got) != "v1" {
		t.Fatalf("Get() = %q, %v (stored value must be a copy)", got, err)
	}

	e.Delete(ctx, []byte("k"))
	if _, err := e.Get(ctx, []byte("k")); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Errorf("Get after delete = %v", err)
	}
}

func TestEngine_ScanOrdered(t *testing.T) {
	e := New()
	ctx := context.Background()
	for _, k := range []string{"s/c", "s/a", "s/b", "t/a"} {
		e.Set(ctx, []byte(k), []byte(k))
	}

	var keys []string
	e.Scan(ctx, []byte("s/"), func(k, _ []byte) bool {
		keys = append(keys, string(k))
		return true
	})
	want := []string{"s/a", "s/b", "s/c"}
	if len(keys) != len(want) {
		t.Fatalf("Scan() = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Scan() = %v, want %v", keys, want)
		}
	}

	stats, _ := e.Stats(ctx)
	if stats.TotalKeys != 4 {
		t.Errorf("TotalKeys = %d", stats.TotalKeys)
	}
}

func TestEngine_Close(t *testing.T) {
	e := New()
	e.Close()
	if err := e.Set(context.Background(), []byte("k"), nil); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Set after Close = %v", err)
	}
}
