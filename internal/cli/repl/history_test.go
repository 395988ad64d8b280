package repl

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestHistory_AddAndGet(t *testing.T) {
	h := NewHistory("", 3)
	for _, line := range []string{"a", "b", "b", "c", "d"} {
		h.Add(line)
	}

	if got := h.Entries(); !reflect.DeepEqual(got, []string{"b", "c", "d"}) {
		t.Errorf("Entries() = %q", got)
	}
	tests := []struct {
		index int
		want  string
	}{
		{0, "d"},
		{2, "b"},
		{3, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := h.Get(tt.index); got != tt.want {
			t.Errorf("Get(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestHistory_DefaultSize(t *testing.T) {
	if h := NewHistory("", 0); h.maxSize != DefaultHistorySize {
		t.Errorf("maxSize = %d", h.maxSize)
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "history")
	h := NewHistory(file, 0)
	h.Add("save slot1 --data x")
	h.Add("load slot1")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("history file mode = %o", perm)
	}

	loaded := NewHistory(file, 0)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded.Entries(), h.Entries()) {
		t.Errorf("loaded = %q, want %q", loaded.Entries(), h.Entries())
	}
}

func TestHistory_MissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "none"), 0)
	if err := h.Load(); err != nil {
		t.Errorf("Load() of a missing file error = %v", err)
	}
	if err := NewHistory("", 0).Save(); err != nil {
		t.Errorf("Save() without a file error = %v", err)
	}
}
