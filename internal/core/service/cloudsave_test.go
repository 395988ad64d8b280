package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yndnr/gamesvc-go/internal/bridge"
	"github.com/yndnr/gamesvc-go/internal/bridge/simbridge"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
)

// countingCloudSave counts the commits that reach the bridge.
type countingCloudSave struct {
	bridge.CloudSave
	commits atomic.Int32
}

func (c *countingCloudSave) Commit(handle string, data []byte, description string, playedTimeMillis int64, cover []byte) {
	c.commits.Add(1)
	c.CloudSave.Commit(handle, data, description, playedTimeMillis, cover)
}

func newCloudSave(t *testing.T, h *harness, cfg CloudSaveConfig) *CloudSaveController {
	t.Helper()
	c := NewCloudSaveController(h.p.CloudSave(), cfg, h.deps)
	t.Cleanup(func() { c.Close() })
	return c
}

func fullMetadata() domain.SaveGameMetadata {
	return domain.SaveGameMetadata{
		Description:      "desc",
		PlayedTimeMillis: 1000,
		CoverImage:       []byte("img"),
	}
}

func TestCloudSave_OpenMissing(t *testing.T) {
	h := newHarness(t)
	c := newCloudSave(t, h, CloudSaveConfig{})
	ctx := testContext(t)

	_, err := c.OpenSnapshot(ctx, "absent", false)
	if !domain.IsNotFound(err) {
		t.Fatalf("OpenSnapshot(absent, false) error = %v, want NotFound", err)
	}

	data, err := c.Load(ctx, "absent")
	if err != nil {
		t.Fatalf("Load(absent) error = %v", err)
	}
	if data != nil {
		t.Errorf("Load(absent) = %q, want nil", data)
	}
}

func TestCloudSave_CommitAndLoad(t *testing.T) {
	h := newHarness(t)
	c := newCloudSave(t, h, CloudSaveConfig{RequireMetadata: true})
	ctx := testContext(t)

	var committed []string
	c.OnSnapshotCommitted(func(name string) { committed = append(committed, name) })

	handle, err := c.OpenSnapshot(ctx, "slot1", true)
	if err != nil {
		t.Fatalf("OpenSnapshot() error = %v", err)
	}
	if handle.HasConflict {
		t.Fatal("fresh slot reported a conflict")
	}
	if handle.NativeHandle == "" {
		t.Fatal("handle has no native handle")
	}

	payload := []byte{0x01, 0x02, 0x03}
	if err := c.CommitSnapshot(ctx, handle, payload, fullMetadata()); err != nil {
		t.Fatalf("CommitSnapshot() error = %v", err)
	}

	got, err := c.Load(ctx, "slot1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Load() = %v, want %v", got, payload)
	}
	if len(committed) != 1 || committed[0] != "slot1" {
		t.Errorf("committed observers = %v", committed)
	}

	if err := c.Save(ctx, "slot1", []byte("second"), fullMetadata()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got, _ := c.Load(ctx, "slot1"); string(got) != "second" {
		t.Errorf("Load() after Save = %q", got)
	}

	if err := c.DeleteSnapshot(ctx, "slot1"); err != nil {
		t.Fatalf("DeleteSnapshot() error = %v", err)
	}
	if got, err := c.Load(ctx, "slot1"); err != nil || got != nil {
		t.Errorf("Load() after delete = %q, %v", got, err)
	}
}

func TestCloudSave_CoverImageLimits(t *testing.T) {
	h := newHarness(t)
	api := &countingCloudSave{CloudSave: h.p.CloudSave()}
	c := NewCloudSaveController(api, CloudSaveConfig{}, h.deps)
	t.Cleanup(func() { c.Close() })
	ctx := testContext(t)

	handle, err := c.OpenSnapshot(ctx, "slot1", true)
	if err != nil {
		t.Fatal(err)
	}

	meta := fullMetadata()
	meta.CoverImage = make([]byte, domain.CoverImageHardLimit+1)
	err = c.CommitSnapshot(ctx, handle, []byte("data"), meta)
	if !errors.Is(err, domain.ErrDataTooLarge) {
		t.Fatalf("oversize cover error = %v, want DataTooLarge", err)
	}
	if n := api.commits.Load(); n != 0 {
		t.Fatalf("oversize cover reached the bridge %d times", n)
	}

	meta.CoverImage = make([]byte, domain.CoverImageSoftLimit)
	if err := c.CommitSnapshot(ctx, handle, []byte("data"), meta); err != nil {
		t.Fatalf("512KB cover error = %v", err)
	}
	if n := api.commits.Load(); n != 1 {
		t.Errorf("commits = %d, want 1", n)
	}
	if !h.log.contains("save metadata warning", "cover image is 512KB") {
		t.Error("512KB cover did not warn")
	}

	err = c.Save(ctx, "slot2", make([]byte, domain.MaxPayloadSize+1), fullMetadata())
	if !errors.Is(err, domain.ErrDataTooLarge) {
		t.Errorf("oversize payload error = %v, want DataTooLarge", err)
	}
}

func TestCloudSave_ConflictTimeout(t *testing.T) {
	local := fixedNow.UnixMilli()
	tests := []struct {
		name       string
		serverTime int64
		want       string
	}{
		{"server newer", local + 1000, "server"},
		{"local newer", local - 1000, "local"},
		{"equal picks server", local, "server"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			const timeout = 50 * time.Millisecond
			c := newCloudSave(t, h, CloudSaveConfig{ConflictTimeout: timeout})
			ctx := testContext(t)

			if err := c.Save(ctx, "slot1", []byte("local"), fullMetadata()); err != nil {
				t.Fatal(err)
			}
			h.p.InjectConflict("slot1", []byte("server"), tt.serverTime)

			var detected atomic.Int32
			c.OnConflictDetected(func(*domain.SavedGameConflict) { detected.Add(1) })

			start := time.Now()
			got, err := c.Load(ctx, "slot1")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if elapsed := time.Since(start); elapsed < timeout {
				t.Errorf("resolved after %v, before the %v timeout", elapsed, timeout)
			}
			if string(got) != tt.want {
				t.Errorf("Load() = %q, want %q", got, tt.want)
			}
			if detected.Load() != 1 {
				t.Errorf("conflict observers ran %d times", detected.Load())
			}
			if s := c.Resolver().State(); s != ResolverResolved {
				t.Errorf("resolver state = %v", s)
			}
			if c.PendingConflict() != nil {
				t.Error("conflict still pending after resolution")
			}
		})
	}
}

func TestCloudSave_CallerResolvesConflict(t *testing.T) {
	h := newHarness(t)
	c := newCloudSave(t, h, CloudSaveConfig{ConflictTimeout: time.Minute})
	ctx := testContext(t)

	if err := c.Save(ctx, "slot1", []byte("local"), fullMetadata()); err != nil {
		t.Fatal(err)
	}
	// The server side is newer, so only the caller's choice keeps local.
	h.p.InjectConflict("slot1", []byte("server"), fixedNow.UnixMilli()+1000)

	c.OnConflictDetected(func(conflict *domain.SavedGameConflict) {
		go func() {
			if err := c.ResolveConflict(ctx, domain.ResolutionUseLocal); err != nil {
				t.Errorf("ResolveConflict() error = %v", err)
			}
		}()
	})

	got, err := c.Load(ctx, "slot1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != "local" {
		t.Errorf("Load() = %q, want local", got)
	}
	if err := c.ResolveConflict(ctx, domain.ResolutionUseServer); !errors.Is(err, domain.ErrNoConflict) {
		t.Errorf("ResolveConflict() without conflict error = %v", err)
	}
}

func TestCloudSave_ImmediateResolution(t *testing.T) {
	h := newHarness(t)
	c := newCloudSave(t, h, CloudSaveConfig{})
	ctx := testContext(t)

	if err := c.Save(ctx, "slot1", []byte("local"), fullMetadata()); err != nil {
		t.Fatal(err)
	}
	h.p.InjectConflict("slot1", []byte("server"), fixedNow.UnixMilli()-1)

	handle, err := c.OpenSnapshot(ctx, "slot1", false)
	if err != nil {
		t.Fatal(err)
	}
	if !handle.HasConflict {
		t.Fatal("open did not report the injected conflict")
	}
	if err := c.CommitSnapshot(ctx, handle, []byte("x"), fullMetadata()); err == nil {
		t.Fatal("commit on a conflicted handle succeeded")
	}

	resolved, err := c.ResolveSnapshotConflict(ctx, handle)
	if err != nil {
		t.Fatalf("ResolveSnapshotConflict() error = %v", err)
	}
	if resolved.HasConflict {
		t.Fatal("resolved handle still has a conflict")
	}
	data, err := c.ReadSnapshot(ctx, resolved)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "local" {
		t.Errorf("ReadSnapshot() = %q, want local", data)
	}
}

func TestCloudSave_BridgeTimeout(t *testing.T) {
	h := newHarness(t)
	h.deps.Timeout = 30 * time.Millisecond
	c := newCloudSave(t, h, CloudSaveConfig{})

	h.p.DropNext(simbridge.OpOpenSnapshot)
	_, err := c.OpenSnapshot(testContext(t), "slot1", true)
	if !domain.IsTimeout(err) {
		t.Fatalf("OpenSnapshot() error = %v, want Timeout", err)
	}
	if c.open.Pending() {
		t.Error("timed out completion still pending")
	}
}

func TestCloudSave_VendorError(t *testing.T) {
	h := newHarness(t)
	c := newCloudSave(t, h, CloudSaveConfig{})

	var reported []*domain.Error
	c.OnError(func(e *domain.Error) { reported = append(reported, e) })

	h.p.FailNext(simbridge.OpOpenSnapshot, domain.CodeNetworkError, "offline")
	_, err := c.OpenSnapshot(testContext(t), "slot1", true)
	ve, ok := domain.AsError(err)
	if !ok || ve.Kind() != domain.KindNetworkError {
		t.Fatalf("OpenSnapshot() error = %v, want NetworkError", err)
	}
	if !ve.Retryable() {
		t.Error("network error should be retryable")
	}
	if len(reported) != 1 || reported[0].Subsystem != domain.SubsystemCloudSave {
		t.Errorf("error observers = %v", reported)
	}
}

func TestCloudSave_CloseCancelsPending(t *testing.T) {
	h := newHarness(t)
	c := NewCloudSaveController(h.p.CloudSave(), CloudSaveConfig{}, h.deps)
	ctx := testContext(t)

	h.p.DropNext(simbridge.OpOpenSnapshot)
	h.p.DropNext(simbridge.OpDeleteSnapshot)

	errs := make(chan error, 2)
	go func() {
		_, err := c.OpenSnapshot(ctx, "slot1", true)
		errs <- err
	}()
	go func() {
		errs <- c.DeleteSnapshot(ctx, "slot2")
	}()
	eventually(t, "both calls pending", func() bool { return c.open.Pending() && c.del.Pending() })

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := <-errs; !domain.IsCanceled(err) {
			t.Errorf("pending call error = %v, want Canceled", err)
		}
	}

	if _, err := c.OpenSnapshot(ctx, "slot1", true); !errors.Is(err, domain.ErrClosed) {
		t.Errorf("OpenSnapshot() after Close error = %v, want ErrClosed", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestCloudSave_CallerCancel(t *testing.T) {
	h := newHarness(t)
	c := newCloudSave(t, h, CloudSaveConfig{})

	h.p.DropNext(simbridge.OpReadSnapshot)
	handle, err := c.OpenSnapshot(testContext(t), "slot1", true)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	if _, err := c.ReadSnapshot(ctx, handle); !domain.IsCanceled(err) {
		t.Fatalf("ReadSnapshot() error = %v, want Canceled", err)
	}
}

func TestCloudSave_DownloadCoverImage(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	var covers atomic.Value // http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		covers.Load().(http.Handler).ServeHTTP(w, r)
	}))
	defer srv.Close()

	h := newHarness(t, simbridge.WithCoverBaseURL(srv.URL+"/covers/"))
	covers.Store(h.p.CoverHandler())
	c := newCloudSave(t, h, CloudSaveConfig{Covers: CoverOptions{HTTPClient: srv.Client()}})
	ctx := testContext(t)

	cover := []byte("\x89PNG cover bytes")
	meta := fullMetadata()
	meta.CoverImage = cover
	if err := c.Save(ctx, "slot1", []byte("data"), meta); err != nil {
		t.Fatal(err)
	}
	handle, err := c.OpenSnapshot(ctx, "slot1", false)
	if err != nil {
		t.Fatal(err)
	}
	uri := handle.CoverImageURI
	if uri != srv.URL+"/covers/slot1" {
		t.Fatalf("CoverImageURI = %q", uri)
	}

	const callers = 4
	var wg sync.WaitGroup
	results := make([][]byte, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := c.DownloadCoverImage(ctx, uri)
			if err != nil {
				t.Errorf("DownloadCoverImage() error = %v", err)
			}
			results[i] = img
		}()
	}
	eventually(t, "download started", func() bool { return hits.Load() == 1 })
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, img := range results {
		if !bytes.Equal(img, cover) {
			t.Errorf("caller %d got %q", i, img)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}

	// Served from cache, then fetched again after release.
	if _, err := c.DownloadCoverImage(ctx, uri); err != nil || hits.Load() != 1 {
		t.Errorf("cached download: err = %v, hits = %d", err, hits.Load())
	}
	c.ReleaseCoverImage(uri)
	if _, err := c.DownloadCoverImage(ctx, uri); err != nil || hits.Load() != 2 {
		t.Errorf("download after release: err = %v, hits = %d", err, hits.Load())
	}

	_, err = c.DownloadCoverImage(ctx, srv.URL+"/covers/missing")
	if !domain.IsNotFound(err) {
		t.Errorf("missing cover error = %v, want NotFound", err)
	}
	if _, err := c.DownloadCoverImage(ctx, "mock://covers/slot1"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("non-http uri error = %v", err)
	}
}
