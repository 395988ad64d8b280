package mock

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/yndnr/gamesvc-go/internal/config"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/observer"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
)

// CoverURIPrefix prefixes the cover image URI of every mock snapshot.
const CoverURIPrefix = "mock://covers/"

type snapshot struct {
	meta  domain.SnapshotHandle
	data  []byte
	cover []byte
}

// CloudSave is the mock saved games provider. Snapshots live in memory and
// never conflict.
type CloudSave struct {
	core
	requireMetadata bool

	mu        sync.Mutex
	snapshots map[string]*snapshot
	handles   map[string]string // native handle -> filename

	onOpened    observer.List[func(*domain.SnapshotHandle)]
	onCommitted observer.List[func(string)]
	onConflict  observer.List[func(*domain.SavedGameConflict)]
	onError     observer.List[func(*domain.Error)]
}

var _ provider.CloudSave = (*CloudSave)(nil)

// NewCloudSave creates the provider. requireMetadata logs a warning for
// commits without description, played time or cover image.
func NewCloudSave(settings config.MockSettings, requireMetadata bool, opts Options) *CloudSave {
	c := &CloudSave{
		requireMetadata: requireMetadata,
		snapshots:       make(map[string]*snapshot),
		handles:         make(map[string]string),
	}
	c.init(domain.SubsystemCloudSave, settings, opts)
	return c
}

func (c *CloudSave) fail(code int, message, filename string) *domain.Error {
	e := domain.NewError(domain.SubsystemCloudSave, code, message, filename)
	c.onError.Each(func(fn func(*domain.Error)) { fn(e) })
	return e
}

// OpenSnapshot opens filename, creating an empty snapshot when allowed.
func (c *CloudSave) OpenSnapshot(ctx context.Context, filename string, createIfNotFound bool) (*domain.SnapshotHandle, error) {
	if err := domain.ValidateSnapshotFilename(filename); err != nil {
		return nil, err
	}
	if err := c.wait(ctx, c.delay); err != nil {
		return nil, err
	}

	c.mu.Lock()
	snap, ok := c.snapshots[filename]
	if !ok {
		if !createIfNotFound {
			c.mu.Unlock()
			return nil, c.fail(domain.CodeNotFound, "Snapshot not found", filename)
		}
		snap = &snapshot{meta: domain.SnapshotHandle{
			Filename:              filename,
			LastModifiedTimestamp: c.nowMillis(),
		}}
		c.snapshots[filename] = snap
	}
	h := snap.meta
	h.NativeHandle = "mock:" + newID()
	c.handles[h.NativeHandle] = filename
	c.mu.Unlock()

	c.onOpened.Each(func(fn func(*domain.SnapshotHandle)) { fn(&h) })
	return &h, nil
}

// take resolves and invalidates nativeHandle.
func (c *CloudSave) take(h *domain.SnapshotHandle) (*snapshot, error) {
	if h == nil || h.NativeHandle == "" {
		return nil, domain.ErrMissingArgument.WithDetails("snapshot handle is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	filename, ok := c.handles[h.NativeHandle]
	if !ok {
		return nil, domain.NewError(domain.SubsystemCloudSave, domain.CodeNotFound, "Snapshot handle not found", h.Filename)
	}
	delete(c.handles, h.NativeHandle)
	snap, ok := c.snapshots[filename]
	if !ok {
		return nil, domain.NewError(domain.SubsystemCloudSave, domain.CodeNotFound, "Snapshot not found", filename)
	}
	return snap, nil
}

// ReadSnapshot returns the snapshot's data and closes the handle.
func (c *CloudSave) ReadSnapshot(ctx context.Context, h *domain.SnapshotHandle) ([]byte, error) {
	if err := c.wait(ctx, c.delay); err != nil {
		return nil, err
	}
	snap, err := c.take(h)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return bytes.Clone(snap.data), nil
}

// CommitSnapshot stores data and meta and closes the handle.
func (c *CloudSave) CommitSnapshot(ctx context.Context, h *domain.SnapshotHandle, data []byte, meta domain.SaveGameMetadata) error {
	if err := domain.ValidatePayload(data); err != nil {
		return err
	}
	warnings, err := meta.Validate(c.requireMetadata)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		c.log.Warn("snapshot metadata", "filename", h.Filename, "warning", w)
	}
	if err := c.wait(ctx, c.delay); err != nil {
		return err
	}
	snap, err := c.take(h)
	if err != nil {
		return err
	}

	c.mu.Lock()
	snap.data = bytes.Clone(data)
	snap.meta.Description = meta.Description
	snap.meta.PlayedTimeMillis = meta.PlayedTimeMillis
	snap.meta.LastModifiedTimestamp = c.nowMillis()
	if len(meta.CoverImage) > 0 {
		snap.cover = bytes.Clone(meta.CoverImage)
		snap.meta.CoverImageURI = CoverURIPrefix + snap.meta.Filename
	}
	filename := snap.meta.Filename
	c.mu.Unlock()

	c.log.Info("mock snapshot committed", "filename", filename, "bytes", len(data))
	c.onCommitted.Each(func(fn func(string)) { fn(filename) })
	return nil
}

// DeleteSnapshot removes filename. Deleting a missing snapshot succeeds.
func (c *CloudSave) DeleteSnapshot(ctx context.Context, filename string) error {
	if err := domain.ValidateSnapshotFilename(filename); err != nil {
		return err
	}
	if err := c.wait(ctx, c.delay); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.snapshots, filename)
	for handle, name := range c.handles {
		if name == filename {
			delete(c.handles, handle)
		}
	}
	c.mu.Unlock()
	c.log.Info("mock snapshot deleted", "filename", filename)
	return nil
}

// ShowSavedGamesUI simulates the player dismissing the UI and returns "".
func (c *CloudSave) ShowSavedGamesUI(ctx context.Context, title string, _, _ bool, _ int) (string, error) {
	if err := c.wait(ctx, c.delay); err != nil {
		return "", err
	}
	c.log.Info("mock saved games UI shown", "title", title)
	return "", nil
}

// Save opens filename, creating it if needed, and commits data.
func (c *CloudSave) Save(ctx context.Context, filename string, data []byte, meta domain.SaveGameMetadata) error {
	h, err := c.OpenSnapshot(ctx, filename, true)
	if err != nil {
		return err
	}
	return c.CommitSnapshot(ctx, h, data, meta)
}

// Load reads filename. A missing snapshot returns nil data.
func (c *CloudSave) Load(ctx context.Context, filename string) ([]byte, error) {
	h, err := c.OpenSnapshot(ctx, filename, false)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return c.ReadSnapshot(ctx, h)
}

// ResolveSnapshotConflict returns h; mock snapshots never conflict.
func (c *CloudSave) ResolveSnapshotConflict(_ context.Context, h *domain.SnapshotHandle) (*domain.SnapshotHandle, error) {
	if h == nil {
		return nil, domain.ErrMissingArgument.WithDetails("snapshot handle is required")
	}
	return h, nil
}

// ResolveConflict always fails with ErrNoConflict.
func (c *CloudSave) ResolveConflict(context.Context, domain.ConflictResolution) error {
	return domain.ErrNoConflict
}

// DownloadCoverImage returns the cover stored with a mock snapshot.
func (c *CloudSave) DownloadCoverImage(ctx context.Context, uri string) ([]byte, error) {
	filename, ok := strings.CutPrefix(uri, CoverURIPrefix)
	if !ok {
		return nil, domain.ErrInvalidArgument.WithDetails("not a mock cover image uri: " + uri)
	}
	if err := c.wait(ctx, c.delay); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.snapshots[filename]
	if !ok || snap.cover == nil {
		return nil, domain.NewError(domain.SubsystemCloudSave, domain.CodeNotFound, "Cover image not found", uri)
	}
	return bytes.Clone(snap.cover), nil
}

// ReleaseCoverImage is a no-op; mock covers are not cached.
func (c *CloudSave) ReleaseCoverImage(string) {}

// ReleaseAllCoverImages is a no-op.
func (c *CloudSave) ReleaseAllCoverImages() {}

// OnSnapshotOpened registers fn for every opened snapshot.
func (c *CloudSave) OnSnapshotOpened(fn func(*domain.SnapshotHandle)) { c.onOpened.Add(fn) }

// OnSnapshotCommitted registers fn for every commit.
func (c *CloudSave) OnSnapshotCommitted(fn func(string)) { c.onCommitted.Add(fn) }

// OnConflictDetected registers fn for conflicts. The mock never reports any.
func (c *CloudSave) OnConflictDetected(fn func(*domain.SavedGameConflict)) { c.onConflict.Add(fn) }

// OnError registers fn for every reported error.
func (c *CloudSave) OnError(fn func(*domain.Error)) { c.onError.Add(fn) }
