package service

import (
	"context"
	"sync"
	"time"

	"github.com/yndnr/gamesvc-go/internal/bridge"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/observer"
	"github.com/yndnr/gamesvc-go/internal/core/pending"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
)

// maxConflictRounds bounds how often one open may report a conflict again
// after a resolution.
const maxConflictRounds = 3

// CloudSaveConfig configures a CloudSaveController.
type CloudSaveConfig struct {
	ConflictTimeout time.Duration
	RequireMetadata bool
	Covers          CoverOptions
}

// CloudSaveController mediates saved game transactions over the bridge.
type CloudSaveController struct {
	base
	api             bridge.CloudSave
	requireMetadata bool
	resolver        *ConflictResolver
	covers          *coverCache

	open   *pending.Slot[*domain.SnapshotHandle]
	read   *pending.Slot[[]byte]
	commit *pending.Slot[string]
	del    *pending.Slot[string]
	ui     *pending.Slot[string]

	mu       sync.Mutex
	conflict *domain.SavedGameConflict

	onOpened    observer.List[func(*domain.SnapshotHandle)]
	onCommitted observer.List[func(string)]
	onConflict  observer.List[func(*domain.SavedGameConflict)]
	onError     observer.List[func(*domain.Error)]
}

var _ provider.CloudSave = (*CloudSaveController)(nil)

// NewCloudSaveController creates the controller and registers its bridge
// callback.
func NewCloudSaveController(api bridge.CloudSave, cfg CloudSaveConfig, deps Deps) *CloudSaveController {
	c := &CloudSaveController{
		api:             api,
		requireMetadata: cfg.RequireMetadata,
	}
	c.init(domain.SubsystemCloudSave, deps)
	c.resolver = NewConflictResolver(cfg.ConflictTimeout, c.log)
	c.covers = newCoverCache(cfg.Covers, c.timeout)

	opts := c.pendingOpts()
	c.open = pending.NewSlot[*domain.SnapshotHandle]("open", opts...)
	c.read = pending.NewSlot[[]byte]("read", opts...)
	c.commit = pending.NewSlot[string]("commit", opts...)
	c.del = pending.NewSlot[string]("delete", opts...)
	c.ui = pending.NewSlot[string]("show_ui", opts...)

	api.SetCallback(&cloudSaveCallbacks{c: c})
	return c
}

// Resolver returns the conflict resolver.
func (c *CloudSaveController) Resolver() *ConflictResolver {
	return c.resolver
}

// ============================================================================
// Snapshot transactions
// ============================================================================

// OpenSnapshot opens filename. A missing slot fails with NotFound unless
// createIfNotFound is set. A handle with HasConflict set must go through
// ResolveSnapshotConflict before it is read or committed.
func (c *CloudSaveController) OpenSnapshot(ctx context.Context, filename string, createIfNotFound bool) (h *domain.SnapshotHandle, err error) {
	defer c.track("open")(&err)
	return c.openSnapshot(ctx, filename, createIfNotFound)
}

func (c *CloudSaveController) openSnapshot(ctx context.Context, filename string, create bool) (*domain.SnapshotHandle, error) {
	if err := domain.ValidateSnapshotFilename(filename); err != nil {
		return nil, err
	}
	if err := c.begin(ctx); err != nil {
		return nil, err
	}

	comp := c.open.Replace()
	c.api.Open(filename, create)
	return await(ctx, &c.base, comp, c.timeout)
}

// ReadSnapshot reads the payload of an open snapshot.
func (c *CloudSaveController) ReadSnapshot(ctx context.Context, h *domain.SnapshotHandle) (data []byte, err error) {
	defer c.track("read")(&err)

	if err := checkHandle(h); err != nil {
		return nil, err
	}
	if err := c.begin(ctx); err != nil {
		return nil, err
	}

	comp := c.read.Replace()
	c.api.Read(h.NativeHandle)
	return await(ctx, &c.base, comp, c.timeout)
}

// CommitSnapshot writes data and meta to an open snapshot. Oversize payloads
// and cover images fail before reaching the bridge.
func (c *CloudSaveController) CommitSnapshot(ctx context.Context, h *domain.SnapshotHandle, data []byte, meta domain.SaveGameMetadata) (err error) {
	defer c.track("commit")(&err)

	if err := checkHandle(h); err != nil {
		return err
	}
	if err := c.validate(h.Filename, data, meta); err != nil {
		return err
	}
	return c.commitSnapshot(ctx, h, data, meta)
}

func (c *CloudSaveController) commitSnapshot(ctx context.Context, h *domain.SnapshotHandle, data []byte, meta domain.SaveGameMetadata) error {
	if h.HasConflict {
		return domain.ErrInvalidArgument.WithDetails("snapshot has an unresolved conflict")
	}
	if err := c.begin(ctx); err != nil {
		return err
	}

	comp := c.commit.Replace()
	c.api.Commit(h.NativeHandle, data, meta.Description, meta.PlayedTimeMillis, meta.CoverImage)
	_, err := await(ctx, &c.base, comp, c.timeout)
	return err
}

// validate applies the payload and metadata limits and logs metadata
// warnings.
func (c *CloudSaveController) validate(filename string, data []byte, meta domain.SaveGameMetadata) error {
	if err := domain.ValidatePayload(data); err != nil {
		return err
	}
	warnings, err := meta.Validate(c.requireMetadata)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		c.log.Warn("save metadata warning", "filename", filename, "warning", w)
	}
	return nil
}

// DeleteSnapshot deletes filename.
func (c *CloudSaveController) DeleteSnapshot(ctx context.Context, filename string) (err error) {
	defer c.track("delete")(&err)

	if err := domain.ValidateSnapshotFilename(filename); err != nil {
		return err
	}
	if err := c.begin(ctx); err != nil {
		return err
	}

	comp := c.del.Replace()
	c.api.Delete(filename)
	_, err = await(ctx, &c.base, comp, c.timeout)
	return err
}

// ShowSavedGamesUI shows the vendor's saved games picker and returns the
// selected filename, or "" if the player backed out. It waits without a
// bound, as the player may keep the UI open indefinitely.
func (c *CloudSaveController) ShowSavedGamesUI(ctx context.Context, title string, allowAdd, allowDelete bool, maxSnapshots int) (selected string, err error) {
	defer c.track("show_ui")(&err)

	if err := c.begin(ctx); err != nil {
		return "", err
	}
	comp := c.ui.Replace()
	c.api.ShowSavedGamesUI(title, allowAdd, allowDelete, maxSnapshots)
	return await(ctx, &c.base, comp, 0)
}

func checkHandle(h *domain.SnapshotHandle) error {
	if h == nil || h.NativeHandle == "" {
		return domain.ErrMissingArgument.WithDetails("snapshot handle is required")
	}
	return nil
}

// ============================================================================
// Save and load
// ============================================================================

// Save opens filename, creating it if needed, resolves any conflict and
// commits data.
func (c *CloudSaveController) Save(ctx context.Context, filename string, data []byte, meta domain.SaveGameMetadata) (err error) {
	defer c.track("save")(&err)

	// 1. Fail fast before the slot is opened
	if err := domain.ValidateSnapshotFilename(filename); err != nil {
		return err
	}
	if err := c.validate(filename, data, meta); err != nil {
		return err
	}

	// 2. Open, creating the slot
	h, err := c.openSnapshot(ctx, filename, true)
	if err != nil {
		return err
	}

	// 3. Settle a conflict reported by the open
	if h.HasConflict {
		if h, err = c.resolveSnapshotConflict(ctx, h); err != nil {
			return err
		}
	}

	// 4. Commit
	return c.commitSnapshot(ctx, h, data, meta)
}

// Load opens filename, resolves any conflict and reads it. A slot that does
// not exist yields nil data and no error.
func (c *CloudSaveController) Load(ctx context.Context, filename string) (data []byte, err error) {
	defer c.track("load")(&err)

	h, err := c.openSnapshot(ctx, filename, false)
	if domain.IsNotFound(err) {
		c.log.Debug("no saved game", "filename", filename)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if h.HasConflict {
		if h, err = c.resolveSnapshotConflict(ctx, h); err != nil {
			return nil, err
		}
	}

	comp := c.read.Replace()
	c.api.Read(h.NativeHandle)
	return await(ctx, &c.base, comp, c.timeout)
}

// ============================================================================
// Conflicts
// ============================================================================

// ResolveSnapshotConflict settles the conflict reported with h and returns
// the reopened handle. The decision comes from ResolveConflict, or from the
// snapshot timestamps once the conflict timeout passes or ctx ends. The
// vendor reopen runs to completion even when ctx has ended, after which the
// call reports the cancellation.
func (c *CloudSaveController) ResolveSnapshotConflict(ctx context.Context, h *domain.SnapshotHandle) (resolved *domain.SnapshotHandle, err error) {
	defer c.track("resolve_conflict")(&err)

	if err := checkHandle(h); err != nil {
		return nil, err
	}
	if !h.HasConflict {
		return h, nil
	}
	return c.resolveSnapshotConflict(ctx, h)
}

func (c *CloudSaveController) resolveSnapshotConflict(ctx context.Context, h *domain.SnapshotHandle) (*domain.SnapshotHandle, error) {
	for round := 0; round < maxConflictRounds; round++ {
		conflict := c.currentConflict(h)
		res, source := c.resolver.Decide(ctx, conflict)
		c.metrics.ObserveConflict(res.String(), source)
		c.clearConflict(conflict)

		if c.closed.Load() {
			return nil, domain.ErrClosed
		}
		comp := c.open.Replace()
		c.api.ResolveConflict(conflict.Local.NativeHandle, res.String())

		next, err := await(context.WithoutCancel(ctx), &c.base, comp, c.timeout)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, domain.ErrCanceled.WithCause(err)
		}
		if !next.HasConflict {
			return next, nil
		}
		h = next
	}
	return nil, domain.ErrCanceled.WithDetails("conflict reported again after resolution")
}

// currentConflict returns the conflict reported for h. An open that flagged
// a conflict without reporting one gets an undecided conflict with no
// server side, which resolves to the server by timestamp.
func (c *CloudSaveController) currentConflict(h *domain.SnapshotHandle) *domain.SavedGameConflict {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conflict != nil && c.conflict.Local.NativeHandle == h.NativeHandle {
		return c.conflict
	}
	c.log.Warn("open reported a conflict without details", "filename", h.Filename)
	c.conflict = domain.NewSavedGameConflict(*h, domain.SnapshotHandle{Filename: h.Filename}, nil, nil)
	return c.conflict
}

func (c *CloudSaveController) clearConflict(conflict *domain.SavedGameConflict) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conflict == conflict {
		c.conflict = nil
	}
}

// PendingConflict returns the conflict awaiting a decision, if any.
func (c *CloudSaveController) PendingConflict() *domain.SavedGameConflict {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conflict
}

// ResolveConflict decides the conflict awaiting a decision. It fails with
// ErrNoConflict if there is none or it was already decided.
func (c *CloudSaveController) ResolveConflict(ctx context.Context, r domain.ConflictResolution) error {
	if err := c.begin(ctx); err != nil {
		return err
	}
	conflict := c.PendingConflict()
	if conflict == nil {
		return domain.ErrNoConflict
	}
	if !conflict.Resolve(r) {
		return domain.ErrNoConflict.WithDetails("conflict already decided")
	}
	return nil
}

// ============================================================================
// Observers and lifecycle
// ============================================================================

// OnSnapshotOpened registers fn for every opened snapshot.
func (c *CloudSaveController) OnSnapshotOpened(fn func(*domain.SnapshotHandle)) {
	c.onOpened.Add(fn)
}

// OnSnapshotCommitted registers fn for every committed snapshot.
func (c *CloudSaveController) OnSnapshotCommitted(fn func(string)) {
	c.onCommitted.Add(fn)
}

// OnConflictDetected registers fn for every conflict. fn may decide it with
// conflict.Resolve or ResolveConflict.
func (c *CloudSaveController) OnConflictDetected(fn func(*domain.SavedGameConflict)) {
	c.onConflict.Add(fn)
}

// OnError registers fn for every error the bridge reports.
func (c *CloudSaveController) OnError(fn func(*domain.Error)) {
	c.onError.Add(fn)
}

// Close cancels every pending call, decides a waiting conflict by timestamp
// and drops cached cover images. Later calls fail with ErrClosed.
func (c *CloudSaveController) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if conflict := c.PendingConflict(); conflict != nil {
		conflict.Resolve(conflict.ResolveByTimestamp())
	}
	c.cancelAll(domain.ErrCanceled)
	c.covers.releaseAll()
	c.log.Debug("cloud save controller closed")
	return nil
}

func (c *CloudSaveController) cancelAll(err error) {
	c.open.Reject(err)
	c.read.Reject(err)
	c.commit.Reject(err)
	c.del.Reject(err)
	c.ui.Reject(err)
}

// cloudSaveCallbacks receives bridge callbacks and replays them through the
// dispatcher.
type cloudSaveCallbacks struct {
	c *CloudSaveController
}

func (p *cloudSaveCallbacks) OnSnapshotOpened(filename, snapshotJSON string, hasConflict bool) {
	p.c.post("snapshot_opened", func() {
		h, err := bridge.DecodeSnapshot(snapshotJSON)
		if err != nil {
			p.c.log.Error("undecodable snapshot", "filename", filename, "error", err)
			p.c.open.Reject(err)
			return
		}
		h.HasConflict = hasConflict
		if h.Filename == "" {
			h.Filename = filename
		}
		p.c.onOpened.Each(func(fn func(*domain.SnapshotHandle)) { fn(h) })
		p.c.open.Resolve(h)
	})
}

func (p *cloudSaveCallbacks) OnSnapshotRead(_ string, data []byte) {
	p.c.post("snapshot_read", func() {
		p.c.read.Resolve(data)
	})
}

func (p *cloudSaveCallbacks) OnSnapshotCommitted(filename string) {
	p.c.post("snapshot_committed", func() {
		p.c.onCommitted.Each(func(fn func(string)) { fn(filename) })
		p.c.commit.Resolve(filename)
	})
}

func (p *cloudSaveCallbacks) OnSnapshotDeleted(filename string) {
	p.c.post("snapshot_deleted", func() {
		p.c.del.Resolve(filename)
	})
}

func (p *cloudSaveCallbacks) OnSavedGamesUIResult(selected string) {
	p.c.post("saved_games_ui", func() {
		p.c.ui.Resolve(selected)
	})
}

func (p *cloudSaveCallbacks) OnConflictDetected(localJSON, serverJSON string, localData, serverData []byte) {
	p.c.post("conflict_detected", func() {
		local, err := bridge.DecodeSnapshot(localJSON)
		if err != nil {
			p.c.log.Error("undecodable local snapshot in conflict", "error", err)
			return
		}
		server, err := bridge.DecodeSnapshot(serverJSON)
		if err != nil {
			p.c.log.Error("undecodable server snapshot in conflict", "error", err)
			return
		}

		conflict := domain.NewSavedGameConflict(*local, *server, localData, serverData)
		p.c.mu.Lock()
		p.c.conflict = conflict
		p.c.mu.Unlock()
		p.c.resolver.Detected()

		p.c.log.Info("save conflict detected",
			"conflict_id", conflict.ID,
			"filename", conflict.Filename,
			"local_modified", local.LastModifiedTimestamp,
			"server_modified", server.LastModifiedTimestamp,
		)
		p.c.onConflict.Each(func(fn func(*domain.SavedGameConflict)) { fn(conflict) })
	})
}

func (p *cloudSaveCallbacks) OnCloudSaveError(code int, message, filename string) {
	p.c.post("cloud_save_error", func() {
		e := p.c.vendorError(code, message, filename)
		p.c.onError.Each(func(fn func(*domain.Error)) { fn(e) })
		p.c.cancelAll(e)
	})
}
