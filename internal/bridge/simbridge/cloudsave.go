package simbridge

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/yndnr/gamesvc-go/internal/bridge"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/storage"
)

// snapshotRecord is the stored form of a save slot.
type snapshotRecord struct {
	Meta domain.SnapshotHandle `json:"meta"`
	Data []byte                `json:"data"`
}

// openConflict is a conflict reported by Open and not yet resolved.
type openConflict struct {
	filename string
	server   snapshotRecord
}

type cloudSaveAPI struct {
	p  *Platform
	cb holder[bridge.CloudSaveCallback]
}

var _ bridge.CloudSave = (*cloudSaveAPI)(nil)

func (c *cloudSaveAPI) SetCallback(cb bridge.CloudSaveCallback) {
	c.cb.set(cb)
}

func (c *cloudSaveAPI) fail(filename string) func(code int, msg string) {
	return func(code int, msg string) {
		c.cb.with(func(cb bridge.CloudSaveCallback) { cb.OnCloudSaveError(code, msg, filename) })
	}
}

// InjectConflict makes the next Open of filename report a conflict between
// the stored slot and a server version holding data, modified at the given
// Unix milliseconds.
func (p *Platform) InjectConflict(filename string, data []byte, modifiedMillis int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.injected[filename] = snapshotRecord{
		Meta: domain.SnapshotHandle{
			Filename:              filename,
			LastModifiedTimestamp: modifiedMillis,
			Description:           "server version",
		},
		Data: data,
	}
}

func (p *Platform) loadSnapshot(ctx context.Context, filename string) (*snapshotRecord, error) {
	var rec snapshotRecord
	found, err := p.getJSON(ctx, keySnapshots+filename, &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

func (p *Platform) issueHandle(filename string) string {
	h := newHandle()
	p.mu.Lock()
	p.handles[h] = filename
	p.mu.Unlock()
	return h
}

// handleFilename returns the slot an open handle refers to.
func (p *Platform) handleFilename(handle string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	name, ok := p.handles[handle]
	return name, ok
}

func (c *cloudSaveAPI) Open(filename string, create bool) {
	fail := c.fail(filename)
	c.p.submit(OpOpenSnapshot, func(ctx context.Context) {
		rec, err := c.p.loadSnapshot(ctx, filename)
		if err != nil {
			fail(domain.CodeInternalError, err.Error())
			return
		}
		if rec == nil {
			if !create {
				fail(domain.CodeNotFound, "Snapshot not found")
				return
			}
			rec = &snapshotRecord{Meta: domain.SnapshotHandle{
				Filename:              filename,
				LastModifiedTimestamp: c.p.nowMillis(),
			}}
			if err := c.p.putJSON(ctx, keySnapshots+filename, rec); err != nil {
				fail(domain.CodeInternalError, err.Error())
				return
			}
		}

		local := rec.Meta
		local.NativeHandle = c.p.issueHandle(filename)

		c.p.mu.Lock()
		server, conflicted := c.p.injected[filename]
		if conflicted {
			delete(c.p.injected, filename)
			c.p.conflicts[local.NativeHandle] = openConflict{filename: filename, server: server}
		}
		c.p.mu.Unlock()

		if !conflicted {
			doc := bridge.EncodeSnapshot(&local)
			c.cb.with(func(cb bridge.CloudSaveCallback) { cb.OnSnapshotOpened(filename, doc, false) })
			return
		}

		local.HasConflict = true
		remote := server.Meta
		remote.NativeHandle = newHandle()
		remote.HasConflict = true
		localDoc, remoteDoc := bridge.EncodeSnapshot(&local), bridge.EncodeSnapshot(&remote)
		c.cb.with(func(cb bridge.CloudSaveCallback) {
			cb.OnConflictDetected(localDoc, remoteDoc, rec.Data, server.Data)
			cb.OnSnapshotOpened(filename, localDoc, true)
		})
	}, fail)
}

func (c *cloudSaveAPI) Read(handle string) {
	filename, _ := c.p.handleFilename(handle)
	fail := c.fail(filename)
	c.p.submit(OpReadSnapshot, func(ctx context.Context) {
		if filename == "" {
			fail(domain.CodeNotFound, "Snapshot handle is not open")
			return
		}
		rec, err := c.p.loadSnapshot(ctx, filename)
		if err != nil {
			fail(domain.CodeInternalError, err.Error())
			return
		}
		if rec == nil {
			fail(domain.CodeNotFound, "Snapshot not found")
			return
		}
		c.cb.with(func(cb bridge.CloudSaveCallback) { cb.OnSnapshotRead(filename, rec.Data) })
	}, fail)
}

func (c *cloudSaveAPI) Commit(handle string, data []byte, description string, playedTimeMillis int64, cover []byte) {
	filename, _ := c.p.handleFilename(handle)
	fail := c.fail(filename)
	c.p.submit(OpCommitSnapshot, func(ctx context.Context) {
		if filename == "" {
			fail(domain.CodeNotFound, "Snapshot handle is not open")
			return
		}
		if len(data) > domain.MaxPayloadSize {
			fail(domain.CodeDataTooLarge, "Snapshot data exceeds the size limit")
			return
		}
		if len(cover) > domain.CoverImageHardLimit {
			fail(domain.CodeDataTooLarge, "Cover image exceeds the size limit")
			return
		}

		c.p.mu.Lock()
		_, conflicted := c.p.conflicts[handle]
		c.p.mu.Unlock()
		if conflicted {
			fail(domain.CodeConflictTimeout, "Snapshot has an unresolved conflict")
			return
		}

		rec := snapshotRecord{
			Meta: domain.SnapshotHandle{
				Filename:              filename,
				LastModifiedTimestamp: c.p.nowMillis(),
				PlayedTimeMillis:      playedTimeMillis,
				Description:           description,
			},
			Data: data,
		}
		if prev, err := c.p.loadSnapshot(ctx, filename); err == nil && prev != nil {
			rec.Meta.CoverImageURI = prev.Meta.CoverImageURI
		}
		if len(cover) > 0 {
			if err := c.p.engine.Set(ctx, []byte(keyCovers+filename), cover); err != nil {
				fail(domain.CodeInternalError, err.Error())
				return
			}
			rec.Meta.CoverImageURI = c.p.coverBaseURL + filename
		}
		if err := c.p.putJSON(ctx, keySnapshots+filename, rec); err != nil {
			fail(domain.CodeInternalError, err.Error())
			return
		}

		c.p.mu.Lock()
		delete(c.p.handles, handle)
		c.p.mu.Unlock()

		c.cb.with(func(cb bridge.CloudSaveCallback) { cb.OnSnapshotCommitted(filename) })
	}, fail)
}

func (c *cloudSaveAPI) Delete(filename string) {
	fail := c.fail(filename)
	c.p.submit(OpDeleteSnapshot, func(ctx context.Context) {
		rec, err := c.p.loadSnapshot(ctx, filename)
		if err != nil {
			fail(domain.CodeInternalError, err.Error())
			return
		}
		if rec == nil {
			fail(domain.CodeNotFound, "Snapshot not found")
			return
		}
		if err := c.p.engine.Delete(ctx, []byte(keySnapshots+filename)); err != nil {
			fail(domain.CodeInternalError, err.Error())
			return
		}
		if err := c.p.engine.Delete(ctx, []byte(keyCovers+filename)); err != nil {
			c.p.logger.Warn("failed to delete cover image", "filename", filename, "error", err)
		}

		c.p.mu.Lock()
		for h, name := range c.p.handles {
			if name == filename {
				delete(c.p.handles, h)
				delete(c.p.conflicts, h)
			}
		}
		c.p.mu.Unlock()

		c.cb.with(func(cb bridge.CloudSaveCallback) { cb.OnSnapshotDeleted(filename) })
	}, fail)
}

// ShowSavedGamesUI selects the most recently modified slot. An empty
// selection means the player backed out.
func (c *cloudSaveAPI) ShowSavedGamesUI(_ string, _, _ bool, maxSnapshots int) {
	c.p.submit(OpShowSavedGamesUI, func(ctx context.Context) {
		recs, err := scanJSON[snapshotRecord](ctx, c.p.engine, keySnapshots)
		if err != nil {
			c.fail("")(domain.CodeInternalError, err.Error())
			return
		}
		if maxSnapshots > 0 && len(recs) > maxSnapshots {
			recs = recs[:maxSnapshots]
		}
		var selected string
		var newest int64 = -1
		for _, r := range recs {
			if r.Meta.LastModifiedTimestamp > newest {
				selected, newest = r.Meta.Filename, r.Meta.LastModifiedTimestamp
			}
		}
		c.cb.with(func(cb bridge.CloudSaveCallback) { cb.OnSavedGamesUIResult(selected) })
	}, c.fail(""))
}

func (c *cloudSaveAPI) ResolveConflict(conflictHandle, resolution string) {
	c.p.mu.Lock()
	oc, ok := c.p.conflicts[conflictHandle]
	c.p.mu.Unlock()
	fail := c.fail(oc.filename)

	c.p.submit(OpResolveConflict, func(ctx context.Context) {
		if !ok {
			fail(domain.CodeNotFound, "No conflict for snapshot handle")
			return
		}
		res, err := domain.ParseConflictResolution(resolution)
		if err != nil {
			fail(domain.CodeInternalError, err.Error())
			return
		}

		rec, err := c.p.loadSnapshot(ctx, oc.filename)
		if err != nil || rec == nil {
			fail(domain.CodeInternalError, "Snapshot vanished during conflict resolution")
			return
		}
		if res.Effective() == domain.ResolutionUseServer {
			rec.Data = oc.server.Data
			rec.Meta.LastModifiedTimestamp = oc.server.Meta.LastModifiedTimestamp
			rec.Meta.Description = oc.server.Meta.Description
			if err := c.p.putJSON(ctx, keySnapshots+oc.filename, rec); err != nil {
				fail(domain.CodeInternalError, err.Error())
				return
			}
		}

		c.p.mu.Lock()
		delete(c.p.conflicts, conflictHandle)
		delete(c.p.handles, conflictHandle)
		c.p.mu.Unlock()

		meta := rec.Meta
		meta.NativeHandle = c.p.issueHandle(oc.filename)
		doc := bridge.EncodeSnapshot(&meta)
		c.cb.with(func(cb bridge.CloudSaveCallback) { cb.OnSnapshotOpened(oc.filename, doc, false) })
	}, fail)
}

// CoverHandler serves stored cover images at <base>/<filename>, for a
// server mounted at the cover base URL.
func (p *Platform) CoverHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		filename := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		img, err := p.engine.Get(r.Context(), []byte(keyCovers+filename))
		if errors.Is(err, storage.ErrKeyNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(img)
	})
}
