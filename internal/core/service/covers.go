package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/infra/buildinfo"
)

// CoverOptions configures cover image downloads.
type CoverOptions struct {
	// HTTPClient performs downloads. Nil uses a client with the bridge
	// timeout.
	HTTPClient *http.Client
}

// coverCache holds downloaded cover images by URI. Concurrent downloads of
// one URI share a single request.
type coverCache struct {
	client  *http.Client
	timeout time.Duration
	group   singleflight.Group

	mu    sync.Mutex
	items map[string][]byte
}

func newCoverCache(opts CoverOptions, timeout time.Duration) *coverCache {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &coverCache{
		client:  client,
		timeout: timeout,
		items:   make(map[string][]byte),
	}
}

func (cc *coverCache) get(uri string) ([]byte, bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	img, ok := cc.items[uri]
	return img, ok
}

func (cc *coverCache) put(uri string, img []byte) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.items[uri] = img
}

func (cc *coverCache) release(uri string) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	delete(cc.items, uri)
}

func (cc *coverCache) releaseAll() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	clear(cc.items)
}

// fetch downloads uri. It runs detached from any one caller's context so a
// canceled caller does not fail the others sharing the download.
func (cc *coverCache) fetch(ctx context.Context, uri string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cc.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, domain.ErrInvalidArgument.WithDetails("cover image uri").WithCause(err)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := cc.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrTimeout.WithDetails("cover image download").WithCause(err)
		}
		return nil, domain.NewError(domain.SubsystemCloudSave, domain.CodeNetworkError, err.Error(), uri)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.NewError(domain.SubsystemCloudSave, domain.CodeNotFound, "Cover image not found", uri)
	case resp.StatusCode != http.StatusOK:
		return nil, domain.NewError(domain.SubsystemCloudSave, domain.CodeNetworkError,
			fmt.Sprintf("cover image download failed with status %d", resp.StatusCode), uri)
	}

	img, err := io.ReadAll(io.LimitReader(resp.Body, domain.CoverImageHardLimit+1))
	if err != nil {
		return nil, domain.NewError(domain.SubsystemCloudSave, domain.CodeNetworkError, err.Error(), uri)
	}
	if len(img) > domain.CoverImageHardLimit {
		return nil, domain.ErrDataTooLarge.WithDetails("cover image exceeds the download limit")
	}
	return img, nil
}

// DownloadCoverImage returns the cover image at uri, from cache when it was
// downloaded before. The returned slice is the caller's to modify.
func (c *CloudSaveController) DownloadCoverImage(ctx context.Context, uri string) (img []byte, err error) {
	defer c.track("download_cover")(&err)

	if uri == "" {
		return nil, domain.ErrMissingArgument.WithDetails("cover image uri is required")
	}
	if u, err := url.Parse(uri); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, domain.ErrInvalidArgument.WithDetails("cover image uri must be http or https: " + uri)
	}
	if err := c.begin(ctx); err != nil {
		return nil, err
	}
	if cached, ok := c.covers.get(uri); ok {
		return bytes.Clone(cached), nil
	}

	ch := c.covers.group.DoChan(uri, func() (any, error) {
		img, err := c.covers.fetch(ctx, uri)
		if err != nil {
			return nil, err
		}
		c.covers.put(uri, img)
		c.log.Debug("cover image cached", "uri", uri, "bytes", len(img))
		return img, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return bytes.Clone(res.Val.([]byte)), nil
	case <-ctx.Done():
		return nil, domain.ErrCanceled.WithCause(ctx.Err())
	}
}

// ReleaseCoverImage drops the cached image for uri.
func (c *CloudSaveController) ReleaseCoverImage(uri string) {
	c.covers.release(uri)
}

// ReleaseAllCoverImages drops every cached image.
func (c *CloudSaveController) ReleaseAllCoverImages() {
	c.covers.releaseAll()
}
