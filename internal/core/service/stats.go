package service

import (
	"context"

	"github.com/yndnr/gamesvc-go/internal/bridge"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/observer"
	"github.com/yndnr/gamesvc-go/internal/core/pending"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
)

// StatsController loads player stats over the bridge.
type StatsController struct {
	base
	api  bridge.Stats
	load *pending.Slot[*domain.PlayerStats]

	onLoaded observer.List[func(*domain.PlayerStats)]
	onError  observer.List[func(*domain.Error)]
}

var _ provider.Stats = (*StatsController)(nil)

// NewStatsController creates the controller and registers its bridge
// callback.
func NewStatsController(api bridge.Stats, deps Deps) *StatsController {
	c := &StatsController{api: api}
	c.init(domain.SubsystemStats, deps)
	c.load = pending.NewSlot[*domain.PlayerStats]("load_stats", c.pendingOpts()...)
	api.SetCallback(&statsCallbacks{c: c})
	return c
}

// LoadPlayerStats loads the player's stats.
func (c *StatsController) LoadPlayerStats(ctx context.Context, forceReload bool) (stats *domain.PlayerStats, err error) {
	defer c.track("load_stats")(&err)

	if err := c.begin(ctx); err != nil {
		return nil, err
	}
	comp := c.load.Replace()
	c.api.LoadPlayerStats(forceReload)
	return await(ctx, &c.base, comp, c.timeout)
}

// OnStatsLoaded registers fn for every loaded stats document.
func (c *StatsController) OnStatsLoaded(fn func(*domain.PlayerStats)) {
	c.onLoaded.Add(fn)
}

// OnError registers fn for every error the bridge reports.
func (c *StatsController) OnError(fn func(*domain.Error)) {
	c.onError.Add(fn)
}

// Close cancels the pending load.
func (c *StatsController) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.load.Reject(domain.ErrCanceled)
	}
	return nil
}

type statsCallbacks struct {
	c *StatsController
}

func (p *statsCallbacks) OnStatsLoaded(doc string) {
	p.c.post("stats_loaded", func() {
		stats, err := bridge.DecodeStats(doc)
		if err != nil {
			p.c.log.Error("undecodable stats", "error", err)
			p.c.load.Reject(err)
			return
		}
		p.c.onLoaded.Each(func(fn func(*domain.PlayerStats)) { fn(stats) })
		p.c.load.Resolve(stats)
	})
}

func (p *statsCallbacks) OnStatsError(code int, message string) {
	p.c.post("stats_error", func() {
		e := p.c.vendorError(code, message, "")
		p.c.onError.Each(func(fn func(*domain.Error)) { fn(e) })
		p.c.load.Reject(e)
	})
}
