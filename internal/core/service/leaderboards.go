package service

import (
	"context"

	"github.com/yndnr/gamesvc-go/internal/bridge"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/observer"
	"github.com/yndnr/gamesvc-go/internal/core/pending"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
)

// LeaderboardController submits and loads leaderboard scores over the
// bridge.
//
// Calls are keyed by leaderboard id: a second submit or load for the same
// board cancels the first. Top and player-centered loads share a key since
// the vendor reports both through the same callback.
type LeaderboardController struct {
	base
	api bridge.Leaderboards

	submit *pending.Table[string, int64]
	load   *pending.Table[string, []domain.LeaderboardEntry]
	ui     *pending.Slot[struct{}]

	onSubmitted observer.List[func(string, int64)]
	onLoaded    observer.List[func(string, []domain.LeaderboardEntry)]
	onError     observer.List[func(*domain.Error)]
}

var _ provider.Leaderboards = (*LeaderboardController)(nil)

// NewLeaderboardController creates the controller and registers its bridge
// callback.
func NewLeaderboardController(api bridge.Leaderboards, deps Deps) *LeaderboardController {
	c := &LeaderboardController{api: api}
	c.init(domain.SubsystemLeaderboards, deps)

	opts := c.pendingOpts()
	c.submit = pending.NewTable[string, int64]("submit_score", opts...)
	c.load = pending.NewTable[string, []domain.LeaderboardEntry]("load_scores", opts...)
	c.ui = pending.NewSlot[struct{}]("show_ui", opts...)

	api.SetCallback(&leaderboardCallbacks{c: c})
	return c
}

// SubmitScore submits score to leaderboardID with an optional tag.
func (c *LeaderboardController) SubmitScore(ctx context.Context, leaderboardID string, score int64, tag string) (err error) {
	defer c.track("submit_score")(&err)

	if leaderboardID == "" {
		return domain.ErrMissingArgument.WithDetails("leaderboard id is required")
	}
	if err := c.begin(ctx); err != nil {
		return err
	}

	comp := c.submit.Replace(leaderboardID)
	c.api.SubmitScore(leaderboardID, score, tag)
	_, err = await(ctx, &c.base, comp, c.timeout)
	return err
}

// LoadTopScores loads the top page of q's leaderboard.
func (c *LeaderboardController) LoadTopScores(ctx context.Context, q domain.LeaderboardQuery) (entries []domain.LeaderboardEntry, err error) {
	defer c.track("load_top_scores")(&err)
	return c.loadScores(ctx, q, c.api.LoadTopScores)
}

// LoadPlayerCenteredScores loads the page around the signed-in player.
func (c *LeaderboardController) LoadPlayerCenteredScores(ctx context.Context, q domain.LeaderboardQuery) (entries []domain.LeaderboardEntry, err error) {
	defer c.track("load_player_centered_scores")(&err)
	return c.loadScores(ctx, q, c.api.LoadPlayerCenteredScores)
}

func (c *LeaderboardController) loadScores(ctx context.Context, q domain.LeaderboardQuery, call func(string, int, int, int)) ([]domain.LeaderboardEntry, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	if err := c.begin(ctx); err != nil {
		return nil, err
	}

	comp := c.load.Replace(q.LeaderboardID)
	call(q.LeaderboardID, int(q.TimeSpan), int(q.Collection), q.MaxResults)
	return await(ctx, &c.base, comp, c.timeout)
}

// ShowUI shows one leaderboard and returns when the UI closes.
func (c *LeaderboardController) ShowUI(ctx context.Context, leaderboardID string) (err error) {
	defer c.track("show_ui")(&err)

	if leaderboardID == "" {
		return domain.ErrMissingArgument.WithDetails("leaderboard id is required")
	}
	return c.showUI(ctx, func() { c.api.ShowUI(leaderboardID) })
}

// ShowAllUI shows the list of leaderboards and returns when the UI closes.
func (c *LeaderboardController) ShowAllUI(ctx context.Context) (err error) {
	defer c.track("show_all_ui")(&err)
	return c.showUI(ctx, c.api.ShowAllUI)
}

func (c *LeaderboardController) showUI(ctx context.Context, show func()) error {
	if err := c.begin(ctx); err != nil {
		return err
	}
	comp := c.ui.Replace()
	show()
	_, err := await(ctx, &c.base, comp, 0)
	return err
}

// OnScoreSubmitted registers fn for every accepted score.
func (c *LeaderboardController) OnScoreSubmitted(fn func(string, int64)) {
	c.onSubmitted.Add(fn)
}

// OnScoresLoaded registers fn for every loaded page.
func (c *LeaderboardController) OnScoresLoaded(fn func(string, []domain.LeaderboardEntry)) {
	c.onLoaded.Add(fn)
}

// OnError registers fn for every error the bridge reports.
func (c *LeaderboardController) OnError(fn func(*domain.Error)) {
	c.onError.Add(fn)
}

// Close cancels every pending call.
func (c *LeaderboardController) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.rejectAll(domain.ErrCanceled)
	return nil
}

func (c *LeaderboardController) rejectAll(err error) {
	c.submit.RejectAll(err)
	c.load.RejectAll(err)
	c.ui.Reject(err)
}

type leaderboardCallbacks struct {
	c *LeaderboardController
}

func (p *leaderboardCallbacks) OnScoreSubmitted(id string, score int64) {
	p.c.post("score_submitted", func() {
		p.c.onSubmitted.Each(func(fn func(string, int64)) { fn(id, score) })
		p.c.submit.Resolve(id, score)
	})
}

func (p *leaderboardCallbacks) OnScoresLoaded(id, doc string) {
	p.c.post("scores_loaded", func() {
		entries, err := bridge.DecodeScores(doc)
		if err != nil {
			p.c.log.Error("undecodable score page", "leaderboard_id", id, "error", err)
			p.c.load.Reject(id, err)
			return
		}
		p.c.onLoaded.Each(func(fn func(string, []domain.LeaderboardEntry)) { fn(id, entries) })
		p.c.load.Resolve(id, entries)
	})
}

func (p *leaderboardCallbacks) OnLeaderboardUIClosed() {
	p.c.post("leaderboard_ui_closed", func() {
		p.c.ui.Resolve(struct{}{})
	})
}

func (p *leaderboardCallbacks) OnLeaderboardError(code int, message, id string) {
	p.c.post("leaderboard_error", func() {
		e := p.c.vendorError(code, message, id)
		p.c.onError.Each(func(fn func(*domain.Error)) { fn(e) })
		p.c.rejectAll(e)
	})
}
