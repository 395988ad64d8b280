package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/gamesvc-go/internal/bridge"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/observer"
	"github.com/yndnr/gamesvc-go/internal/core/pending"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
	"github.com/yndnr/gamesvc-go/internal/storage"
)

// DefaultAchievementCacheTTL is how long a loaded achievement list is served
// without asking the bridge again.
const DefaultAchievementCacheTTL = 24 * time.Hour

// unlockedPrefPrefix prefixes the local unlocked marker of each achievement.
const unlockedPrefPrefix = "achievement/"

// AchievementConfig configures an AchievementController.
type AchievementConfig struct {
	// Prefs stores unlocked markers. Nil disables them.
	Prefs *storage.Prefs

	// CacheTTL bounds the loaded list's lifetime. Zero means
	// DefaultAchievementCacheTTL.
	CacheTTL time.Duration

	// Now replaces time.Now.
	Now func() time.Time
}

type cachedAchievements struct {
	list     []domain.Achievement
	loadedAt time.Time
}

// AchievementController manages achievements over the bridge.
type AchievementController struct {
	base
	api   bridge.Achievements
	prefs *storage.Prefs
	ttl   time.Duration
	now   func() time.Time

	unlock    *pending.Table[string, struct{}]
	increment *pending.Table[string, int]
	reveal    *pending.Table[string, struct{}]
	load      *pending.Slot[[]domain.Achievement]
	ui        *pending.Slot[struct{}]

	mu    sync.Mutex
	cache *cachedAchievements

	onUnlocked    observer.List[func(string)]
	onIncremented observer.List[func(string, int)]
	onRevealed    observer.List[func(string)]
	onError       observer.List[func(*domain.Error)]
}

var _ provider.Achievements = (*AchievementController)(nil)

// NewAchievementController creates the controller and registers its bridge
// callback.
func NewAchievementController(api bridge.Achievements, cfg AchievementConfig, deps Deps) *AchievementController {
	c := &AchievementController{
		api:   api,
		prefs: cfg.Prefs,
		ttl:   cfg.CacheTTL,
		now:   cfg.Now,
	}
	if c.ttl <= 0 {
		c.ttl = DefaultAchievementCacheTTL
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.init(domain.SubsystemAchievements, deps)

	opts := c.pendingOpts()
	c.unlock = pending.NewTable[string, struct{}]("unlock", opts...)
	c.increment = pending.NewTable[string, int]("increment", opts...)
	c.reveal = pending.NewTable[string, struct{}]("reveal", opts...)
	c.load = pending.NewSlot[[]domain.Achievement]("load", opts...)
	c.ui = pending.NewSlot[struct{}]("show_ui", opts...)

	api.SetCallback(&achievementCallbacks{c: c})
	return c
}

// Unlock unlocks id. An id already marked unlocked locally returns at once.
func (c *AchievementController) Unlock(ctx context.Context, id string) (err error) {
	defer c.track("unlock")(&err)

	if err := domain.ValidateAchievementID(id); err != nil {
		return err
	}
	if err := c.begin(ctx); err != nil {
		return err
	}
	if c.isMarkedUnlocked(ctx, id) {
		c.log.Debug("achievement already unlocked", "achievement_id", id)
		return nil
	}

	comp := c.unlock.Replace(id)
	c.api.Unlock(id)
	_, err = await(ctx, &c.base, comp, c.timeout)
	return err
}

// Increment adds steps to an incremental achievement.
func (c *AchievementController) Increment(ctx context.Context, id string, steps int) (err error) {
	defer c.track("increment")(&err)

	if err := domain.ValidateAchievementID(id); err != nil {
		return err
	}
	if err := domain.ValidateSteps(steps); err != nil {
		return err
	}
	if err := c.begin(ctx); err != nil {
		return err
	}

	comp := c.increment.Replace(id)
	c.api.Increment(id, steps)
	_, err = await(ctx, &c.base, comp, c.timeout)
	return err
}

// Reveal makes a hidden achievement visible.
func (c *AchievementController) Reveal(ctx context.Context, id string) (err error) {
	defer c.track("reveal")(&err)

	if err := domain.ValidateAchievementID(id); err != nil {
		return err
	}
	if err := c.begin(ctx); err != nil {
		return err
	}

	comp := c.reveal.Replace(id)
	c.api.Reveal(id)
	_, err = await(ctx, &c.base, comp, c.timeout)
	return err
}

// UnlockMultiple unlocks every id in one bridge call and returns once each
// id has reported. The first failure is returned.
func (c *AchievementController) UnlockMultiple(ctx context.Context, ids []string) (err error) {
	defer c.track("unlock_multiple")(&err)

	if len(ids) == 0 {
		return domain.ErrMissingArgument.WithDetails("at least one achievement id is required")
	}
	for _, id := range ids {
		if err := domain.ValidateAchievementID(id); err != nil {
			return err
		}
	}
	if err := c.begin(ctx); err != nil {
		return err
	}

	var todo []string
	for _, id := range ids {
		if !c.isMarkedUnlocked(ctx, id) {
			todo = append(todo, id)
		}
	}
	if len(todo) == 0 {
		return nil
	}

	comps := make([]*pending.Completion[struct{}], len(todo))
	for i, id := range todo {
		comps[i] = c.unlock.Replace(id)
	}
	c.api.UnlockMultiple(bridge.EncodeIDs(todo))

	var g errgroup.Group
	for _, comp := range comps {
		g.Go(func() error {
			_, err := await(ctx, &c.base, comp, c.timeout)
			return err
		})
	}
	return g.Wait()
}

// Load returns the achievement list, served from cache for the cache TTL
// unless forceReload is set.
func (c *AchievementController) Load(ctx context.Context, forceReload bool) (list []domain.Achievement, err error) {
	defer c.track("load")(&err)

	if err := c.begin(ctx); err != nil {
		return nil, err
	}
	if !forceReload {
		if cached, ok := c.cached(); ok {
			return cached, nil
		}
	}

	comp := c.load.Replace()
	c.api.Load(forceReload)
	return await(ctx, &c.base, comp, c.timeout)
}

func (c *AchievementController) cached() ([]domain.Achievement, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache == nil || c.now().Sub(c.cache.loadedAt) >= c.ttl {
		return nil, false
	}
	return append([]domain.Achievement(nil), c.cache.list...), true
}

// InvalidateCache drops the cached achievement list.
func (c *AchievementController) InvalidateCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = nil
}

// ShowUI shows the vendor's achievements UI and returns when it closes.
func (c *AchievementController) ShowUI(ctx context.Context) (err error) {
	defer c.track("show_ui")(&err)

	if err := c.begin(ctx); err != nil {
		return err
	}
	comp := c.ui.Replace()
	c.api.ShowUI()
	_, err = await(ctx, &c.base, comp, 0)
	return err
}

func (c *AchievementController) isMarkedUnlocked(ctx context.Context, id string) bool {
	if c.prefs == nil {
		return false
	}
	unlocked, err := c.prefs.GetBool(ctx, unlockedPrefPrefix+id)
	if err != nil {
		c.log.Warn("failed to read unlocked marker", "achievement_id", id, "error", err)
		return false
	}
	return unlocked
}

func (c *AchievementController) markUnlocked(id string) {
	if c.prefs == nil {
		return
	}
	if err := c.prefs.SetBool(context.Background(), unlockedPrefPrefix+id, true); err != nil {
		c.log.Warn("failed to store unlocked marker", "achievement_id", id, "error", err)
	}
}

// OnUnlocked registers fn for every unlocked achievement.
func (c *AchievementController) OnUnlocked(fn func(string)) {
	c.onUnlocked.Add(fn)
}

// OnIncremented registers fn for every increment, with the new step count.
func (c *AchievementController) OnIncremented(fn func(string, int)) {
	c.onIncremented.Add(fn)
}

// OnRevealed registers fn for every revealed achievement.
func (c *AchievementController) OnRevealed(fn func(string)) {
	c.onRevealed.Add(fn)
}

// OnError registers fn for every error the bridge reports.
func (c *AchievementController) OnError(fn func(*domain.Error)) {
	c.onError.Add(fn)
}

// Close cancels every pending call.
func (c *AchievementController) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.rejectAll(domain.ErrCanceled)
	return nil
}

func (c *AchievementController) rejectAll(err error) {
	c.unlock.RejectAll(err)
	c.increment.RejectAll(err)
	c.reveal.RejectAll(err)
	c.load.Reject(err)
	c.ui.Reject(err)
}

type achievementCallbacks struct {
	c *AchievementController
}

func (p *achievementCallbacks) OnAchievementUnlocked(id string) {
	p.c.post("achievement_unlocked", func() {
		p.c.markUnlocked(id)
		p.c.InvalidateCache()
		p.c.onUnlocked.Each(func(fn func(string)) { fn(id) })
		p.c.unlock.Resolve(id, struct{}{})
	})
}

func (p *achievementCallbacks) OnAchievementIncremented(id string, current, total int) {
	p.c.post("achievement_incremented", func() {
		if total > 0 && current >= total {
			p.c.markUnlocked(id)
		}
		p.c.InvalidateCache()
		p.c.onIncremented.Each(func(fn func(string, int)) { fn(id, current) })
		p.c.increment.Resolve(id, current)
	})
}

func (p *achievementCallbacks) OnAchievementRevealed(id string) {
	p.c.post("achievement_revealed", func() {
		p.c.InvalidateCache()
		p.c.onRevealed.Each(func(fn func(string)) { fn(id) })
		p.c.reveal.Resolve(id, struct{}{})
	})
}

func (p *achievementCallbacks) OnAchievementsLoaded(doc string) {
	p.c.post("achievements_loaded", func() {
		list, err := bridge.DecodeAchievements(doc)
		if err != nil {
			p.c.log.Error("undecodable achievement list", "error", err)
			p.c.load.Reject(err)
			return
		}
		p.c.mu.Lock()
		p.c.cache = &cachedAchievements{list: list, loadedAt: p.c.now()}
		p.c.mu.Unlock()
		p.c.load.Resolve(append([]domain.Achievement(nil), list...))
	})
}

func (p *achievementCallbacks) OnAchievementsUIClosed() {
	p.c.post("achievements_ui_closed", func() {
		p.c.ui.Resolve(struct{}{})
	})
}

// OnAchievementError fails every pending call of the subsystem, whether or
// not the error names an id.
func (p *achievementCallbacks) OnAchievementError(code int, message, id string) {
	p.c.post("achievement_error", func() {
		e := p.c.vendorError(code, message, id)
		p.c.onError.Each(func(fn func(*domain.Error)) { fn(e) })
		p.c.rejectAll(e)
	})
}
