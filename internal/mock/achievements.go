package mock

import (
	"context"
	"sync"

	"github.com/yndnr/gamesvc-go/internal/bridge/simbridge"
	"github.com/yndnr/gamesvc-go/internal/config"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/observer"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
	"github.com/yndnr/gamesvc-go/internal/storage"
)

const unlockedPrefPrefix = "achievement/"

// Achievements is the mock achievements provider over the demo catalog.
type Achievements struct {
	core
	prefs *storage.Prefs

	mu    sync.Mutex
	order []string
	items map[string]*domain.Achievement

	onUnlocked    observer.List[func(string)]
	onIncremented observer.List[func(string, int)]
	onRevealed    observer.List[func(string)]
	onError       observer.List[func(*domain.Error)]
}

var _ provider.Achievements = (*Achievements)(nil)

// NewAchievements creates the provider. The first settings.UnlockedCount
// catalog entries start unlocked, as does every entry marked unlocked in
// opts.Prefs.
func NewAchievements(settings config.MockSettings, opts Options) *Achievements {
	a := &Achievements{
		prefs: opts.Prefs,
		items: make(map[string]*domain.Achievement),
	}
	a.init(domain.SubsystemAchievements, settings, opts)
	for i, ach := range simbridge.DefaultSeed().Achievements {
		if i < settings.UnlockedCount || a.marked(context.Background(), ach.ID) {
			a.markUnlocked(&ach)
		}
		a.order = append(a.order, ach.ID)
		a.items[ach.ID] = &ach
	}
	return a
}

func (a *Achievements) marked(ctx context.Context, id string) bool {
	if a.prefs == nil {
		return false
	}
	ok, err := a.prefs.GetBool(ctx, unlockedPrefPrefix+id)
	if err != nil {
		a.log.Warn("failed to read unlocked marker", "achievement_id", id, "error", err)
	}
	return ok
}

// markUnlocked unlocks ach in memory and in prefs. The caller holds mu or
// owns ach exclusively.
func (a *Achievements) markUnlocked(ach *domain.Achievement) {
	ach.State = domain.AchievementUnlocked
	if ach.UnlockedTimestamp == 0 {
		ach.UnlockedTimestamp = a.nowMillis()
	}
	if ach.Type == domain.AchievementIncremental {
		ach.CurrentSteps = ach.TotalSteps
	}
	if a.prefs != nil {
		if err := a.prefs.SetBool(context.Background(), unlockedPrefPrefix+ach.ID, true); err != nil {
			a.log.Warn("failed to store unlocked marker", "achievement_id", ach.ID, "error", err)
		}
	}
}

func (a *Achievements) fail(code int, message, id string) *domain.Error {
	e := domain.NewError(domain.SubsystemAchievements, code, message, id)
	a.onError.Each(func(fn func(*domain.Error)) { fn(e) })
	return e
}

// lookup returns the achievement for id with mu held, or a NotFound error
// with mu released.
func (a *Achievements) lookup(id string) (*domain.Achievement, error) {
	a.mu.Lock()
	ach, ok := a.items[id]
	if !ok {
		a.mu.Unlock()
		return nil, a.fail(domain.CodeNotFound, "Achievement not found", id)
	}
	return ach, nil
}

// Unlock unlocks id. Unlocking twice is a logged no-op.
func (a *Achievements) Unlock(ctx context.Context, id string) error {
	if err := domain.ValidateAchievementID(id); err != nil {
		return err
	}
	if err := a.wait(ctx, a.delay); err != nil {
		return err
	}

	ach, err := a.lookup(id)
	if err != nil {
		return err
	}
	if ach.IsUnlocked() {
		a.mu.Unlock()
		a.log.Warn("achievement already unlocked", "achievement_id", id)
		return nil
	}
	a.markUnlocked(ach)
	a.mu.Unlock()

	a.log.Info("mock achievement unlocked", "achievement_id", id)
	a.onUnlocked.Each(func(fn func(string)) { fn(id) })
	return nil
}

// Increment adds steps to an incremental achievement, unlocking it at its
// total.
func (a *Achievements) Increment(ctx context.Context, id string, steps int) error {
	if err := domain.ValidateAchievementID(id); err != nil {
		return err
	}
	if err := domain.ValidateSteps(steps); err != nil {
		return err
	}
	if err := a.wait(ctx, a.delay); err != nil {
		return err
	}

	ach, err := a.lookup(id)
	if err != nil {
		return err
	}
	if ach.Type != domain.AchievementIncremental {
		a.mu.Unlock()
		return a.fail(domain.CodeInvalidSteps, "Achievement is not incremental", id)
	}
	ach.CurrentSteps = min(ach.CurrentSteps+steps, ach.TotalSteps)
	unlocked := false
	if ach.CurrentSteps >= ach.TotalSteps && !ach.IsUnlocked() {
		a.markUnlocked(ach)
		unlocked = true
	}
	current := ach.CurrentSteps
	a.mu.Unlock()

	if unlocked {
		a.onUnlocked.Each(func(fn func(string)) { fn(id) })
	}
	a.log.Info("mock achievement incremented", "achievement_id", id, "current_steps", current)
	a.onIncremented.Each(func(fn func(string, int)) { fn(id, current) })
	return nil
}

// Reveal reveals a hidden achievement.
func (a *Achievements) Reveal(ctx context.Context, id string) error {
	if err := domain.ValidateAchievementID(id); err != nil {
		return err
	}
	if err := a.wait(ctx, a.delay); err != nil {
		return err
	}

	ach, err := a.lookup(id)
	if err != nil {
		return err
	}
	revealed := ach.State == domain.AchievementHidden
	if revealed {
		ach.State = domain.AchievementRevealed
	}
	a.mu.Unlock()

	if revealed {
		a.onRevealed.Each(func(fn func(string)) { fn(id) })
	}
	return nil
}

// UnlockMultiple unlocks every known id and skips unknown ones.
func (a *Achievements) UnlockMultiple(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return domain.ErrMissingArgument.WithDetails("at least one achievement id is required")
	}
	if err := a.wait(ctx, 2*a.delay); err != nil {
		return err
	}

	var unlocked []string
	a.mu.Lock()
	for _, id := range ids {
		ach, ok := a.items[id]
		if !ok {
			a.log.Warn("skipping unknown achievement", "achievement_id", id)
			continue
		}
		if !ach.IsUnlocked() {
			a.markUnlocked(ach)
			unlocked = append(unlocked, id)
		}
	}
	a.mu.Unlock()

	for _, id := range unlocked {
		a.onUnlocked.Each(func(fn func(string)) { fn(id) })
	}
	return nil
}

// Load returns the catalog in catalog order.
func (a *Achievements) Load(ctx context.Context, _ bool) ([]domain.Achievement, error) {
	if err := a.wait(ctx, a.delay); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	list := make([]domain.Achievement, 0, len(a.order))
	for _, id := range a.order {
		list = append(list, *a.items[id])
	}
	return list, nil
}

// ShowUI simulates the achievements UI being shown and closed.
func (a *Achievements) ShowUI(ctx context.Context) error {
	if err := a.wait(ctx, a.delay); err != nil {
		return err
	}
	a.log.Info("mock achievements UI shown")
	return nil
}

// OnUnlocked registers fn for every unlocked achievement.
func (a *Achievements) OnUnlocked(fn func(string)) { a.onUnlocked.Add(fn) }

// OnIncremented registers fn for every increment.
func (a *Achievements) OnIncremented(fn func(string, int)) { a.onIncremented.Add(fn) }

// OnRevealed registers fn for every revealed achievement.
func (a *Achievements) OnRevealed(fn func(string)) { a.onRevealed.Add(fn) }

// OnError registers fn for every failed call.
func (a *Achievements) OnError(fn func(*domain.Error)) { a.onError.Add(fn) }
