package simbridge

import (
	"context"

	"github.com/yndnr/gamesvc-go/internal/bridge"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
)

type achievementsAPI struct {
	p  *Platform
	cb holder[bridge.AchievementsCallback]
}

var _ bridge.Achievements = (*achievementsAPI)(nil)

func (a *achievementsAPI) SetCallback(cb bridge.AchievementsCallback) {
	a.cb.set(cb)
}

func (a *achievementsAPI) fail(id string) func(code int, msg string) {
	return func(code int, msg string) {
		a.cb.with(func(cb bridge.AchievementsCallback) { cb.OnAchievementError(code, msg, id) })
	}
}

// load reads one achievement, reporting NotFound and storage failures
// through the error callback.
func (a *achievementsAPI) load(ctx context.Context, id string) (*domain.Achievement, bool) {
	var ach domain.Achievement
	found, err := a.p.getJSON(ctx, keyAchievements+id, &ach)
	if err != nil {
		a.fail(id)(domain.CodeInternalError, err.Error())
		return nil, false
	}
	if !found {
		a.fail(id)(domain.CodeNotFound, "Achievement not found")
		return nil, false
	}
	return &ach, true
}

func (a *achievementsAPI) store(ctx context.Context, ach *domain.Achievement) bool {
	if err := a.p.putJSON(ctx, keyAchievements+ach.ID, ach); err != nil {
		a.fail(ach.ID)(domain.CodeInternalError, err.Error())
		return false
	}
	return true
}

func (a *achievementsAPI) unlock(ctx context.Context, id string) {
	ach, ok := a.load(ctx, id)
	if !ok {
		return
	}
	if !ach.IsUnlocked() {
		ach.State = domain.AchievementUnlocked
		ach.UnlockedTimestamp = a.p.nowMillis()
		if ach.Type == domain.AchievementIncremental {
			ach.CurrentSteps = ach.TotalSteps
		}
		if !a.store(ctx, ach) {
			return
		}
	}
	a.cb.with(func(cb bridge.AchievementsCallback) { cb.OnAchievementUnlocked(id) })
}

func (a *achievementsAPI) Unlock(id string) {
	a.p.submit(OpUnlockAchievement, func(ctx context.Context) {
		a.unlock(ctx, id)
	}, a.fail(id))
}

func (a *achievementsAPI) Increment(id string, steps int) {
	a.p.submit(OpIncrementAchievement, func(ctx context.Context) {
		ach, ok := a.load(ctx, id)
		if !ok {
			return
		}
		if ach.Type != domain.AchievementIncremental {
			a.fail(id)(domain.CodeInvalidSteps, "Achievement is not incremental")
			return
		}
		if !ach.IsUnlocked() {
			ach.CurrentSteps = min(ach.CurrentSteps+steps, ach.TotalSteps)
			if ach.CurrentSteps >= ach.TotalSteps {
				ach.State = domain.AchievementUnlocked
				ach.UnlockedTimestamp = a.p.nowMillis()
			} else if ach.State == domain.AchievementHidden {
				ach.State = domain.AchievementRevealed
			}
			if !a.store(ctx, ach) {
				return
			}
		}
		current, total := ach.CurrentSteps, ach.TotalSteps
		a.cb.with(func(cb bridge.AchievementsCallback) { cb.OnAchievementIncremented(id, current, total) })
	}, a.fail(id))
}

func (a *achievementsAPI) Reveal(id string) {
	a.p.submit(OpRevealAchievement, func(ctx context.Context) {
		ach, ok := a.load(ctx, id)
		if !ok {
			return
		}
		if ach.State == domain.AchievementHidden {
			ach.State = domain.AchievementRevealed
			if !a.store(ctx, ach) {
				return
			}
		}
		a.cb.with(func(cb bridge.AchievementsCallback) { cb.OnAchievementRevealed(id) })
	}, a.fail(id))
}

// UnlockMultiple answers once per id, in order.
func (a *achievementsAPI) UnlockMultiple(idsJSON string) {
	a.p.submit(OpUnlockMultiple, func(ctx context.Context) {
		ids, err := bridge.DecodeIDs(idsJSON)
		if err != nil {
			a.fail("")(domain.CodeInternalError, err.Error())
			return
		}
		for _, id := range ids {
			a.unlock(ctx, id)
		}
	}, a.fail(""))
}

func (a *achievementsAPI) Load(bool) {
	a.p.submit(OpLoadAchievements, func(ctx context.Context) {
		list, err := scanJSON[domain.Achievement](ctx, a.p.engine, keyAchievements)
		if err != nil {
			a.fail("")(domain.CodeInternalError, err.Error())
			return
		}
		doc := bridge.EncodeAchievements(list)
		a.cb.with(func(cb bridge.AchievementsCallback) { cb.OnAchievementsLoaded(doc) })
	}, a.fail(""))
}

func (a *achievementsAPI) ShowUI() {
	a.p.submit(OpShowAchievementsUI, func(context.Context) {
		a.cb.with(func(cb bridge.AchievementsCallback) { cb.OnAchievementsUIClosed() })
	}, a.fail(""))
}
