package simbridge

import (
	"context"
	"fmt"

	"github.com/yndnr/gamesvc-go/internal/core/domain"
)

// SeedData is the catalog a fresh store starts with.
type SeedData struct {
	Achievements []domain.Achievement
	// Scores maps a leaderboard id to its entries.
	Scores map[string][]domain.LeaderboardEntry
	Stats  *domain.PlayerStats
	Events []domain.Event
}

// DefaultSeed returns the catalog used by the CLI.
func DefaultSeed() SeedData {
	return SeedData{
		Achievements: []domain.Achievement{
			{ID: "achievement_first_trade", Name: "First Trade", Description: "Complete your first trade",
				State: domain.AchievementRevealed, Type: domain.AchievementStandard, XPValue: 10},
			{ID: "achievement_ten_trades", Name: "Ten Trades", Description: "Complete ten trades",
				State: domain.AchievementHidden, Type: domain.AchievementIncremental, TotalSteps: 10, XPValue: 50},
			{ID: "achievement_hundred_trades", Name: "Hundred Trades", Description: "Complete one hundred trades",
				State: domain.AchievementHidden, Type: domain.AchievementIncremental, TotalSteps: 100, XPValue: 100},
			{ID: "achievement_scrap_circuit_specialist", Name: "Scrap Circuit Specialist", Description: "Trade every circuit grade",
				State: domain.AchievementRevealed, Type: domain.AchievementStandard, XPValue: 25},
			{ID: "achievement_amazing_profit", Name: "Amazing Profit", Description: "Make an amazing profit",
				State: domain.AchievementHidden, Type: domain.AchievementStandard, XPValue: 50},
		},
		Scores: map[string][]domain.LeaderboardEntry{
			"leaderboard_high_score": {
				{PlayerID: "mock1", DisplayName: "Player One", Score: 1000},
				{PlayerID: "mock2", DisplayName: "Player Two", Score: 900},
				{PlayerID: "mock3", DisplayName: "Player Three", Score: 800},
			},
		},
		Stats: &domain.PlayerStats{
			AvgSessionLengthMinutes: 15.5,
			NumberOfPurchases:       3,
			NumberOfSessions:        42,
			SessionPercentile:       0.75,
			SpendPercentile:         0.60,
			ChurnProbability:        0.15,
			HighSpenderProbability:  0.30,
		},
	}
}

// Seed writes every item of data whose key is absent, so reseeding never
// overwrites progress.
func (p *Platform) Seed(ctx context.Context, data SeedData) error {
	putAbsent := func(key string, v any) error {
		var probe map[string]any
		found, err := p.getJSON(ctx, key, &probe)
		if err != nil {
			return err
		}
		if found {
			return nil
		}
		return p.putJSON(ctx, key, v)
	}

	for _, a := range data.Achievements {
		if err := putAbsent(keyAchievements+a.ID, a); err != nil {
			return fmt.Errorf("seed achievement %s: %w", a.ID, err)
		}
	}
	now := p.nowMillis()
	for board, entries := range data.Scores {
		for _, e := range entries {
			if e.TimestampMillis == 0 {
				e.TimestampMillis = now
			}
			if e.FormattedScore == "" {
				e.FormattedScore = fmt.Sprint(e.Score)
			}
			if err := putAbsent(scoreKey(board, e.PlayerID), e); err != nil {
				return fmt.Errorf("seed score %s/%s: %w", board, e.PlayerID, err)
			}
		}
	}
	if data.Stats != nil {
		if err := putAbsent(keyStats, data.Stats); err != nil {
			return fmt.Errorf("seed stats: %w", err)
		}
	}
	for _, e := range data.Events {
		if err := putAbsent(keyEvents+e.ID, e); err != nil {
			return fmt.Errorf("seed event %s: %w", e.ID, err)
		}
	}
	return nil
}
