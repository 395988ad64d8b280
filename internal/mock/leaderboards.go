package mock

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/yndnr/gamesvc-go/internal/bridge/simbridge"
	"github.com/yndnr/gamesvc-go/internal/config"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/observer"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
)

// HighScoreBoard is the leaderboard the mock player's starting score is
// placed on.
const HighScoreBoard = "leaderboard_high_score"

// Leaderboards is the mock leaderboards provider. Time spans are ignored;
// the friends collection holds only the mock player.
type Leaderboards struct {
	core

	mu     sync.Mutex
	boards map[string][]domain.LeaderboardEntry

	onSubmitted observer.List[func(string, int64)]
	onLoaded    observer.List[func(string, []domain.LeaderboardEntry)]
	onError     observer.List[func(*domain.Error)]
}

var _ provider.Leaderboards = (*Leaderboards)(nil)

// NewLeaderboards creates the provider over the demo boards.
func NewLeaderboards(settings config.MockSettings, opts Options) *Leaderboards {
	l := &Leaderboards{boards: make(map[string][]domain.LeaderboardEntry)}
	l.init(domain.SubsystemLeaderboards, settings, opts)
	for id, entries := range simbridge.DefaultSeed().Scores {
		l.boards[id] = slices.Clone(entries)
	}
	if settings.Score > 0 {
		l.put(HighScoreBoard, settings.Score, "")
	}
	return l
}

// put records score for the mock player, keeping the best. It reports
// whether the board changed. The caller holds mu or owns l exclusively.
func (l *Leaderboards) put(id string, score int64, tag string) bool {
	entries := l.boards[id]
	i := slices.IndexFunc(entries, func(e domain.LeaderboardEntry) bool {
		return e.PlayerID == l.settings.PlayerID
	})
	if i >= 0 && entries[i].Score >= score {
		return false
	}
	e := domain.LeaderboardEntry{
		PlayerID:        l.settings.PlayerID,
		DisplayName:     l.settings.DisplayName,
		Score:           score,
		FormattedScore:  strconv.FormatInt(score, 10),
		ScoreTag:        tag,
		TimestampMillis: l.nowMillis(),
	}
	if i >= 0 {
		entries[i] = e
	} else {
		entries = append(entries, e)
	}
	l.boards[id] = entries
	return true
}

// SubmitScore records score for the mock player.
func (l *Leaderboards) SubmitScore(ctx context.Context, id string, score int64, tag string) error {
	if id == "" {
		return domain.ErrMissingArgument.WithDetails("leaderboard id is required")
	}
	if err := l.wait(ctx, l.delay); err != nil {
		return err
	}
	l.mu.Lock()
	improved := l.put(id, score, tag)
	l.mu.Unlock()

	l.log.Info("mock score submitted", "leaderboard_id", id, "score", score, "new_best", improved)
	l.onSubmitted.Each(func(fn func(string, int64)) { fn(id, score) })
	return nil
}

// ranked returns the board for q ordered by score, ranked from 1.
func (l *Leaderboards) ranked(q domain.LeaderboardQuery) []domain.LeaderboardEntry {
	l.mu.Lock()
	entries := slices.Clone(l.boards[q.LeaderboardID])
	l.mu.Unlock()

	if q.Collection == domain.CollectionFriends {
		entries = slices.DeleteFunc(entries, func(e domain.LeaderboardEntry) bool {
			return e.PlayerID != l.settings.PlayerID
		})
	}
	slices.SortStableFunc(entries, func(a, b domain.LeaderboardEntry) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	for i := range entries {
		entries[i].Rank = int64(i + 1)
		if entries[i].FormattedScore == "" {
			entries[i].FormattedScore = strconv.FormatInt(entries[i].Score, 10)
		}
	}
	return entries
}

func (l *Leaderboards) load(ctx context.Context, q domain.LeaderboardQuery, window func([]domain.LeaderboardEntry, int) []domain.LeaderboardEntry) ([]domain.LeaderboardEntry, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	if err := l.wait(ctx, l.delay); err != nil {
		return nil, err
	}
	page := window(l.ranked(q), q.MaxResults)
	l.onLoaded.Each(func(fn func(string, []domain.LeaderboardEntry)) { fn(q.LeaderboardID, page) })
	return page, nil
}

// LoadTopScores returns the top page. An unknown board is empty.
func (l *Leaderboards) LoadTopScores(ctx context.Context, q domain.LeaderboardQuery) ([]domain.LeaderboardEntry, error) {
	return l.load(ctx, q, func(all []domain.LeaderboardEntry, n int) []domain.LeaderboardEntry {
		return all[:min(n, len(all))]
	})
}

// LoadPlayerCenteredScores returns the page around the mock player, or the
// top page when the player has no score.
func (l *Leaderboards) LoadPlayerCenteredScores(ctx context.Context, q domain.LeaderboardQuery) ([]domain.LeaderboardEntry, error) {
	return l.load(ctx, q, func(all []domain.LeaderboardEntry, n int) []domain.LeaderboardEntry {
		i := slices.IndexFunc(all, func(e domain.LeaderboardEntry) bool {
			return e.PlayerID == l.settings.PlayerID
		})
		start := 0
		if i >= 0 {
			start = max(0, min(i-n/2, len(all)-n))
		}
		return all[start:min(start+n, len(all))]
	})
}

// ShowUI simulates one leaderboard's UI.
func (l *Leaderboards) ShowUI(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrMissingArgument.WithDetails("leaderboard id is required")
	}
	if err := l.wait(ctx, l.delay); err != nil {
		return err
	}
	l.log.Info("mock leaderboard UI shown", "leaderboard_id", id)
	return nil
}

// ShowAllUI simulates the leaderboard list UI.
func (l *Leaderboards) ShowAllUI(ctx context.Context) error {
	if err := l.wait(ctx, l.delay); err != nil {
		return err
	}
	l.log.Info("mock leaderboards UI shown")
	return nil
}

// OnScoreSubmitted registers fn for every submitted score.
func (l *Leaderboards) OnScoreSubmitted(fn func(string, int64)) { l.onSubmitted.Add(fn) }

// OnScoresLoaded registers fn for every loaded page.
func (l *Leaderboards) OnScoresLoaded(fn func(string, []domain.LeaderboardEntry)) {
	l.onLoaded.Add(fn)
}

// OnError registers fn for errors. The mock never reports any.
func (l *Leaderboards) OnError(fn func(*domain.Error)) { l.onError.Add(fn) }
