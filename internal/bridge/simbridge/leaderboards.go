package simbridge

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/yndnr/gamesvc-go/internal/bridge"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
)

type leaderboardsAPI struct {
	p  *Platform
	cb holder[bridge.LeaderboardsCallback]
}

var _ bridge.Leaderboards = (*leaderboardsAPI)(nil)

func (l *leaderboardsAPI) SetCallback(cb bridge.LeaderboardsCallback) {
	l.cb.set(cb)
}

func (l *leaderboardsAPI) fail(id string) func(code int, msg string) {
	return func(code int, msg string) {
		l.cb.with(func(cb bridge.LeaderboardsCallback) { cb.OnLeaderboardError(code, msg, id) })
	}
}

func scoreKey(leaderboardID, playerID string) string {
	return keyScores + leaderboardID + "/" + playerID
}

// SubmitScore keeps the player's best score. Leaderboards are created by
// their first submission.
func (l *leaderboardsAPI) SubmitScore(id string, score int64, tag string) {
	l.p.submit(OpSubmitScore, func(ctx context.Context) {
		l.p.mu.Lock()
		player := l.p.player
		l.p.mu.Unlock()

		key := scoreKey(id, player.ID)
		var best domain.LeaderboardEntry
		found, err := l.p.getJSON(ctx, key, &best)
		if err != nil {
			l.fail(id)(domain.CodeInternalError, err.Error())
			return
		}
		if !found || score > best.Score {
			entry := domain.LeaderboardEntry{
				PlayerID:        player.ID,
				DisplayName:     player.DisplayName,
				Score:           score,
				FormattedScore:  strconv.FormatInt(score, 10),
				ScoreTag:        tag,
				TimestampMillis: l.p.nowMillis(),
				AvatarURL:       player.HiResImageURI,
			}
			if err := l.p.putJSON(ctx, key, entry); err != nil {
				l.fail(id)(domain.CodeInternalError, err.Error())
				return
			}
		}
		l.cb.with(func(cb bridge.LeaderboardsCallback) { cb.OnScoreSubmitted(id, score) })
	}, l.fail(id))
}

// ranked returns the board filtered by span and collection, best first and
// ranked from 1.
func (l *leaderboardsAPI) ranked(ctx context.Context, id string, span, collection int) ([]domain.LeaderboardEntry, bool, error) {
	all, err := scanJSON[domain.LeaderboardEntry](ctx, l.p.engine, keyScores+id+"/")
	if err != nil || len(all) == 0 {
		return nil, false, err
	}

	l.p.mu.Lock()
	self := l.p.player.ID
	l.p.mu.Unlock()

	var since int64
	switch domain.LeaderboardTimeSpan(span) {
	case domain.TimeSpanDaily:
		since = l.p.now().Add(-24 * time.Hour).UnixMilli()
	case domain.TimeSpanWeekly:
		since = l.p.now().Add(-7 * 24 * time.Hour).UnixMilli()
	}

	entries := make([]domain.LeaderboardEntry, 0, len(all))
	for _, e := range all {
		if e.TimestampMillis < since {
			continue
		}
		if domain.LeaderboardCollection(collection) == domain.CollectionFriends && e.PlayerID != self {
			continue
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].TimestampMillis < entries[j].TimestampMillis
	})
	for i := range entries {
		entries[i].Rank = int64(i + 1)
	}
	return entries, true, nil
}

func (l *leaderboardsAPI) load(op, id string, span, collection, maxResults int, window func([]domain.LeaderboardEntry) []domain.LeaderboardEntry) {
	l.p.submit(op, func(ctx context.Context) {
		entries, exists, err := l.ranked(ctx, id, span, collection)
		if err != nil {
			l.fail(id)(domain.CodeInternalError, err.Error())
			return
		}
		if !exists {
			l.fail(id)(domain.CodeNotFound, "Leaderboard not found")
			return
		}
		if maxResults <= 0 {
			maxResults = domain.DefaultLeaderboardResults
		}
		page := window(entries)
		if len(page) > maxResults {
			page = page[:maxResults]
		}
		doc := bridge.EncodeScores(page)
		l.cb.with(func(cb bridge.LeaderboardsCallback) { cb.OnScoresLoaded(id, doc) })
	}, l.fail(id))
}

func (l *leaderboardsAPI) LoadTopScores(id string, span, collection, maxResults int) {
	l.load(OpLoadTopScores, id, span, collection, maxResults, func(e []domain.LeaderboardEntry) []domain.LeaderboardEntry {
		return e
	})
}

// LoadPlayerCenteredScores returns a page with the player in the middle, or
// an empty page if the player has no score.
func (l *leaderboardsAPI) LoadPlayerCenteredScores(id string, span, collection, maxResults int) {
	if maxResults <= 0 {
		maxResults = domain.DefaultLeaderboardResults
	}
	l.load(OpLoadPlayerCentered, id, span, collection, maxResults, func(e []domain.LeaderboardEntry) []domain.LeaderboardEntry {
		l.p.mu.Lock()
		self := l.p.player.ID
		l.p.mu.Unlock()

		at := -1
		for i := range e {
			if e[i].PlayerID == self {
				at = i
				break
			}
		}
		if at < 0 {
			return nil
		}
		start := max(at-maxResults/2, 0)
		end := min(start+maxResults, len(e))
		start = max(end-maxResults, 0)
		return e[start:end]
	})
}

func (l *leaderboardsAPI) ShowUI(id string) {
	l.p.submit(OpShowLeaderboardUI, func(context.Context) {
		l.cb.with(func(cb bridge.LeaderboardsCallback) { cb.OnLeaderboardUIClosed() })
	}, l.fail(id))
}

func (l *leaderboardsAPI) ShowAllUI() {
	l.ShowUI("")
}
