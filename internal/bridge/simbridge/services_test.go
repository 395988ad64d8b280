package simbridge

import (
	"strings"
	"testing"

	"github.com/yndnr/gamesvc-go/internal/bridge"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
)

func TestAchievements(t *testing.T) {
	p, rec := newPlatform(t)
	a := p.Achievements()

	steps := []struct {
		call func()
		want string
	}{
		{func() { a.Unlock("achievement_first_trade") }, "unlocked achievement_first_trade"},
		{func() { a.Unlock("missing") }, "achievementError 3 missing"},
		{func() { a.Increment("achievement_first_trade", 1) }, "achievementError 4 achievement_first_trade"},
		{func() { a.Increment("achievement_ten_trades", 4) }, "incremented achievement_ten_trades 4/10"},
		{func() { a.Increment("achievement_ten_trades", 20) }, "incremented achievement_ten_trades 10/10"},
		{func() { a.Reveal("achievement_amazing_profit") }, "revealed achievement_amazing_profit"},
		{func() { a.ShowUI() }, "achievementsUI"},
	}
	for i, s := range steps {
		s.call()
		if got := rec.next(t); got != s.want {
			t.Errorf("step %d = %q, want %q", i, got, s.want)
		}
	}

	a.UnlockMultiple(bridge.EncodeIDs([]string{"achievement_scrap_circuit_specialist", "nope"}))
	if got := rec.next(t); got != "unlocked achievement_scrap_circuit_specialist" {
		t.Errorf("first of batch = %q", got)
	}
	if got := rec.next(t); got != "achievementError 3 nope" {
		t.Errorf("second of batch = %q", got)
	}

	a.Load(true)
	got := rec.next(t)
	list, err := bridge.DecodeAchievements(strings.TrimPrefix(got, "achievements "))
	if err != nil {
		t.Fatal(err)
	}
	states := make(map[string]domain.AchievementState)
	for _, ach := range list {
		states[ach.ID] = ach.State
	}
	want := map[string]domain.AchievementState{
		"achievement_first_trade":              domain.AchievementUnlocked,
		"achievement_ten_trades":               domain.AchievementUnlocked,
		"achievement_hundred_trades":           domain.AchievementHidden,
		"achievement_scrap_circuit_specialist": domain.AchievementUnlocked,
		"achievement_amazing_profit":           domain.AchievementRevealed,
	}
	for id, st := range want {
		if states[id] != st {
			t.Errorf("%s state = %v, want %v", id, states[id], st)
		}
	}
}

func TestLeaderboards(t *testing.T) {
	p, rec := newPlatform(t, WithPlayer(domain.Player{ID: "me", DisplayName: "Me"}))
	lb := p.Leaderboards()
	const board = "leaderboard_high_score"

	lb.SubmitScore(board, 950, "tag")
	if got := rec.next(t); got != "submitted leaderboard_high_score 950" {
		t.Fatalf("submit = %q", got)
	}
	// A lower score is acknowledged but does not replace the best.
	lb.SubmitScore(board, 10, "")
	rec.next(t)

	load := func(call func()) []domain.LeaderboardEntry {
		t.Helper()
		call()
		got := rec.next(t)
		entries, err := bridge.DecodeScores(strings.TrimPrefix(got, "scores "+board+" "))
		if err != nil {
			t.Fatalf("%q: %v", got, err)
		}
		return entries
	}

	top := load(func() { lb.LoadTopScores(board, int(domain.TimeSpanAllTime), int(domain.CollectionPublic), 3) })
	if len(top) != 3 {
		t.Fatalf("top = %+v", top)
	}
	wantIDs := []string{"mock1", "me", "mock2"}
	for i, e := range top {
		if e.PlayerID != wantIDs[i] || e.Rank != int64(i+1) {
			t.Errorf("entry %d = %+v", i, e)
		}
	}

	friends := load(func() { lb.LoadTopScores(board, int(domain.TimeSpanAllTime), int(domain.CollectionFriends), 10) })
	if len(friends) != 1 || friends[0].PlayerID != "me" || friends[0].Score != 950 {
		t.Errorf("friends = %+v", friends)
	}

	centered := load(func() {
		lb.LoadPlayerCenteredScores(board, int(domain.TimeSpanDaily), int(domain.CollectionPublic), 2)
	})
	if len(centered) != 2 || centered[0].PlayerID != "mock1" || centered[1].PlayerID != "me" {
		t.Errorf("centered = %+v", centered)
	}

	lb.LoadTopScores("unknown", 2, 0, 10)
	if got := rec.next(t); got != "leaderboardError 3 unknown" {
		t.Errorf("unknown board = %q", got)
	}
}

func TestAuth(t *testing.T) {
	profile := domain.IDTokenClaims{Email: "player@example.com", EmailVerified: true, Name: "Full Name"}
	p, rec := newPlatform(t, WithProfile(profile))
	auth := p.Auth()

	auth.RequestServerSideAccess("client", false)
	if got := rec.next(t); got != "serverAccessFailure 3" {
		t.Errorf("before sign-in = %q", got)
	}

	auth.SignIn()
	if got := rec.next(t); got != "authSuccess sim_player Sim Player" {
		t.Errorf("sign-in = %q", got)
	}

	auth.RequestServerSideAccess("client", false)
	if got := rec.next(t); got != "serverAccess true" {
		t.Errorf("server access = %q", got)
	}

	auth.RequestServerSideAccessWithScopes("client", false, bridge.EncodeScopes([]domain.AuthScope{domain.ScopeEmail}))
	got := rec.next(t)
	if !strings.Contains(got, `["EMAIL"]`) || !strings.Contains(got, "player@example.com") || strings.Contains(got, "Full Name") {
		t.Errorf("scoped = %q", got)
	}

	p.FailNext(OpSignIn, domain.CodeAuthUserCanceled, "canceled")
	auth.SignIn()
	if got := rec.next(t); got != "authFailure 1" {
		t.Errorf("failed sign-in = %q", got)
	}
}

func TestAuth_NoConsent(t *testing.T) {
	p, rec := newPlatform(t, WithConsent(false))
	p.Auth().SignIn()
	rec.next(t)

	p.Auth().RequestServerSideAccessWithScopes("client", false, bridge.EncodeScopes([]domain.AuthScope{domain.ScopeProfile}))
	if got := rec.next(t); got != "scoped [] " {
		t.Errorf("scoped without consent = %q", got)
	}
}

func TestStatsAndEvents(t *testing.T) {
	p, rec := newPlatform(t)

	p.Stats().LoadPlayerStats(true)
	stats, err := bridge.DecodeStats(strings.TrimPrefix(rec.next(t), "stats "))
	if err != nil {
		t.Fatal(err)
	}
	if stats.NumberOfSessions != 42 || stats.AvgSessionLengthMinutes != 15.5 {
		t.Errorf("stats = %+v", stats)
	}

	ev := p.Events()
	ev.Increment("event_trades", 2)
	ev.Increment("event_trades", 3)
	ev.Load("event_trades")
	e, err := bridge.DecodeEvent(strings.TrimPrefix(rec.next(t), "event "))
	if err != nil {
		t.Fatal(err)
	}
	if e.Value != 5 || !e.Visible {
		t.Errorf("event = %+v", e)
	}

	ev.Load("missing")
	if got := rec.next(t); got != "eventsError 3" {
		t.Errorf("missing event = %q", got)
	}

	ev.LoadAll()
	list, err := bridge.DecodeEvents(strings.TrimPrefix(rec.next(t), "events "))
	if err != nil || len(list) != 1 {
		t.Errorf("events = %+v, %v", list, err)
	}
}
