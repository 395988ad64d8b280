package mock

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yndnr/gamesvc-go/internal/config"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/storage"
	"github.com/yndnr/gamesvc-go/internal/storage/memory"
	"github.com/yndnr/gamesvc-go/internal/telemetry/logger"
)

func testOptions() Options {
	return Options{Logger: logger.Nop(), Delay: -1}
}

func testSettings() config.MockSettings {
	s := config.DefaultMockSettings()
	s.AuthDelay = 0
	return s
}

func TestAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		a := NewAuth(testSettings(), testOptions())
		if _, err := a.RequestServerSideAccess(ctx, "client", false); domain.KindOf(err) != domain.KindNotAuthenticated {
			t.Fatalf("access before sign-in: err = %v, want NotAuthenticated", err)
		}

		var signedIn *domain.Player
		a.OnAuthenticated(func(p *domain.Player) { signedIn = p })
		p, err := a.Authenticate(ctx)
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if p.ID != "mock_player_12345" || signedIn != p || !a.IsAuthenticated() {
			t.Errorf("player = %+v, observed %+v", p, signedIn)
		}

		code, err := a.RequestServerSideAccess(ctx, "client", false)
		if err != nil || len(code) <= len("mock_auth_code_") {
			t.Errorf("RequestServerSideAccess() = %q, %v", code, err)
		}
	})

	t.Run("configured failure", func(t *testing.T) {
		s := testSettings()
		s.AuthSucceeds = false
		s.AuthErrorType = config.AuthErrorNoConnection
		a := NewAuth(s, testOptions())

		var failed *domain.Error
		a.OnAuthFailed(func(e *domain.Error) { failed = e })
		_, err := a.Authenticate(ctx)
		if domain.KindOf(err) != domain.KindNetworkError {
			t.Fatalf("err = %v, want NetworkError", err)
		}
		if failed == nil || a.CurrentPlayer() != nil {
			t.Errorf("failure not observed or player kept")
		}
	})

	tests := []struct {
		name       string
		consent    bool
		scopes     []domain.AuthScope
		wantScopes int
		wantEmail  string
		wantName   string
		wantClaims bool
	}{
		{"email and profile", true, []domain.AuthScope{domain.ScopeEmail, domain.ScopeProfile}, 2, "testplayer@gmail.com", "Test Player", true},
		{"email only", true, []domain.AuthScope{domain.ScopeEmail}, 1, "testplayer@gmail.com", "", true},
		{"consent declined", false, []domain.AuthScope{domain.ScopeEmail}, 0, "", "", false},
		{"no scopes", true, nil, 0, "", "", false},
	}
	for _, tt := range tests {
		t.Run("scoped/"+tt.name, func(t *testing.T) {
			s := testSettings()
			s.ConsentGranted = tt.consent
			a := NewAuth(s, testOptions())
			if _, err := a.Authenticate(ctx); err != nil {
				t.Fatal(err)
			}

			resp, err := a.RequestServerSideAccessWithScopes(ctx, "client", false, tt.scopes)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if len(resp.GrantedScopes) != tt.wantScopes {
				t.Errorf("granted %v, want %d scopes", resp.GrantedScopes, tt.wantScopes)
			}
			if (resp.IDTokenClaims != nil) != tt.wantClaims {
				t.Fatalf("claims = %+v, want present %v", resp.IDTokenClaims, tt.wantClaims)
			}
			if resp.IDTokenClaims != nil {
				c := resp.IDTokenClaims
				if c.Sub != "mock_player_12345" || c.Email != tt.wantEmail || c.Name != tt.wantName {
					t.Errorf("claims = %+v", c)
				}
			}
		})
	}
}

func TestAchievements(t *testing.T) {
	ctx := context.Background()
	prefs := storage.NewPrefs(memory.New(), "prefs/")
	opts := testOptions()
	opts.Prefs = prefs

	a := NewAchievements(testSettings(), opts)

	var unlocked []string
	a.OnUnlocked(func(id string) { unlocked = append(unlocked, id) })

	if err := a.Unlock(ctx, "achievement_first_trade"); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if err := a.Unlock(ctx, "achievement_first_trade"); err != nil {
		t.Fatalf("second Unlock() error = %v", err)
	}
	if len(unlocked) != 1 {
		t.Errorf("unlocked events = %v, want one", unlocked)
	}
	if ok, _ := prefs.GetBool(ctx, "achievement/achievement_first_trade"); !ok {
		t.Error("unlocked marker not stored")
	}

	err := a.Unlock(ctx, "missing")
	if domain.KindOf(err) != domain.KindNotFound {
		t.Errorf("Unlock(missing) err = %v, want NotFound", err)
	}
	err = a.Increment(ctx, "achievement_first_trade", 1)
	if domain.KindOf(err) != domain.KindInvalidArgument {
		t.Errorf("Increment(standard) err = %v, want InvalidArgument", err)
	}
	if err := a.Increment(ctx, "achievement_ten_trades", 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Increment(0) err = %v", err)
	}

	var steps int
	a.OnIncremented(func(_ string, current int) { steps = current })
	if err := a.Increment(ctx, "achievement_ten_trades", 25); err != nil {
		t.Fatal(err)
	}
	if steps != 10 {
		t.Errorf("steps = %d, want capped at 10", steps)
	}
	if unlocked[len(unlocked)-1] != "achievement_ten_trades" {
		t.Errorf("reaching the total should unlock, got %v", unlocked)
	}

	// A fresh provider over the same prefs sees the markers.
	b := NewAchievements(testSettings(), opts)
	list, err := b.Load(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	states := map[string]domain.AchievementState{}
	for _, ach := range list {
		states[ach.ID] = ach.State
	}
	if states["achievement_first_trade"] != domain.AchievementUnlocked || states["achievement_ten_trades"] != domain.AchievementUnlocked {
		t.Errorf("markers not restored: %v", states)
	}
	if states["achievement_amazing_profit"] != domain.AchievementHidden {
		t.Errorf("amazing_profit = %v, want hidden", states["achievement_amazing_profit"])
	}
}

func TestAchievements_UnlockedCount(t *testing.T) {
	s := testSettings()
	s.UnlockedCount = 2
	a := NewAchievements(s, testOptions())
	list, err := a.Load(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for _, ach := range list {
		if ach.IsUnlocked() {
			n++
		}
	}
	if n != 2 || !list[0].IsUnlocked() || !list[1].IsUnlocked() {
		t.Errorf("unlocked = %d, want the first 2", n)
	}
}

func TestLeaderboards(t *testing.T) {
	ctx := context.Background()
	s := testSettings()
	s.Score = 950
	l := NewLeaderboards(s, testOptions())

	top, err := l.LoadTopScores(ctx, domain.LeaderboardQuery{LeaderboardID: HighScoreBoard})
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 4 || top[1].PlayerID != s.PlayerID || top[1].Rank != 2 {
		t.Fatalf("top = %+v, want mock player ranked 2nd of 4", top)
	}

	if err := l.SubmitScore(ctx, HighScoreBoard, 500, ""); err != nil {
		t.Fatal(err)
	}
	if err := l.SubmitScore(ctx, HighScoreBoard, 2000, "pb"); err != nil {
		t.Fatal(err)
	}
	top, _ = l.LoadTopScores(ctx, domain.LeaderboardQuery{LeaderboardID: HighScoreBoard, MaxResults: 2})
	if len(top) != 2 || top[0].Score != 2000 || top[0].ScoreTag != "pb" {
		t.Errorf("top after submits = %+v", top)
	}

	friends, _ := l.LoadTopScores(ctx, domain.LeaderboardQuery{LeaderboardID: HighScoreBoard, Collection: domain.CollectionFriends})
	if len(friends) != 1 || friends[0].PlayerID != s.PlayerID {
		t.Errorf("friends = %+v", friends)
	}

	centered, _ := l.LoadPlayerCenteredScores(ctx, domain.LeaderboardQuery{LeaderboardID: HighScoreBoard, MaxResults: 1})
	if len(centered) != 1 || centered[0].PlayerID != s.PlayerID {
		t.Errorf("centered = %+v", centered)
	}

	empty, err := l.LoadTopScores(ctx, domain.LeaderboardQuery{LeaderboardID: "unknown"})
	if err != nil || len(empty) != 0 {
		t.Errorf("unknown board = %v, %v", empty, err)
	}
	if _, err := l.LoadTopScores(ctx, domain.LeaderboardQuery{}); !errors.Is(err, domain.ErrMissingArgument) {
		t.Errorf("empty id err = %v", err)
	}
}

func TestCloudSave(t *testing.T) {
	ctx := context.Background()
	c := NewCloudSave(testSettings(), false, testOptions())

	if _, err := c.OpenSnapshot(ctx, "slot1", false); !domain.IsNotFound(err) {
		t.Fatalf("Open(missing, false) err = %v, want NotFound", err)
	}
	data, err := c.Load(ctx, "slot1")
	if err != nil || data != nil {
		t.Fatalf("Load(missing) = %v, %v; want nil, nil", data, err)
	}

	h, err := c.OpenSnapshot(ctx, "slot1", true)
	if err != nil {
		t.Fatal(err)
	}
	if h.HasConflict {
		t.Error("mock snapshot reported a conflict")
	}
	cover := []byte("png")
	meta := domain.SaveGameMetadata{Description: "desc", PlayedTimeMillis: 1000, CoverImage: cover}
	if err := c.CommitSnapshot(ctx, h, []byte("state"), meta); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if err := c.CommitSnapshot(ctx, h, []byte("again"), meta); !domain.IsNotFound(err) {
		t.Errorf("commit on a closed handle err = %v, want NotFound", err)
	}

	data, err = c.Load(ctx, "slot1")
	if err != nil || string(data) != "state" {
		t.Fatalf("Load() = %q, %v", data, err)
	}

	img, err := c.DownloadCoverImage(ctx, CoverURIPrefix+"slot1")
	if err != nil || !bytes.Equal(img, cover) {
		t.Errorf("DownloadCoverImage() = %q, %v", img, err)
	}

	big := domain.SaveGameMetadata{CoverImage: make([]byte, domain.CoverImageHardLimit+1)}
	h, _ = c.OpenSnapshot(ctx, "slot1", false)
	if err := c.CommitSnapshot(ctx, h, []byte("x"), big); !errors.Is(err, domain.ErrDataTooLarge) {
		t.Errorf("oversized cover err = %v", err)
	}

	if err := c.DeleteSnapshot(ctx, "slot1"); err != nil {
		t.Fatal(err)
	}
	if data, _ := c.Load(ctx, "slot1"); data != nil {
		t.Errorf("Load after delete = %q", data)
	}
	if err := c.ResolveConflict(ctx, domain.ResolutionUseLocal); !errors.Is(err, domain.ErrNoConflict) {
		t.Errorf("ResolveConflict err = %v", err)
	}
}

func TestStatsAndEvents(t *testing.T) {
	ctx := context.Background()
	s := testSettings()
	s.ChurnProbability = 0.42

	stats, err := NewStats(s, testOptions()).LoadPlayerStats(ctx, false)
	if err != nil || stats.ChurnProbability != 0.42 || stats.NumberOfSessions != 42 {
		t.Fatalf("stats = %+v, %v", stats, err)
	}

	ev := NewEvents(s, testOptions())
	for i := 0; i < 3; i++ {
		if err := ev.Increment(ctx, "event_trade", 2); err != nil {
			t.Fatal(err)
		}
	}
	one, err := ev.Load(ctx, "event_trade")
	if err != nil || one.Value != 6 {
		t.Errorf("Load() = %+v, %v", one, err)
	}
	zero, _ := ev.Load(ctx, "event_unknown")
	if zero.Value != 0 {
		t.Errorf("unknown event value = %d", zero.Value)
	}
	all, _ := ev.LoadAll(ctx)
	if len(all) != 1 {
		t.Errorf("LoadAll() = %+v", all)
	}

	s.SimulateErrors = true
	_, err = NewStats(s, testOptions()).LoadPlayerStats(ctx, false)
	if domain.KindOf(err) != domain.KindNetworkError {
		t.Errorf("simulated stats err = %v", err)
	}
	var observed *domain.Error
	failing := NewEvents(s, testOptions())
	failing.OnError(func(e *domain.Error) { observed = e })
	if err := failing.Increment(ctx, "event_trade", 1); err == nil || observed == nil {
		t.Errorf("simulated increment err = %v, observed %v", err, observed)
	}
}

func TestClosedAndCanceled(t *testing.T) {
	opts := testOptions()
	opts.Delay = time.Hour
	st := NewStats(testSettings(), opts)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)
	if _, err := st.LoadPlayerStats(ctx, false); !domain.IsCanceled(err) {
		t.Errorf("err = %v, want canceled", err)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := st.LoadPlayerStats(ctx, false); !domain.IsTimeout(err) {
		t.Errorf("err = %v, want a deadline to classify as timeout", err)
	}

	if err := st.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadPlayerStats(context.Background(), false); !errors.Is(err, domain.ErrClosed) {
		t.Errorf("after Close err = %v, want ErrClosed", err)
	}
}
