package simbridge

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/gamesvc-go/internal/bridge"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/storage"
	"github.com/yndnr/gamesvc-go/internal/telemetry/logger"
)

// DefaultLatency is the delay before each simulated response.
const DefaultLatency = 20 * time.Millisecond

// queueSize bounds requests waiting for the worker.
const queueSize = 256

// Operation names accepted by FailNext and DropNext.
const (
	OpSignIn               = "signIn"
	OpServerSideAccess     = "serverSideAccess"
	OpScopedAccess         = "scopedAccess"
	OpUnlockAchievement    = "unlockAchievement"
	OpIncrementAchievement = "incrementAchievement"
	OpRevealAchievement    = "revealAchievement"
	OpUnlockMultiple       = "unlockMultiple"
	OpLoadAchievements     = "loadAchievements"
	OpShowAchievementsUI   = "showAchievementsUI"
	OpSubmitScore          = "submitScore"
	OpLoadTopScores        = "loadTopScores"
	OpLoadPlayerCentered   = "loadPlayerCenteredScores"
	OpShowLeaderboardUI    = "showLeaderboardUI"
	OpOpenSnapshot         = "openSnapshot"
	OpReadSnapshot         = "readSnapshot"
	OpCommitSnapshot       = "commitSnapshot"
	OpDeleteSnapshot       = "deleteSnapshot"
	OpShowSavedGamesUI     = "showSavedGamesUI"
	OpResolveConflict      = "resolveConflict"
	OpLoadStats            = "loadStats"
	OpIncrementEvent       = "incrementEvent"
	OpLoadEvents           = "loadEvents"
	OpLoadEvent            = "loadEvent"
)

// Storage key prefixes.
const (
	keySnapshots    = "sim/snapshots/"
	keyCovers       = "sim/covers/"
	keyAchievements = "sim/achievements/"
	keyScores       = "sim/scores/"
	keyEvents       = "sim/events/"
	keyStats        = "sim/stats"
)

type fault struct {
	drop    bool
	code    int
	message string
}

// Platform simulates the vendor SDK over a KVEngine.
//
// Every request is answered on a single worker goroutine after the
// configured latency, so callbacks arrive off the caller's goroutine and in
// request order. Platform does not own the engine.
type Platform struct {
	engine       storage.KVEngine
	latency      time.Duration
	logger       logger.Logger
	now          func() time.Time
	player       domain.Player
	profile      domain.IDTokenClaims
	consent      bool
	coverBaseURL string

	queue     chan func()
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once

	mu        sync.Mutex
	faults    map[string][]fault
	signedIn  bool
	handles   map[string]string // native handle -> filename
	injected  map[string]snapshotRecord
	conflicts map[string]openConflict // local native handle -> conflict

	auth         *authAPI
	achievements *achievementsAPI
	leaderboards *leaderboardsAPI
	cloudSave    *cloudSaveAPI
	stats        *statsAPI
	events       *eventsAPI
}

// Option configures a Platform.
type Option func(*Platform)

// WithLatency sets the delay before each response.
func WithLatency(d time.Duration) Option {
	return func(p *Platform) {
		if d >= 0 {
			p.latency = d
		}
	}
}

// WithLogger sets the platform logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Platform) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithPlayer sets the player signed in by SignIn.
func WithPlayer(player domain.Player) Option {
	return func(p *Platform) {
		p.player = player
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Platform) {
		if now != nil {
			p.now = now
		}
	}
}

// WithCoverBaseURL sets the prefix of cover image URIs. Covers are served
// under it by CoverHandler.
func WithCoverBaseURL(base string) Option {
	return func(p *Platform) {
		p.coverBaseURL = base
	}
}

// WithConsent sets whether the player grants scoped access requests.
func WithConsent(granted bool) Option {
	return func(p *Platform) {
		p.consent = granted
	}
}

// WithProfile sets the profile claims returned with scoped access.
func WithProfile(claims domain.IDTokenClaims) Option {
	return func(p *Platform) {
		p.profile = claims
	}
}

// New creates a platform and starts its worker.
func New(engine storage.KVEngine, opts ...Option) *Platform {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Platform{
		engine:  engine,
		latency: DefaultLatency,
		logger:  logger.Default(),
		now:     time.Now,
		player: domain.Player{
			ID:          "sim_player",
			DisplayName: "Sim Player",
		},
		consent:      true,
		coverBaseURL: "sim://covers/",
		queue:        make(chan func(), queueSize),
		ctx:          ctx,
		cancel:       cancel,
		faults:       make(map[string][]fault),
		handles:      make(map[string]string),
		injected:     make(map[string]snapshotRecord),
		conflicts:    make(map[string]openConflict),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "simbridge")

	p.auth = &authAPI{p: p}
	p.achievements = &achievementsAPI{p: p}
	p.leaderboards = &leaderboardsAPI{p: p}
	p.cloudSave = &cloudSaveAPI{p: p}
	p.stats = &statsAPI{p: p}
	p.events = &eventsAPI{p: p}

	p.wg.Add(1)
	go p.loop()
	return p
}

// Close stops the worker. Requests still queued are dropped.
func (p *Platform) Close() error {
	p.closeOnce.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
	return nil
}

func (p *Platform) loop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.queue:
			if p.latency > 0 {
				t := time.NewTimer(p.latency)
				select {
				case <-t.C:
				case <-p.ctx.Done():
					t.Stop()
					return
				}
			}
			task()
		}
	}
}

// FailNext makes the next request of op answer with a vendor error.
func (p *Platform) FailNext(op string, code int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.faults[op] = append(p.faults[op], fault{code: code, message: message})
}

// DropNext makes the next request of op never answer.
func (p *Platform) DropNext(op string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.faults[op] = append(p.faults[op], fault{drop: true})
}

func (p *Platform) takeFault(op string) (fault, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	q := p.faults[op]
	if len(q) == 0 {
		return fault{}, false
	}
	f := q[0]
	if len(q) == 1 {
		delete(p.faults, op)
	} else {
		p.faults[op] = q[1:]
	}
	return f, true
}

// submit queues run for the worker. A pending fault for op replaces it with
// fail, or with nothing for a dropped response.
func (p *Platform) submit(op string, run func(ctx context.Context), fail func(code int, message string)) {
	f, faulted := p.takeFault(op)
	task := func() {
		if !faulted {
			run(p.ctx)
			return
		}
		if f.drop {
			p.logger.Debug("dropping response", "op", op)
			return
		}
		p.logger.Debug("injecting failure", "op", op, "code", f.code)
		fail(f.code, f.message)
	}

	select {
	case p.queue <- task:
	case <-p.ctx.Done():
	}
}

func (p *Platform) nowMillis() int64 {
	return p.now().UnixMilli()
}

func newHandle() string {
	return strings.ToLower(ulid.MustNew(ulid.Now(), ulid.Monotonic(rand.Reader, 0)).String())
}

func (p *Platform) getJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, err := p.engine.Get(ctx, []byte(key))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, v)
}

func (p *Platform) putJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.engine.Set(ctx, []byte(key), raw)
}

func scanJSON[T any](ctx context.Context, engine storage.KVEngine, prefix string) ([]T, error) {
	var (
		out    []T
		decErr error
	)
	err := engine.Scan(ctx, []byte(prefix), func(_, value []byte) bool {
		var v T
		if decErr = json.Unmarshal(value, &v); decErr != nil {
			return false
		}
		out = append(out, v)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, decErr
}

// Auth returns the sign-in API.
func (p *Platform) Auth() bridge.Auth { return p.auth }

// Achievements returns the achievements API.
func (p *Platform) Achievements() bridge.Achievements { return p.achievements }

// Leaderboards returns the leaderboards API.
func (p *Platform) Leaderboards() bridge.Leaderboards { return p.leaderboards }

// CloudSave returns the saved games API.
func (p *Platform) CloudSave() bridge.CloudSave { return p.cloudSave }

// Stats returns the player stats API.
func (p *Platform) Stats() bridge.Stats { return p.stats }

// Events returns the events API.
func (p *Platform) Events() bridge.Events { return p.events }
