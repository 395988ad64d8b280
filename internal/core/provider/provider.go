// Package provider defines the service interfaces shared by the
// bridge-backed controllers and the in-process mocks.
//
// Every blocking call takes a context. Canceling it settles the caller's
// pending call with a Canceled error; the vendor call already in flight is
// left to finish. Observer callbacks run on the owner's dispatch goroutine.
package provider

import (
	"context"

	"github.com/yndnr/gamesvc-go/internal/core/domain"
)

// Auth signs the player in and brokers server-side access.
type Auth interface {
	Authenticate(ctx context.Context) (*domain.Player, error)
	RequestServerSideAccess(ctx context.Context, clientID string, forceRefresh bool) (string, error)
	RequestServerSideAccessWithScopes(ctx context.Context, clientID string, forceRefresh bool, scopes []domain.AuthScope) (*domain.AuthResponse, error)

	IsAuthenticated() bool
	CurrentPlayer() *domain.Player

	OnAuthenticated(fn func(*domain.Player))
	OnAuthFailed(fn func(*domain.Error))

	Close() error
}

// Achievements manages achievement progress.
type Achievements interface {
	Unlock(ctx context.Context, id string) error
	Increment(ctx context.Context, id string, steps int) error
	Reveal(ctx context.Context, id string) error
	UnlockMultiple(ctx context.Context, ids []string) error
	Load(ctx context.Context, forceReload bool) ([]domain.Achievement, error)
	ShowUI(ctx context.Context) error

	OnUnlocked(fn func(id string))
	OnIncremented(fn func(id string, currentSteps int))
	OnRevealed(fn func(id string))
	OnError(fn func(*domain.Error))

	Close() error
}

// Leaderboards submits and pages scores.
type Leaderboards interface {
	SubmitScore(ctx context.Context, leaderboardID string, score int64, tag string) error
	LoadTopScores(ctx context.Context, q domain.LeaderboardQuery) ([]domain.LeaderboardEntry, error)
	LoadPlayerCenteredScores(ctx context.Context, q domain.LeaderboardQuery) ([]domain.LeaderboardEntry, error)
	ShowUI(ctx context.Context, leaderboardID string) error
	ShowAllUI(ctx context.Context) error

	OnScoreSubmitted(fn func(leaderboardID string, score int64))
	OnScoresLoaded(fn func(leaderboardID string, entries []domain.LeaderboardEntry))
	OnError(fn func(*domain.Error))

	Close() error
}

// CloudSave mediates saved game transactions.
type CloudSave interface {
	OpenSnapshot(ctx context.Context, filename string, createIfNotFound bool) (*domain.SnapshotHandle, error)
	ReadSnapshot(ctx context.Context, h *domain.SnapshotHandle) ([]byte, error)
	CommitSnapshot(ctx context.Context, h *domain.SnapshotHandle, data []byte, meta domain.SaveGameMetadata) error
	DeleteSnapshot(ctx context.Context, filename string) error
	ShowSavedGamesUI(ctx context.Context, title string, allowAdd, allowDelete bool, maxSnapshots int) (string, error)

	// Save opens filename, creating it if needed, resolves any conflict and
	// commits data.
	Save(ctx context.Context, filename string, data []byte, meta domain.SaveGameMetadata) error

	// Load opens filename, resolves any conflict and reads it. A missing
	// slot returns nil data and no error.
	Load(ctx context.Context, filename string) ([]byte, error)

	// ResolveSnapshotConflict settles the conflict reported with h, waiting
	// for ResolveConflict up to the conflict timeout, and returns the
	// reopened handle.
	ResolveSnapshotConflict(ctx context.Context, h *domain.SnapshotHandle) (*domain.SnapshotHandle, error)

	// ResolveConflict decides the conflict currently awaiting a decision.
	ResolveConflict(ctx context.Context, r domain.ConflictResolution) error

	DownloadCoverImage(ctx context.Context, uri string) ([]byte, error)
	ReleaseCoverImage(uri string)
	ReleaseAllCoverImages()

	OnSnapshotOpened(fn func(*domain.SnapshotHandle))
	OnSnapshotCommitted(fn func(filename string))
	OnConflictDetected(fn func(*domain.SavedGameConflict))
	OnError(fn func(*domain.Error))

	Close() error
}

// Stats loads player engagement statistics.
type Stats interface {
	LoadPlayerStats(ctx context.Context, forceReload bool) (*domain.PlayerStats, error)

	OnStatsLoaded(fn func(*domain.PlayerStats))
	OnError(fn func(*domain.Error))

	Close() error
}

// Events records game event counters.
type Events interface {
	Increment(ctx context.Context, id string, steps int) error
	Flush(ctx context.Context) error
	LoadAll(ctx context.Context) ([]domain.Event, error)
	Load(ctx context.Context, id string) (*domain.Event, error)

	OnError(fn func(*domain.Error))

	Close() error
}
