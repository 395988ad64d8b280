package bridge

// AuthCallback receives sign-in and server-side access results.
type AuthCallback interface {
	OnAuthSuccess(playerID, displayName, avatarURI string)
	OnAuthFailure(code int, message string)
	OnServerSideAccessSuccess(authCode string)
	OnServerSideAccessFailure(code int, message string)
	OnScopedAccessSuccess(authCode, grantedScopesJSON, claimsJSON string)
	OnScopedAccessFailure(code int, message string)
}

// Auth is the vendor sign-in API.
type Auth interface {
	SetCallback(cb AuthCallback)
	SignIn()
	RequestServerSideAccess(clientID string, forceRefresh bool)
	RequestServerSideAccessWithScopes(clientID string, forceRefresh bool, scopesJSON string)
}

// AchievementsCallback receives achievement results.
type AchievementsCallback interface {
	OnAchievementUnlocked(id string)
	OnAchievementIncremented(id string, currentSteps, totalSteps int)
	OnAchievementRevealed(id string)
	OnAchievementsLoaded(achievementsJSON string)
	OnAchievementsUIClosed()
	OnAchievementError(code int, message, id string)
}

// Achievements is the vendor achievements API.
type Achievements interface {
	SetCallback(cb AchievementsCallback)
	Unlock(id string)
	Increment(id string, steps int)
	Reveal(id string)
	UnlockMultiple(idsJSON string)
	Load(forceReload bool)
	ShowUI()
}

// LeaderboardsCallback receives leaderboard results.
type LeaderboardsCallback interface {
	OnScoreSubmitted(leaderboardID string, score int64)
	OnScoresLoaded(leaderboardID, scoresJSON string)
	OnLeaderboardUIClosed()
	OnLeaderboardError(code int, message, leaderboardID string)
}

// Leaderboards is the vendor leaderboards API. timeSpan and collection use
// the vendor's integer values.
type Leaderboards interface {
	SetCallback(cb LeaderboardsCallback)
	SubmitScore(leaderboardID string, score int64, tag string)
	LoadTopScores(leaderboardID string, timeSpan, collection, maxResults int)
	LoadPlayerCenteredScores(leaderboardID string, timeSpan, collection, maxResults int)
	ShowUI(leaderboardID string)
	ShowAllUI()
}

// CloudSaveCallback receives saved games results.
//
// On a conflict the SDK reports OnConflictDetected before OnSnapshotOpened
// with hasConflict set.
type CloudSaveCallback interface {
	OnSnapshotOpened(filename, snapshotJSON string, hasConflict bool)
	OnSnapshotRead(filename string, data []byte)
	OnSnapshotCommitted(filename string)
	OnSnapshotDeleted(filename string)
	OnSavedGamesUIResult(selectedFilename string)
	OnConflictDetected(localJSON, serverJSON string, localData, serverData []byte)
	OnCloudSaveError(code int, message, filename string)
}

// CloudSave is the vendor saved games API.
type CloudSave interface {
	SetCallback(cb CloudSaveCallback)
	Open(filename string, createIfNotFound bool)
	Read(nativeHandle string)
	Commit(nativeHandle string, data []byte, description string, playedTimeMillis int64, coverImage []byte)
	Delete(filename string)
	ShowSavedGamesUI(title string, allowAdd, allowDelete bool, maxSnapshots int)

	// ResolveConflict picks a side of the conflict reported for
	// conflictHandle (the local snapshot's native handle) and reopens the
	// slot, answering with OnSnapshotOpened.
	ResolveConflict(conflictHandle, resolution string)
}

// StatsCallback receives player stats results.
type StatsCallback interface {
	OnStatsLoaded(statsJSON string)
	OnStatsError(code int, message string)
}

// Stats is the vendor player stats API.
type Stats interface {
	SetCallback(cb StatsCallback)
	LoadPlayerStats(forceReload bool)
}

// EventsCallback receives event results. Increments have no success
// callback.
type EventsCallback interface {
	OnEventsLoaded(eventsJSON string)
	OnEventLoaded(eventJSON string)
	OnEventsError(code int, message string)
}

// Events is the vendor events API.
type Events interface {
	SetCallback(cb EventsCallback)
	Increment(id string, steps int)
	LoadAll()
	Load(id string)
}
