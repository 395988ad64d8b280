package config

import "time"

// Default configuration values.
const (
	DefaultExpectedAchievementCount = 10

	DefaultConflictTimeout = 60 * time.Second
	DefaultBridgeTimeout   = 30 * time.Second
	DefaultBridgeLatency   = 20 * time.Millisecond
	DefaultFlushInterval   = 5 * time.Second

	DefaultDispatchQueueSize = 1024
	DefaultDispatchTick      = 0

	EngineBadger = "badger"
	EngineMemory = "memory"

	DefaultStorageEngine = EngineBadger
	DefaultStorageDir    = ".gamesvc"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// DefaultMockSettings returns the mock provider defaults.
func DefaultMockSettings() MockSettings {
	return MockSettings{
		AuthSucceeds:     true,
		PlayerID:         "mock_player_12345",
		DisplayName:      "Test Player",
		AuthErrorType:    AuthErrorUserCanceled,
		ConsentGranted:   true,
		Email:            "testplayer@gmail.com",
		EmailVerified:    true,
		FullName:         "Test Player",
		GivenName:        "Test",
		FamilyName:       "Player",
		PictureURL:       "https://lh3.googleusercontent.com/a/mock-avatar=s96-c",
		Locale:           "en",
		AuthDelay:        500 * time.Millisecond,
		UnlockedCount:    0,
		Score:            1000,
		ChurnProbability: 0.15,
	}
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Services: ServicesSection{
			Auth:         true,
			Achievements: true,
			Leaderboards: true,
			CloudSave:    true,
			Events:       false,
			Stats:        true,
		},
		Quality: QualitySection{
			ExpectedAchievementCount: DefaultExpectedAchievementCount,
		},
		CloudSave: CloudSaveSection{
			ConflictTimeout: DefaultConflictTimeout,
			RequireMetadata: true,
		},
		Bridge: BridgeSection{
			Timeout: DefaultBridgeTimeout,
			Latency: DefaultBridgeLatency,
		},
		Events: EventsSection{
			FlushInterval: DefaultFlushInterval,
		},
		Dispatch: DispatchSection{
			QueueSize: DefaultDispatchQueueSize,
			Tick:      DefaultDispatchTick,
		},
		Storage: StorageSection{
			Engine: DefaultStorageEngine,
			Dir:    DefaultStorageDir,
		},
		Mock: DefaultMockSettings(),
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
