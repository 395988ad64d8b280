package config

import (
	"fmt"
	"time"

	"github.com/yndnr/gamesvc-go/internal/infra/confloader"
)

// LegacyMockConfig is the version 1 document: a flat list of mock settings
// using the field names of the retired mock config asset.
type LegacyMockConfig struct {
	AuthSucceeds         bool    `koanf:"authSucceeds"`
	MockPlayerID         string  `koanf:"mockPlayerId"`
	MockDisplayName      string  `koanf:"mockDisplayName"`
	MockAuthErrorType    string  `koanf:"mockAuthErrorType"`
	MockConsentGranted   bool    `koanf:"mockConsentGranted"`
	MockEmail            string  `koanf:"mockEmail"`
	MockEmailVerified    bool    `koanf:"mockEmailVerified"`
	MockFullName         string  `koanf:"mockFullName"`
	MockGivenName        string  `koanf:"mockGivenName"`
	MockFamilyName       string  `koanf:"mockFamilyName"`
	MockPictureURL       string  `koanf:"mockPictureUrl"`
	MockLocale           string  `koanf:"mockLocale"`
	AuthDelaySeconds     float64 `koanf:"authDelaySeconds"`
	MockUnlockedCount    int     `koanf:"mockUnlockedCount"`
	MockScore            int64   `koanf:"mockScore"`
	MockChurnProbability float64 `koanf:"mockChurnProbability"`
}

var legacyKeys = []string{
	"authSucceeds", "mockPlayerId", "mockDisplayName", "mockAuthErrorType",
	"mockUnlockedCount", "mockScore", "authDelaySeconds",
}

var legacyAuthErrorTypes = map[string]AuthErrorType{
	"UserCancelled":  AuthErrorUserCanceled,
	"NoConnection":   AuthErrorNoConnection,
	"SignInRequired": AuthErrorSignInRequired,
	"SignInFailed":   AuthErrorSignInFailed,
	"Timeout":        AuthErrorTimeout,
	"Unknown":        AuthErrorUnknown,
}

func defaultLegacy() LegacyMockConfig {
	m := DefaultMockSettings()
	return LegacyMockConfig{
		AuthSucceeds:         m.AuthSucceeds,
		MockPlayerID:         m.PlayerID,
		MockDisplayName:      m.DisplayName,
		MockAuthErrorType:    "UserCancelled",
		MockConsentGranted:   m.ConsentGranted,
		MockEmail:            m.Email,
		MockEmailVerified:    m.EmailVerified,
		MockFullName:         m.FullName,
		MockGivenName:        m.GivenName,
		MockFamilyName:       m.FamilyName,
		MockPictureURL:       m.PictureURL,
		MockLocale:           m.Locale,
		AuthDelaySeconds:     m.AuthDelay.Seconds(),
		MockUnlockedCount:    m.UnlockedCount,
		MockScore:            m.Score,
		MockChurnProbability: m.ChurnProbability,
	}
}

// MockSettings converts the legacy document into version 2 mock settings.
func (l LegacyMockConfig) MockSettings() (MockSettings, error) {
	errType, ok := legacyAuthErrorTypes[l.MockAuthErrorType]
	if !ok {
		return MockSettings{}, fmt.Errorf("unknown mockAuthErrorType %q", l.MockAuthErrorType)
	}
	return MockSettings{
		AuthSucceeds:     l.AuthSucceeds,
		PlayerID:         l.MockPlayerID,
		DisplayName:      l.MockDisplayName,
		AuthErrorType:    errType,
		ConsentGranted:   l.MockConsentGranted,
		Email:            l.MockEmail,
		EmailVerified:    l.MockEmailVerified,
		FullName:         l.MockFullName,
		GivenName:        l.MockGivenName,
		FamilyName:       l.MockFamilyName,
		PictureURL:       l.MockPictureURL,
		Locale:           l.MockLocale,
		AuthDelay:        time.Duration(l.AuthDelaySeconds * float64(time.Second)),
		UnlockedCount:    l.MockUnlockedCount,
		Score:            l.MockScore,
		ChurnProbability: l.MockChurnProbability,
	}, nil
}

// DetectVersion reports the version of a YAML configuration document.
//
// An explicit version key wins. Otherwise a document carrying any of the
// legacy flat mock keys is version 1 and anything else is treated as the
// current version.
func DetectVersion(data []byte) (int, error) {
	l := confloader.NewLoader()
	if err := l.LoadBytes(data); err != nil {
		return 0, err
	}
	return detectVersion(l), nil
}

func detectVersion(l *confloader.Loader) int {
	if l.Exists("version") {
		return l.GetInt("version")
	}
	for _, k := range legacyKeys {
		if l.Exists(k) {
			return 1
		}
	}
	return CurrentVersion
}

// Migrate parses a YAML configuration document of any supported version and
// returns it as a current version config layered over Default.
func Migrate(data []byte) (*Config, error) {
	l := confloader.NewLoader()
	if err := l.LoadBytes(data); err != nil {
		return nil, err
	}

	cfg := Default()
	switch v := detectVersion(l); v {
	case 1:
		legacy := defaultLegacy()
		if err := l.Unmarshal(&legacy); err != nil {
			return nil, fmt.Errorf("decode version 1 config: %w", err)
		}
		mock, err := legacy.MockSettings()
		if err != nil {
			return nil, fmt.Errorf("migrate version 1 config: %w", err)
		}
		cfg.Mock = mock
	case CurrentVersion:
		if err := l.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config version %d", v)
	}

	cfg.Version = CurrentVersion
	return cfg, nil
}
