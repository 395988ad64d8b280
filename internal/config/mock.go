package config

import "time"

// AuthErrorType selects the failure the mock auth provider reports.
type AuthErrorType string

// Auth error types.
const (
	AuthErrorUserCanceled   AuthErrorType = "user_canceled"
	AuthErrorNoConnection   AuthErrorType = "no_connection"
	AuthErrorSignInRequired AuthErrorType = "sign_in_required"
	AuthErrorSignInFailed   AuthErrorType = "sign_in_failed"
	AuthErrorTimeout        AuthErrorType = "timeout"
	AuthErrorUnknown        AuthErrorType = "unknown"
)

// MockSettings drives the in-process mock providers.
type MockSettings struct {
	AuthSucceeds  bool          `koanf:"auth_succeeds" yaml:"auth_succeeds"`
	PlayerID      string        `koanf:"player_id" yaml:"player_id"`
	DisplayName   string        `koanf:"display_name" yaml:"display_name"`
	AuthErrorType AuthErrorType `koanf:"auth_error_type" yaml:"auth_error_type"`

	ConsentGranted bool   `koanf:"consent_granted" yaml:"consent_granted"`
	Email          string `koanf:"email" yaml:"email"`
	EmailVerified  bool   `koanf:"email_verified" yaml:"email_verified"`
	FullName       string `koanf:"full_name" yaml:"full_name"`
	GivenName      string `koanf:"given_name" yaml:"given_name"`
	FamilyName     string `koanf:"family_name" yaml:"family_name"`
	PictureURL     string `koanf:"picture_url" yaml:"picture_url"`
	Locale         string `koanf:"locale" yaml:"locale"`

	AuthDelay time.Duration `koanf:"auth_delay" yaml:"auth_delay"`

	// UnlockedCount is how many catalog achievements start unlocked.
	UnlockedCount int `koanf:"unlocked_count" yaml:"unlocked_count"`

	// Score is the mock player's starting high score. Zero leaves the
	// player off the board.
	Score            int64   `koanf:"score" yaml:"score"`
	ChurnProbability float64 `koanf:"churn_probability" yaml:"churn_probability"`

	// SimulateErrors makes the mock stats and events providers fail with a
	// network error.
	SimulateErrors bool `koanf:"simulate_errors" yaml:"simulate_errors"`
}

// AuthErrorCode returns the vendor auth status code for the configured error.
func (m MockSettings) AuthErrorCode() int {
	switch m.AuthErrorType {
	case AuthErrorUserCanceled:
		return 1
	case AuthErrorNoConnection:
		return 2
	case AuthErrorSignInRequired:
		return 3
	case AuthErrorSignInFailed:
		return 4
	case AuthErrorTimeout:
		return -1
	default:
		return 0
	}
}

// AuthErrorMessage returns the message reported with AuthErrorCode.
func (m MockSettings) AuthErrorMessage() string {
	switch m.AuthErrorType {
	case AuthErrorUserCanceled:
		return "User cancelled sign-in"
	case AuthErrorNoConnection:
		return "Network connection error - check your internet"
	case AuthErrorSignInRequired:
		return "Sign in required to access this feature"
	case AuthErrorSignInFailed:
		return "Google Play Games sign-in failed"
	case AuthErrorTimeout:
		return "Authentication timed out - please try again"
	default:
		return "An unknown error occurred"
	}
}

func validAuthErrorType(t AuthErrorType) bool {
	switch t {
	case AuthErrorUserCanceled, AuthErrorNoConnection, AuthErrorSignInRequired,
		AuthErrorSignInFailed, AuthErrorTimeout, AuthErrorUnknown:
		return true
	}
	return false
}
