package domain

// AchievementState is the visibility state of an achievement.
type AchievementState int

// Achievement states.
const (
	AchievementHidden AchievementState = iota
	AchievementRevealed
	AchievementUnlocked
)

// String returns the state name.
func (s AchievementState) String() string {
	switch s {
	case AchievementHidden:
		return "hidden"
	case AchievementRevealed:
		return "revealed"
	case AchievementUnlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// AchievementType distinguishes one-shot from step-based achievements.
type AchievementType int

// Achievement types.
const (
	AchievementStandard AchievementType = iota
	AchievementIncremental
)

// String returns the type name.
func (t AchievementType) String() string {
	if t == AchievementIncremental {
		return "incremental"
	}
	return "standard"
}

// Achievement is an achievement and the player's progress on it.
type Achievement struct {
	ID           string           `json:"achievementId"`
	Name         string           `json:"name"`
	Description  string           `json:"description" table:"wide"`
	State        AchievementState `json:"state"`
	Type         AchievementType  `json:"type"`
	CurrentSteps int              `json:"currentSteps"`
	TotalSteps   int              `json:"totalSteps"`
	XPValue      int              `json:"xpValue"`

	// UnlockedTimestamp is the unlock time (Unix milliseconds), 0 if locked.
	UnlockedTimestamp int64 `json:"unlockedTimestamp" table:"wide"`

	RevealedIconURL string `json:"revealedIconUrl" table:"wide"`
	UnlockedIconURL string `json:"unlockedIconUrl" table:"wide"`
}

// IsUnlocked reports whether the achievement is unlocked.
func (a *Achievement) IsUnlocked() bool {
	return a.State == AchievementUnlocked
}

// IsRevealed reports whether the achievement is visible to the player.
func (a *Achievement) IsRevealed() bool {
	return a.State != AchievementHidden
}

// ProgressPercentage returns progress in [0, 100] for incremental achievements.
func (a *Achievement) ProgressPercentage() float64 {
	if a.Type != AchievementIncremental || a.TotalSteps == 0 {
		return 0
	}
	return float64(a.CurrentSteps) / float64(a.TotalSteps) * 100
}

// ValidateAchievementID rejects empty ids.
func ValidateAchievementID(id string) error {
	if id == "" {
		return ErrMissingArgument.WithDetails("achievement id is required")
	}
	return nil
}

// ValidateSteps rejects non-positive step counts.
func ValidateSteps(steps int) error {
	if steps <= 0 {
		return ErrInvalidArgument.WithDetails("steps must be positive")
	}
	return nil
}
