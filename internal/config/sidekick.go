package config

// SidekickTier is the Play Console Sidekick readiness level.
type SidekickTier int

// Sidekick tiers.
const (
	SidekickNone SidekickTier = iota
	SidekickTier1
	SidekickTier2
)

func (t SidekickTier) String() string {
	switch t {
	case SidekickTier1:
		return "Tier1"
	case SidekickTier2:
		return "Tier2"
	default:
		return "None"
	}
}

// EvaluateSidekick reports the readiness tier of cfg.
//
// Tier 1 needs auth and achievements. Tier 2 additionally needs cloud save
// with required metadata.
func EvaluateSidekick(cfg *Config) SidekickTier {
	if cfg == nil || !cfg.Sidekick.Ready {
		return SidekickNone
	}
	tier1 := cfg.Services.Auth && cfg.Services.Achievements
	tier2 := tier1 && cfg.Services.CloudSave && cfg.CloudSave.RequireMetadata
	switch {
	case tier2:
		return SidekickTier2
	case tier1:
		return SidekickTier1
	default:
		return SidekickNone
	}
}

// MinSidekickAchievements is the achievement count Sidekick requires.
const MinSidekickAchievements = 10

// SidekickCheck is one readiness requirement. Tier 0 marks a
// recommendation.
type SidekickCheck struct {
	Tier        int    `json:"tier" yaml:"tier"`
	Name        string `json:"name" yaml:"name"`
	Pass        bool   `json:"pass" yaml:"pass"`
	Remediation string `json:"remediation,omitempty" yaml:"remediation,omitempty"`
}

// SidekickChecks lists the readiness requirements of cfg, tier 1 first.
func SidekickChecks(cfg *Config) []SidekickCheck {
	if cfg == nil {
		cfg = Default()
	}
	return []SidekickCheck{
		{Tier: 1, Name: "auth service enabled", Pass: cfg.Services.Auth,
			Remediation: "set services.auth"},
		{Tier: 1, Name: "achievements service enabled", Pass: cfg.Services.Achievements,
			Remediation: "set services.achievements"},
		{Tier: 1, Name: "expected achievement count >= 10",
			Pass:        cfg.Quality.ExpectedAchievementCount >= MinSidekickAchievements,
			Remediation: "set quality.expected_achievement_count to 10 or more"},
		{Tier: 2, Name: "cloud save service enabled", Pass: cfg.Services.CloudSave,
			Remediation: "set services.cloud_save"},
		{Tier: 2, Name: "cloud save metadata required", Pass: cfg.CloudSave.RequireMetadata,
			Remediation: "set cloud_save.require_metadata"},
		{Tier: 0, Name: "events service enabled", Pass: cfg.Services.Events,
			Remediation: "set services.events to track player milestones"},
		{Tier: 0, Name: "sidekick ready flag enabled", Pass: cfg.Sidekick.Ready,
			Remediation: "set sidekick.ready once every requirement passes"},
	}
}
