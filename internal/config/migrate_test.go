package config

import (
	"testing"
	"time"
)

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int
	}{
		{"explicit", "version: 2\n", 2},
		{"explicit legacy", "version: 1\n", 1},
		{"legacy keys", "authSucceeds: false\nmockScore: 5\n", 1},
		{"sections only", "log:\n  level: info\n", CurrentVersion},
		{"empty", "", CurrentVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectVersion([]byte(tt.doc))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("DetectVersion() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMigrate_Legacy(t *testing.T) {
	doc := `
authSucceeds: false
mockPlayerId: legacy_player
mockAuthErrorType: NoConnection
authDelaySeconds: 1.5
mockScore: 4200
mockChurnProbability: 0.4
`
	cfg, err := Migrate([]byte(doc))
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d", cfg.Version)
	}
	m := cfg.Mock
	if m.AuthSucceeds || m.PlayerID != "legacy_player" || m.AuthErrorType != AuthErrorNoConnection {
		t.Errorf("auth settings not migrated: %+v", m)
	}
	if m.AuthDelay != 1500*time.Millisecond {
		t.Errorf("AuthDelay = %v", m.AuthDelay)
	}
	if m.Score != 4200 || m.ChurnProbability != 0.4 {
		t.Errorf("Score = %d, Churn = %v", m.Score, m.ChurnProbability)
	}
	// Keys absent from the legacy document keep their defaults.
	if m.DisplayName != "Test Player" || m.UnlockedCount != 0 {
		t.Errorf("defaults lost: %+v", m)
	}
	if cfg.CloudSave.ConflictTimeout != DefaultConflictTimeout {
		t.Errorf("non-mock sections should be defaults")
	}
	if err := Verify(cfg); err != nil {
		t.Errorf("migrated config fails Verify: %v", err)
	}
}

func TestMigrate_Errors(t *testing.T) {
	if _, err := Migrate([]byte("version: 3\n")); err == nil {
		t.Error("expected error for future version")
	}
	if _, err := Migrate([]byte("mockAuthErrorType: Exploded\n")); err == nil {
		t.Error("expected error for unknown legacy auth error type")
	}
	if _, err := Migrate([]byte("version: [\n")); err == nil {
		t.Error("expected parse error")
	}
}

func TestMigrate_Current(t *testing.T) {
	cfg, err := Migrate([]byte("version: 2\nservices:\n  events: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Services.Events || !cfg.Services.Auth {
		t.Errorf("services = %+v", cfg.Services)
	}
}
