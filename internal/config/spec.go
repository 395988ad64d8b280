package config

import "time"

// CurrentVersion is the configuration document version written by this release.
const CurrentVersion = 2

// Config is the root configuration for gamesvc.
type Config struct {
	Version   int              `koanf:"version" yaml:"version"`
	Services  ServicesSection  `koanf:"services" yaml:"services"`
	Sidekick  SidekickSection  `koanf:"sidekick" yaml:"sidekick"`
	Quality   QualitySection   `koanf:"quality" yaml:"quality"`
	CloudSave CloudSaveSection `koanf:"cloud_save" yaml:"cloud_save"`
	Bridge    BridgeSection    `koanf:"bridge" yaml:"bridge"`
	Events    EventsSection    `koanf:"events" yaml:"events"`
	Dispatch  DispatchSection  `koanf:"dispatch" yaml:"dispatch"`
	Storage   StorageSection   `koanf:"storage" yaml:"storage"`
	Mock      MockSettings     `koanf:"mock" yaml:"mock"`
	Log       LogSection       `koanf:"log" yaml:"log"`
	Metrics   MetricsSection   `koanf:"metrics" yaml:"metrics"`
}

// ServicesSection toggles individual providers.
type ServicesSection struct {
	Auth         bool `koanf:"auth" yaml:"auth"`
	Achievements bool `koanf:"achievements" yaml:"achievements"`
	Leaderboards bool `koanf:"leaderboards" yaml:"leaderboards"`
	CloudSave    bool `koanf:"cloud_save" yaml:"cloud_save"`
	Events       bool `koanf:"events" yaml:"events"`
	Stats        bool `koanf:"stats" yaml:"stats"`
}

// SidekickSection configures Play Console Sidekick readiness.
type SidekickSection struct {
	// Ready opts into Sidekick. Requires auth and achievements at minimum.
	Ready bool `koanf:"ready" yaml:"ready"`
}

// QualitySection holds quality checklist values.
type QualitySection struct {
	ExpectedAchievementCount int `koanf:"expected_achievement_count" yaml:"expected_achievement_count"`
}

// CloudSaveSection configures the saved games flow.
type CloudSaveSection struct {
	// ConflictTimeout bounds how long a conflict waits for a caller decision
	// before resolving by timestamp. Zero or negative resolves immediately.
	ConflictTimeout time.Duration `koanf:"conflict_timeout" yaml:"conflict_timeout"`

	// RequireMetadata emits warnings for commits without description,
	// played time or cover image.
	RequireMetadata bool `koanf:"require_metadata" yaml:"require_metadata"`

	// CoverCAFile is a PEM bundle trusted, on top of the system roots,
	// for cover image downloads.
	CoverCAFile string `koanf:"cover_ca_file" yaml:"cover_ca_file,omitempty"`
}

// BridgeSection configures calls into the vendor bridge.
type BridgeSection struct {
	// Timeout bounds each cloud save bridge call.
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`

	// Latency is the simulated response delay of the simulated bridge.
	Latency time.Duration `koanf:"latency" yaml:"latency"`

	// CoverBaseURL prefixes the cover image URIs the simulated bridge
	// reports. Empty keeps its sim:// default.
	CoverBaseURL string `koanf:"cover_base_url" yaml:"cover_base_url,omitempty"`
}

// EventsSection configures event increment batching.
type EventsSection struct {
	FlushInterval time.Duration `koanf:"flush_interval" yaml:"flush_interval"`
}

// DispatchSection configures the callback dispatcher.
type DispatchSection struct {
	QueueSize int `koanf:"queue_size" yaml:"queue_size"`

	// Tick is the drain interval. Zero drains as soon as work arrives.
	Tick time.Duration `koanf:"tick" yaml:"tick"`
}

// StorageSection configures local persistence.
type StorageSection struct {
	// Engine is "badger" or "memory".
	Engine string `koanf:"engine" yaml:"engine"`
	Dir    string `koanf:"dir" yaml:"dir"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// MetricsSection configures the metrics endpoint.
type MetricsSection struct {
	// Addr serves /metrics when non-empty.
	Addr string `koanf:"addr" yaml:"addr"`
}
