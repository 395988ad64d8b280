package config

import (
	"github.com/yndnr/gamesvc-go/internal/infra/confloader"
	"github.com/yndnr/gamesvc-go/internal/telemetry/logger"
)

// Watch reloads the file at path whenever it changes and passes every
// successfully verified result to apply. Invalid documents are logged and
// skipped. The caller stops the returned watcher.
func Watch(path string, overrides map[string]any, l logger.Logger, apply func(*Config)) (*confloader.Watcher, error) {
	if l == nil {
		l = logger.Default()
	}
	w, err := confloader.NewWatcher(path, confloader.WithWatcherLogger(l))
	if err != nil {
		return nil, err
	}
	w.OnChange(func(p string) {
		cfg, err := Load(p, overrides)
		if err != nil {
			l.Warn("configuration reload rejected", "file", p, "error", err)
			return
		}
		apply(cfg)
	})
	w.StartAsync()
	return w, nil
}
