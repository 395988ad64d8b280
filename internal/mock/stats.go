package mock

import (
	"context"

	"github.com/yndnr/gamesvc-go/internal/bridge/simbridge"
	"github.com/yndnr/gamesvc-go/internal/config"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/observer"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
)

// Stats is the mock player stats provider.
type Stats struct {
	core

	onLoaded observer.List[func(*domain.PlayerStats)]
	onError  observer.List[func(*domain.Error)]
}

var _ provider.Stats = (*Stats)(nil)

// NewStats creates the provider.
func NewStats(settings config.MockSettings, opts Options) *Stats {
	s := &Stats{}
	s.init(domain.SubsystemStats, settings, opts)
	return s
}

// LoadPlayerStats returns the demo stats with the configured churn
// probability, or a network error when errors are simulated.
func (s *Stats) LoadPlayerStats(ctx context.Context, _ bool) (*domain.PlayerStats, error) {
	if err := s.wait(ctx, s.delay); err != nil {
		return nil, err
	}
	if s.settings.SimulateErrors {
		e := domain.NewError(domain.SubsystemStats, domain.CodeNetworkError, "Simulated network error", "")
		s.onError.Each(func(fn func(*domain.Error)) { fn(e) })
		return nil, e
	}

	stats := *simbridge.DefaultSeed().Stats
	stats.ChurnProbability = s.settings.ChurnProbability
	s.onLoaded.Each(func(fn func(*domain.PlayerStats)) { fn(&stats) })
	return &stats, nil
}

// OnStatsLoaded registers fn for every load.
func (s *Stats) OnStatsLoaded(fn func(*domain.PlayerStats)) { s.onLoaded.Add(fn) }

// OnError registers fn for every simulated error.
func (s *Stats) OnError(fn func(*domain.Error)) { s.onError.Add(fn) }
