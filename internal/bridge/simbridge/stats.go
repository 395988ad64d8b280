package simbridge

import (
	"context"

	"github.com/yndnr/gamesvc-go/internal/bridge"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
)

type statsAPI struct {
	p  *Platform
	cb holder[bridge.StatsCallback]
}

var _ bridge.Stats = (*statsAPI)(nil)

func (s *statsAPI) SetCallback(cb bridge.StatsCallback) {
	s.cb.set(cb)
}

func (s *statsAPI) fail(code int, msg string) {
	s.cb.with(func(cb bridge.StatsCallback) { cb.OnStatsError(code, msg) })
}

// LoadPlayerStats answers with the stored stats, or zero stats for a new
// player.
func (s *statsAPI) LoadPlayerStats(bool) {
	s.p.submit(OpLoadStats, func(ctx context.Context) {
		var stats domain.PlayerStats
		if _, err := s.p.getJSON(ctx, keyStats, &stats); err != nil {
			s.fail(domain.CodeInternalError, err.Error())
			return
		}
		doc := bridge.EncodeStats(&stats)
		s.cb.with(func(cb bridge.StatsCallback) { cb.OnStatsLoaded(doc) })
	}, s.fail)
}
