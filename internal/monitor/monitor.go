// Package monitor implements the activity sweep: a ticker that
// demotes participants who have sat AVAILABLE past an inactivity
// threshold down to AWAY, and tells everyone about it.
package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"wireline/internal/core"
	"wireline/internal/metrics"
	"wireline/internal/wire"
)

const sweepInterval = 10 * time.Second

// Monitor periodically demotes idle participants.
type Monitor struct {
	registry *core.Registry
	log      zerolog.Logger
	timeout  time.Duration
	interval time.Duration
}

// New builds a Monitor. timeout is the inactivity duration after which
// an AVAILABLE participant is moved to AWAY.
func New(registry *core.Registry, log zerolog.Logger, timeout time.Duration) *Monitor {
	return &Monitor{registry: registry, log: log, timeout: timeout, interval: sweepInterval}
}

// SweepInterval overrides the default ten-second tick. app.New sets it
// from the configured sweep interval; tests use it to observe a
// demotion without waiting that long.
func (m *Monitor) SweepInterval(d time.Duration) {
	m.interval = d
}

// Run ticks every sweep interval until ctx is cancelled, sweeping
// participants on each tick. It returns once ctx is done, observing
// the cancellation within a single tick.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Monitor) sweep() {
	now := time.Now()
	for _, p := range m.registry.AllNonOffline() {
		if p.Presence() != wire.Available {
			continue
		}
		if now.Sub(p.LastActivity()) <= m.timeout {
			continue
		}

		m.registry.SetPresence(p.ID, wire.Away)
		metrics.IdleDemotionsTotal.Inc()
		m.log.Info().Str("participant", p.ID).Msg("set to AWAY due to inactivity")

		m.registry.Broadcast(wire.EncodeAvailabilityUpdate(p.ID, wire.Away))
	}
}
