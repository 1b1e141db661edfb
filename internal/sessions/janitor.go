package sessions

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultSweepInterval is used when a janitor is created with an interval
// under a minute.
const DefaultSweepInterval = 10 * time.Minute

// Sweeper is a session store that must drop expired sessions itself.
// Redis expires keys on its own and does not need one.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Janitor periodically sweeps expired sessions out of a Sweeper.
type Janitor struct {
	store    Sweeper
	interval time.Duration
}

// NewJanitor creates a janitor that sweeps on the given interval.
func NewJanitor(s Sweeper, interval time.Duration) *Janitor {
	if interval < time.Minute {
		interval = DefaultSweepInterval
	}
	return &Janitor{store: s, interval: interval}
}

// Start sweeps once immediately and then on every tick. It blocks until ctx
// is canceled.
func (j *Janitor) Start(ctx context.Context) {
	log.Info().Dur("interval", j.interval).Msg("Session janitor started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Session janitor stopped")
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep and returns the number of sessions removed.
func (j *Janitor) RunOnce(ctx context.Context) int {
	start := time.Now()
	n, err := j.store.Sweep(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Session janitor: sweep failed")
		return 0
	}
	if n > 0 {
		log.Info().
			Int("expired_sessions", n).
			Dur("elapsed", time.Since(start)).
			Msg("Session sweep complete")
	}
	return n
}
