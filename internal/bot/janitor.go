package bot

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"github.com/tiendasmegan/meganbot/internal/session"
)

// Janitor periodically evicts sessions whose senders went quiet long ago.
// The inactivity tracker already finalizes active conversations; the
// janitor reclaims the leftover per-sender entries (one-shot flags, seen
// markers) that would otherwise accumulate for the process lifetime.
type Janitor struct {
	scheduler gocron.Scheduler
	log       *slog.Logger
	sessions  *session.Store
	interval  time.Duration
	maxIdle   time.Duration
}

// NewJanitor builds the janitor but does not start it.
func NewJanitor(log *slog.Logger, sessions *session.Store, clock clockwork.Clock, interval, maxIdle time.Duration) (*Janitor, error) {
	s, err := gocron.NewScheduler(gocron.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Janitor{
		scheduler: s,
		log:       log.With("component", "janitor"),
		sessions:  sessions,
		interval:  interval,
		maxIdle:   maxIdle,
	}, nil
}

// Start registers the sweep job and begins ticking.
func (j *Janitor) Start() error {
	_, err := j.scheduler.NewJob(
		gocron.DurationJob(j.interval),
		gocron.NewTask(j.sweep),
		gocron.WithName("session_sweep"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}
	j.scheduler.Start()
	j.log.Info("Janitor started", "interval", j.interval, "max_idle", j.maxIdle)
	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (j *Janitor) Stop() error {
	if err := j.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down janitor: %w", err)
	}
	return nil
}

func (j *Janitor) sweep() {
	start := time.Now()
	removed := j.sessions.PruneIdle(j.maxIdle)
	if removed > 0 {
		j.log.Info("Pruned idle sessions", "removed", removed, "remaining", j.sessions.Len(), "duration", time.Since(start))
	}
}
