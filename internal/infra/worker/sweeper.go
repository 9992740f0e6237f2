// File: internal/infra/worker/sweeper.go
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/razavioo/notimetolie.com/internal/domain"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/repository"
)

// Sweeper re-dispatches pending jobs that fell through the cracks: a restart
// between submit and dispatch, or a queue-full rejection. It polls on a
// ticker and drains one job per tick per reclaim until the backlog is empty.
type Sweeper struct {
	jobs   repository.JobRepository
	runner *Runner
	every  time.Duration
	minAge time.Duration
	log    *zerolog.Logger
}

func NewSweeper(jobs repository.JobRepository, runner *Runner, every, minAge time.Duration, log *zerolog.Logger) *Sweeper {
	if every <= 0 {
		every = 15 * time.Second
	}
	if minAge <= 0 {
		minAge = 30 * time.Second
	}
	return &Sweeper{jobs: jobs, runner: runner, every: every, minAge: minAge, log: log}
}

// Start runs the sweep loop until ctx is cancelled. Run in a goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	s.log.Info().Dur("every", s.every).Dur("min_age", s.minAge).Msg("pending-job sweeper started")
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("pending-job sweeper stopping")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	for {
		job, err := s.jobs.ReclaimPending(ctx, s.minAge)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				s.log.Error().Err(err).Msg("reclaim failed")
			}
			return
		}
		s.log.Info().Str("job_id", job.ID).Msg("re-dispatching orphaned job")
		_ = s.runner.Dispatch(job.ID)
	}
}
