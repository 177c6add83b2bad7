package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/guttosm/quantlevels/internal/ingestion"
	"github.com/guttosm/quantlevels/internal/logger"
)

// Job is the incremental ingestion run triggered on every tick.
type Job interface {
	RunIncremental(ctx context.Context) (ingestion.Result, error)
}

// Scheduler triggers incremental ingestion on a cron spec with a seconds field.
// Ticks that arrive while a run is still going are skipped.
type Scheduler struct {
	cron *cron.Cron
	job  Job
	ctx  context.Context
	mu   sync.Mutex
}

func New(ctx context.Context, job Job) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		job:  job,
		ctx:  ctx,
	}
}

// Register adds the ingestion run under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register ingestion task %q: %w", spec, err)
	}
	logger.L().Info().Str("cron", spec).Msg("ingestion task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.L().Info().Msg("scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.L().Info().Msg("scheduler stopped")
}

// RunNow executes one incremental run immediately. Errors are logged; the
// next tick proceeds normally.
func (s *Scheduler) RunNow() {
	if !s.mu.TryLock() {
		logger.L().Warn().Msg("ingestion still running, tick skipped")
		return
	}
	defer s.mu.Unlock()

	res, err := s.job.RunIncremental(s.ctx)
	if err != nil {
		logger.L().Error().Err(err).Msg("scheduled ingestion failed")
		return
	}
	logger.L().Info().Int("posts", res.Posts).Int("rows", res.Rows).Dur("elapsed", res.Elapsed).Msg("scheduled ingestion done")
}
