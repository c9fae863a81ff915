// Package scheduler triggers pipeline runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spigell/job-tracker/internal/logger"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context)

// Scheduler wraps robfig/cron. Runs never overlap: a tick that fires while
// the previous run is still going is skipped.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	job    Job
	logger *zap.Logger
}

// New creates a Scheduler for spec, e.g. "@every 6h" or a five-field cron line.
func New(log *zap.Logger, spec string, job Job) *Scheduler {
	log = logger.OrNop(log)
	cronLogger := zapLogger{sugar: log.Sugar()}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		spec:   spec,
		job:    job,
		logger: log,
	}
}

// Run executes the job once right away, then on every tick until ctx is done.
// It waits for a running job to finish before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.job(ctx) }); err != nil {
		return fmt.Errorf("scheduling %q: %w", s.spec, err)
	}

	s.logger.Info("scheduler started", zap.String("spec", s.spec))
	s.job(ctx)

	s.cron.Start()
	<-ctx.Done()

	s.logger.Info("scheduler stopping, waiting for the running job")
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// zapLogger adapts zap to cron.Logger.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

func (l zapLogger) Info(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l zapLogger) Error(err error, msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
