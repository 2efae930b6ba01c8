// Package jobs runs the service's periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/rovora/search-service/pkg/log"
)

const jobTimeout = 30 * time.Second

// Task is one scheduled unit of work.
type Task struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// Scheduler wraps a cron runner whose jobs log through zerolog.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates an idle scheduler. Panicking jobs are recovered and
// overlapping runs of the same job are skipped.
func NewScheduler() *Scheduler {
	logger := cronLogger{l: log.L()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// Register adds a task. Schedules use the standard five-field syntax or
// descriptors such as @hourly.
func (s *Scheduler) Register(task Task) error {
	_, err := s.cron.AddFunc(task.Schedule, func() {
		runTask(task)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", task.Name, err)
	}
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func runTask(task Task) {
	l := log.L().With().Str(log.FieldJob, task.Name).Logger()
	ctx, cancel := context.WithTimeout(log.WithLogger(context.Background(), l), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := task.Run(ctx); err != nil {
		l.Error().Err(err).Msg("job failed")
		return
	}
	l.Debug().Dur("took", time.Since(start)).Msg("job completed")
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
