package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Runner executes one aggregation cycle.
type Runner interface {
	RunCycle(ctx context.Context) error
}

// RunnerFunc adapts a function into a Runner.
type RunnerFunc func(ctx context.Context) error

func (f RunnerFunc) RunCycle(ctx context.Context) error { return f(ctx) }

// Scheduler runs one immediate cycle, then follows a cron expression such as
// "@every 6h" or "0 */6 * * *". A tick that arrives while the previous cycle
// is still running is skipped.
type Scheduler struct {
	runner Runner
	spec   string
	logger *slog.Logger
}

// Validate reports whether spec is a schedule the Scheduler accepts.
func Validate(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

func NewScheduler(runner Runner, spec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{runner: runner, spec: spec, logger: logger}
}

// Run blocks until ctx is cancelled and returns nil on graceful shutdown.
// An in-flight cycle is waited for before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{s.logger}),
		cron.SkipIfStillRunning(cronLogger{s.logger}),
	))
	id, err := c.AddFunc(s.spec, func() { s.cycle(ctx) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	s.logger.Info("starting scheduler", "schedule", s.spec)

	s.cycle(ctx)
	if ctx.Err() != nil {
		s.logger.Info("shutting down scheduler")
		return nil
	}

	c.Start()
	s.logger.Info("next cycle scheduled", "at", c.Entry(id).Next)

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.runner.RunCycle(ctx); err != nil {
		s.logger.Error("cycle failed", "error", err)
	}
}

// cronLogger routes cron's own messages through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
