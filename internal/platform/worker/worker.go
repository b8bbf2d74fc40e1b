// Package worker holds the scheduling primitives behind the watch and
// review modes: a poll loop that piggybacks periodic tasks between
// iterations, a ticker loop with an optional secondary tick, and wrappers
// for bounding and recovering a single run.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// PeriodicTask rides on a poll loop, firing at most once per Interval.
// Due-ness is checked once per iteration, so the effective cadence is
// Interval rounded up to the loop's poll interval.
type PeriodicTask struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
	lastRun  time.Time
}

// Config describes a poll loop.
type Config struct {
	// Name tags every log line the loop emits.
	Name string

	// PollInterval separates iterations. The loop sleeps this long after
	// each poll, so a slow poll stretches the cycle.
	PollInterval time.Duration

	// Poll does one iteration of work. It should return promptly when
	// there is nothing to do.
	Poll func(ctx context.Context) error

	// PeriodicTasks fire between iterations when due.
	PeriodicTasks []PeriodicTask

	// OnStart and OnStop bracket the loop.
	OnStart func(ctx context.Context)
	OnStop  func()

	// OnError decides whether a poll error stops the loop; return false
	// to stop. Nil means log and keep polling.
	OnError func(err error) bool

	Logger *zerolog.Logger
}

// Loop polls until the context ends or OnError asks to stop.
func Loop(ctx context.Context, cfg Config) error {
	logger := getLogger(cfg.Logger)
	logger.Info().Str(logFieldWorker, cfg.Name).Msg("poll loop started")

	runOnStart(ctx, cfg.OnStart)
	defer runOnStop(cfg.OnStop, logger, cfg.Name, "poll loop stopped")

	// Loop owns the lastRun bookkeeping; the caller's slice stays untouched.
	tasks := make([]PeriodicTask, len(cfg.PeriodicTasks))
	copy(tasks, cfg.PeriodicTasks)

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s loop: %w", cfg.Name, err)
		}

		fireDueTasks(ctx, tasks)

		if cfg.Poll != nil {
			if err := cfg.Poll(ctx); err != nil {
				if cfg.OnError != nil {
					if !cfg.OnError(err) {
						return err
					}
				} else {
					logger.Error().Err(err).Str(logFieldWorker, cfg.Name).Msg("poll failed")
				}
			}
		}

		if err := Wait(ctx, cfg.PollInterval); err != nil {
			return err
		}
	}
}

func fireDueTasks(ctx context.Context, tasks []PeriodicTask) {
	now := time.Now()

	for i := range tasks {
		task := &tasks[i]
		if task.Run == nil || task.Interval <= 0 || now.Sub(task.lastRun) < task.Interval {
			continue
		}

		task.Run(ctx)
		task.lastRun = now
	}
}

// Wait sleeps for d unless the context ends first.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait: %w", ctx.Err())
	case <-time.After(d):
		return nil
	}
}

// RunWithTimeout bounds one run of fn with a child context.
func RunWithTimeout(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return fn(runCtx)
}

// RecoverPanic logs a recovered panic so one bad run cannot take the
// process down. Use as: defer worker.RecoverPanic(logger, "review scan").
func RecoverPanic(logger *zerolog.Logger, scope string) {
	if r := recover(); r != nil {
		logger.Error().
			Interface("panic", r).
			Str("scope", scope).
			Msg("recovered from panic")
	}
}
