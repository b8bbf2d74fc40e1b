package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var iterations atomic.Int32

	cfg := Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Poll: func(ctx context.Context) error {
			if iterations.Add(1) >= 3 {
				cancel()
			}

			return nil
		},
	}

	err := Loop(ctx, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Loop error = %v, want context.Canceled", err)
	}

	if iterations.Load() < 3 {
		t.Errorf("Poll ran %d times, want at least 3", iterations.Load())
	}
}

func TestLoopOnErrorStops(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	cfg := Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Poll: func(ctx context.Context) error {
			return boom
		},
		OnError: func(err error) bool {
			return false
		},
	}

	if err := Loop(ctx, cfg); !errors.Is(err, boom) {
		t.Errorf("Loop error = %v, want %v", err, boom)
	}
}

func TestLoopLifecycleHooks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var started, stopped bool

	cfg := Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		OnStart: func(ctx context.Context) {
			started = true
			cancel()
		},
		OnStop: func() {
			stopped = true
		},
	}

	_ = Loop(ctx, cfg)

	if !started {
		t.Error("OnStart was not called")
	}

	if !stopped {
		t.Error("OnStop was not called")
	}
}

func TestLoopRunsPeriodicTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var taskRuns atomic.Int32

	cfg := Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Poll: func(ctx context.Context) error {
			if taskRuns.Load() >= 2 {
				cancel()
			}

			return nil
		},
		PeriodicTasks: []PeriodicTask{{
			Name:     "tick",
			Interval: time.Millisecond,
			Run: func(ctx context.Context) {
				taskRuns.Add(1)
			},
		}},
	}

	err := Loop(ctx, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Loop error = %v, want context.Canceled", err)
	}

	if taskRuns.Load() < 2 {
		t.Errorf("periodic task ran %d times, want at least 2", taskRuns.Load())
	}
}

func TestSingleTickerLoopRunOnStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var ticks atomic.Int32

	cfg := SingleTickerConfig{
		Name:       "test",
		Interval:   time.Hour,
		RunOnStart: true,
		OnTick: func(ctx context.Context) {
			ticks.Add(1)
			cancel()
		},
	}

	err := SingleTickerLoop(ctx, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("SingleTickerLoop error = %v, want context.Canceled", err)
	}

	if ticks.Load() != 1 {
		t.Errorf("OnTick ran %d times, want 1", ticks.Load())
	}
}

func TestSingleTickerLoopSecondaryTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var secondary atomic.Int32

	cfg := SingleTickerConfig{
		Name:              "test",
		Interval:          time.Hour,
		SecondaryInterval: 5 * time.Millisecond,
		OnSecondaryTick: func(ctx context.Context) {
			if secondary.Add(1) >= 2 {
				cancel()
			}
		},
	}

	err := SingleTickerLoop(ctx, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("SingleTickerLoop error = %v, want context.Canceled", err)
	}

	if secondary.Load() < 2 {
		t.Errorf("OnSecondaryTick ran %d times, want at least 2", secondary.Load())
	}
}

func TestWait(t *testing.T) {
	if err := Wait(context.Background(), 0); err != nil {
		t.Errorf("Wait(0) error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Wait(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait on canceled ctx error = %v, want context.Canceled", err)
	}
}

func TestRunWithTimeout(t *testing.T) {
	err := RunWithTimeout(context.Background(), time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()

		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RunWithTimeout error = %v, want context.DeadlineExceeded", err)
	}
}

func TestRecoverPanic(t *testing.T) {
	logger := zerolog.Nop()

	func() {
		defer RecoverPanic(&logger, "test operation")
		panic("boom")
	}()
}
