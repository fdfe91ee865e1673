package core

import (
	"context"
	"errors"
)

// ErrAttemptsExhausted indicates the runner already issued every configured attempt.
var ErrAttemptsExhausted = errors.New("attempts exhausted")

// NullReporter discards all attempts.
var NullReporter Reporter = nullReporter{}

type nullReporter struct{}

func (nullReporter) Report(Attempt) {}

// Runner executes the repeat-with-delay loop of one worker.
// A Runner is NOT safe for concurrent use; each worker goroutine must have its own Runner.
// The RunConfig it points to is shared and only read.
type Runner struct {
	sender   Sender
	reporter Reporter
	clock    Clock
	workerID int
	config   *RunConfig
	attempt  int
}

// NewRunner creates a Runner for a single worker.
func NewRunner(sender Sender, reporter Reporter, clock Clock, workerID int, config *RunConfig) *Runner {
	if reporter == nil {
		reporter = NullReporter
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &Runner{
		sender:   sender,
		reporter: reporter,
		clock:    clock,
		workerID: workerID,
		config:   config,
	}
}

// RunIteration issues one attempt, pausing first if it is not the worker's first.
// Returns nil after an attempt regardless of its outcome, ErrAttemptsExhausted when
// the limit was already hit, or the context error if cancelled.
func (r *Runner) RunIteration(ctx context.Context) error {
	if r.attempt >= r.config.Times {
		return ErrAttemptsExhausted
	}

	// The pause sits between attempts, so the last attempt is never followed by one.
	if r.attempt > 0 && r.config.Latency > 0 {
		if err := r.clock.Sleep(ctx, r.config.Latency); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.attempt++
	start := r.clock.Now()
	delivery, err := r.sender.Post(ContextWithAttempt(ctx, r.workerID, r.attempt), r.config.URL, r.config.Payload)

	duration := delivery.Duration
	if duration == 0 {
		duration = r.clock.Since(start)
	}
	r.reporter.Report(Attempt{
		Worker:     r.workerID,
		Attempt:    r.attempt,
		Timestamp:  start,
		Duration:   duration,
		Success:    err == nil,
		Err:        err,
		StatusCode: delivery.StatusCode,
	})
	return nil
}

// Run issues attempts until all of them are done or ctx is cancelled.
// Transport failures never stop the loop.
func (r *Runner) Run(ctx context.Context) error {
	for {
		err := r.RunIteration(ctx)
		if errors.Is(err, ErrAttemptsExhausted) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Attempts returns how many attempts have been issued so far.
func (r *Runner) Attempts() int {
	return r.attempt
}

// WorkerID returns the worker index this runner reports under.
func (r *Runner) WorkerID() int {
	return r.workerID
}
