// Package coordinator fans a run out over its workers and joins them.
package coordinator

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"webhookutil/internal/core"
)

// ErrWorkerFailed wraps a worker that stopped abnormally.
var ErrWorkerFailed = errors.New("worker failed")

type Coordinator struct {
	sender   core.Sender
	reporter core.Reporter
	clock    core.Clock
}

func NewCoordinator(sender core.Sender, reporter core.Reporter) *Coordinator {
	return &Coordinator{
		sender:   sender,
		reporter: reporter,
		clock:    core.RealClock{},
	}
}

// WithClock replaces the clock used for pauses (for testing).
func (c *Coordinator) WithClock(clock core.Clock) *Coordinator {
	c.clock = clock
	return c
}

// Dispatch runs cfg.Workers workers against the same cfg and blocks until all
// of them return. A single worker runs on the calling goroutine.
// Request failures never surface here; only a failed worker or an invalid
// config does. Cancelling ctx stops the run early without an error.
func (c *Coordinator) Dispatch(ctx context.Context, cfg *core.RunConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid run config: %w", err)
	}

	if cfg.Workers == 1 {
		return c.runWorker(ctx, 1, cfg)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 1; i <= cfg.Workers; i++ {
		id := i
		g.Go(func() error {
			return c.runWorker(gctx, id, cfg)
		})
	}
	return g.Wait()
}

func (c *Coordinator) runWorker(ctx context.Context, id int, cfg *core.RunConfig) (err error) {
	defer c.recoverPanic(id, &err)

	runner := core.NewRunner(c.sender, c.reporter, c.clock, id, cfg)
	if err := runner.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil // stopped early
		}
		return fmt.Errorf("%w: worker %d: %v", ErrWorkerFailed, id, err)
	}
	return nil
}

// recoverPanic turns a panicking worker into a fatal error for the run.
func (c *Coordinator) recoverPanic(workerID int, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: worker %d: panic: %v", ErrWorkerFailed, workerID, r)
	}
}
