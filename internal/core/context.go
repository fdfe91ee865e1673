package core

import "context"

// Context keys for passing attempt identity to transports.
type contextKey string

const (
	workerContextKey  contextKey = "worker"
	attemptContextKey contextKey = "attempt"
)

func ContextWithAttempt(ctx context.Context, worker, attempt int) context.Context {
	ctx = context.WithValue(ctx, workerContextKey, worker)
	return context.WithValue(ctx, attemptContextKey, attempt)
}

// AttemptFromContext returns the worker and attempt numbers, or zeros if unset.
func AttemptFromContext(ctx context.Context) (worker, attempt int) {
	worker, _ = ctx.Value(workerContextKey).(int)
	attempt, _ = ctx.Value(attemptContextKey).(int)
	return worker, attempt
}
