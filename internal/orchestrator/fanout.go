package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// defaultFanOutLimit bounds concurrent collaborator calls within one
// fan-out stage.
const defaultFanOutLimit = 8

// fanResult is one task's outcome. Exactly one of Value or Err is
// meaningful.
type fanResult[R any] struct {
	Value R
	Err   error
}

// fanOut dispatches every task concurrently (bounded by limit) and
// collects a (result, error) pair per task in task order. No failure
// cancels the siblings: the join point — the caller — decides which
// failures are tolerated and which propagate.
func fanOut[T, R any](ctx context.Context, limit int, tasks []T, run func(context.Context, T) (R, error)) []fanResult[R] {
	if limit <= 0 {
		limit = defaultFanOutLimit
	}

	results := make([]fanResult[R], len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, task := range tasks {
		g.Go(func() error {
			v, err := run(gctx, task)
			results[i] = fanResult[R]{Value: v, Err: err}
			return nil
		})
	}

	// Tasks never return errors to the group, so Wait only joins.
	_ = g.Wait()
	return results
}
