package worker

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ProcessFunc is the function signature for processing a single task.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool is a generic worker pool with configurable concurrency. Results keep
// the order of the inputs, and the first failure cancels the remaining work.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a new worker pool.
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		process: fn,
	}
}

// Execute runs all inputs through the pool. results[i] belongs to inputs[i].
// On failure it returns the error of the lowest failing input index, so the
// reported error does not depend on scheduling.
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) ([]R, error) {
	results := make([]R, len(inputs))
	errs := make([]error, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range inputs {
		i := i // per-iteration copy; go directive < 1.22
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			result, err := p.process(gctx, inputs[i])
			if err != nil {
				log.Debug().Err(err).Int("index", i).Msg("Task failed")
				errs[i] = err
				return err
			}
			results[i] = result
			return nil
		})
	}

	groupErr := g.Wait()
	if groupErr == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return results, nil
	}

	// Prefer a real failure over the cancellations it caused.
	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return nil, err
		}
	}
	return nil, groupErr
}
