// Package parallel runs per-deployment work with bounded concurrency.
package parallel

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	minConcurrency = 2
	// maxConcurrencyCap keeps the number of concurrent API calls modest.
	maxConcurrencyCap = 8
)

// DefaultMaxConcurrency returns the CPU count clamped to [2, 8].
func DefaultMaxConcurrency() int64 {
	numCPU := int64(runtime.NumCPU())

	return min(max(numCPU, minConcurrency), maxConcurrencyCap)
}

// Executor runs tasks with at most maxConcurrency at a time.
type Executor struct {
	maxConcurrency int64
}

// NewExecutor creates an executor. If maxConcurrency <= 0,
// DefaultMaxConcurrency() is used.
func NewExecutor(maxConcurrency int64) *Executor {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency()
	}

	return &Executor{maxConcurrency: maxConcurrency}
}

// Task is a unit of work.
type Task func(ctx context.Context) error

// Execute runs every task and returns the joined errors of the failed ones.
// A failing task does not cancel the others.
func (executor *Executor) Execute(ctx context.Context, tasks ...Task) error {
	if len(tasks) == 0 {
		return nil
	}

	if len(tasks) == 1 {
		return tasks[0](ctx)
	}

	sem := semaphore.NewWeighted(executor.maxConcurrency)
	errs := make([]error, len(tasks))

	var group errgroup.Group

	for index, task := range tasks {
		group.Go(func() error {
			acquireErr := sem.Acquire(ctx, 1)
			if acquireErr != nil {
				errs[index] = fmt.Errorf("acquire semaphore: %w", acquireErr)

				return nil
			}

			defer sem.Release(1)

			errs[index] = task(ctx)

			return nil
		})
	}

	_ = group.Wait()

	return errors.Join(errs...)
}

// Map calls fn for every index in [0, count) and returns the results in
// index order. Results of failed calls are the zero value.
func Map[T any](
	ctx context.Context,
	executor *Executor,
	count int,
	fn func(ctx context.Context, index int) (T, error),
) ([]T, error) {
	results := make([]T, count)
	tasks := make([]Task, count)

	for index := range count {
		tasks[index] = func(ctx context.Context) error {
			value, err := fn(ctx, index)
			if err != nil {
				return err
			}

			results[index] = value

			return nil
		}
	}

	err := executor.Execute(ctx, tasks...)

	return results, err
}
