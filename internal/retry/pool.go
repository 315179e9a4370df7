package retry

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// PoolConfig controls the bounded-concurrency task runner.
type PoolConfig struct {
	// MaxConcurrent is the number of tasks allowed in flight at once.
	MaxConcurrent int
	// DelayBetweenStarts is the minimum spacing between successive
	// task starts (not completions). Zero disables spacing.
	DelayBetweenStarts time.Duration

	// Sleep is injectable for deterministic tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPoolConfig returns the conservative defaults used against the
// calendar API.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConcurrent:      2,
		DelayBetweenStarts: 250 * time.Millisecond,
	}
}

// All runs the tasks with at most cfg.MaxConcurrent in flight and at
// least cfg.DelayBetweenStarts between starts. Results are returned in
// input order regardless of completion order; a failing task never
// cancels its siblings.
func All[T any](ctx context.Context, tasks []func(ctx context.Context) (T, error), cfg PoolConfig) []Outcome[T] {
	results := make([]Outcome[T], len(tasks))
	if len(tasks) == 0 {
		return results
	}

	limit := cfg.MaxConcurrent
	if limit < 1 {
		limit = 1
	}
	sem := semaphore.NewWeighted(int64(limit))

	var wg sync.WaitGroup
	for i, task := range tasks {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = Outcome[T]{Err: err, Attempts: 0}
			continue
		}

		wg.Add(1)
		go func(i int, task func(ctx context.Context) (T, error)) {
			defer wg.Done()
			defer sem.Release(1)
			value, err := run(ctx, task)
			results[i] = Outcome[T]{Value: value, Err: err, Attempts: 1}
		}(i, task)

		// Spacing applies between starts, so skip after the last task.
		if cfg.DelayBetweenStarts > 0 && i < len(tasks)-1 {
			if err := cfg.sleep(ctx, cfg.DelayBetweenStarts); err != nil {
				// Context gone: remaining tasks are recorded as
				// never started once the loop re-enters Acquire.
				continue
			}
		}
	}

	wg.Wait()
	return results
}

// AllWithRetry composes Do and All: each task is retried individually,
// and the retrying tasks as a unit respect the concurrency bound.
func AllWithRetry[T any](
	ctx context.Context,
	tasks []func(ctx context.Context) (T, error),
	poolCfg PoolConfig,
	retryCfg Config,
) []Outcome[T] {
	wrapped := make([]func(ctx context.Context) (T, error), len(tasks))
	results := make([]Outcome[T], len(tasks))
	attempts := make([]int, len(tasks))

	for i, task := range tasks {
		i, task := i, task
		wrapped[i] = func(ctx context.Context) (T, error) {
			out := Do(ctx, task, retryCfg)
			attempts[i] = out.Attempts
			return out.Value, out.Err
		}
	}

	for i, out := range All(ctx, wrapped, poolCfg) {
		if attempts[i] > 0 {
			out.Attempts = attempts[i]
		}
		results[i] = out
	}
	return results
}

func (c PoolConfig) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
