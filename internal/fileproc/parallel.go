// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/depscope/depscope/pkg/analyzer"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker
// count. 2x is optimal for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// MapOrdered processes items in parallel and returns successful results in
// input order, regardless of worker completion order. Each result lands in
// an indexed slot, so two runs over the same input produce identically
// ordered output. Per-item errors are collected, never fatal; on context
// cancellation items not yet started are skipped and recorded with the
// context error. Progress is tracked via analyzer.WithTracker.
func MapOrdered[T any](ctx context.Context, items []string, workers int, fn func(context.Context, string) (T, error)) ([]T, *ProcessingErrors) {
	if len(items) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	tracker := analyzer.TrackerFromContext(ctx)
	results := make([]T, len(items))
	done := make([]bool, len(items))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(workers)
	for i, item := range items {
		p.Go(func() {
			select {
			case <-ctx.Done():
				errs.Add(item, ctx.Err())
				return
			default:
			}

			result, err := fn(ctx, item)
			if tracker != nil {
				tracker.Tick(item)
			}
			if err != nil {
				errs.Add(item, err)
				return
			}

			// Indexed slot per goroutine; no mutex needed.
			results[i] = result
			done[i] = true
		})
	}
	p.Wait()

	out := make([]T, 0, len(items))
	for i := range items {
		if done[i] {
			out = append(out, results[i])
		}
	}

	if !errs.HasErrors() {
		return out, nil
	}
	return out, errs
}

// Map processes items in parallel and returns results in completion order.
// Use MapOrdered when callers need reproducible output.
func Map[T any](ctx context.Context, items []string, workers int, fn func(context.Context, string) (T, error)) ([]T, *ProcessingErrors) {
	if len(items) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	tracker := analyzer.TrackerFromContext(ctx)
	results := make([]T, 0, len(items))
	errs := &ProcessingErrors{}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(workers)
	for _, item := range items {
		p.Go(func() {
			select {
			case <-ctx.Done():
				errs.Add(item, ctx.Err())
				return
			default:
			}

			result, err := fn(ctx, item)
			if tracker != nil {
				tracker.Tick(item)
			}
			if err != nil {
				errs.Add(item, err)
				return
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		})
	}
	p.Wait()

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}
