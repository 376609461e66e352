package solver

import (
	"context"
	"errors"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/models"
)

// SolveOptions configures the parallel coordinator.
type SolveOptions struct {
	Options

	Workers   int
	TimeLimit time.Duration
}

// Solve launches independent seeded search runs against the shared read-only
// problem model and returns the schedule with the globally lowest makespan,
// ties broken by lowest total fleet travel time.
//
// Workers share nothing while searching; the only synchronization point is
// the best-so-far comparison when a run finishes. A panicking worker is
// logged and simply contributes no candidate.
func Solve(ctx context.Context, p *models.Problem, opts SolveOptions) (*Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > runtime.NumCPU() {
		workers = runtime.NumCPU()
	}

	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}

	var (
		mu       sync.Mutex
		best     *Result
		firstErr error
		wg       sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("search worker %d panicked: %v", worker, r)
				}
			}()

			o := opts.Options
			o.Seed = opts.Seed + int64(worker)
			o.TraceIterations = opts.TraceIterations && worker == 0

			res, err := Search(ctx, p, o)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if betterResult(res, best) {
				best = res
			}
		}(w)
	}
	wg.Wait()

	if best == nil {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, errors.New("no search worker produced a result")
	}
	return best, nil
}

// betterResult implements the replace-if-strictly-better rule guarding the
// shared best-so-far value.
func betterResult(candidate, incumbent *Result) bool {
	if incumbent == nil {
		return true
	}
	if candidate.Makespan != incumbent.Makespan {
		return candidate.Makespan < incumbent.Makespan
	}
	return candidate.TotalTravel < incumbent.TotalTravel
}
