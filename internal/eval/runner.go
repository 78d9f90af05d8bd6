package eval

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"
)

const (
	// DefaultWorkers bounds concurrent model calls when the caller does
	// not say otherwise.
	DefaultWorkers = 4

	// modelCallRetries is the task-independent retry budget per model
	// call, with no added delay: connection-level backoff is the
	// transport's job.
	modelCallRetries = 2
)

// Options controls one runner invocation. Zero values fall back to the
// task's defaults (Runs) or harness defaults (Workers).
type Options struct {
	Runs    int
	Workers int
	Seed    int64             // base seed; trial i derives its own stream from it
	Params  map[string]string // string-form overrides, merged over task defaults
	OnTrial func(Outcome)     // progress callback, invoked from worker goroutines
}

// Run executes the task's trials against a model with bounded
// concurrency and returns the aggregate result.
//
// Each trial is self-contained: it gets a private rand.Rand seeded from
// hash(base seed, trial index), so re-running with the same base seed
// reproduces identical prompts and opponent moves. Outcomes land in a
// pre-allocated slot per trial, which keeps them in trial-index order
// and makes the reduction independent of completion order.
//
// Trial-local failures (transport errors after retries, unparsable
// responses) are data: they become zero-score outcomes and the mean is
// computed over all attempted trials. Only configuration errors (bad
// run count, bad params) are returned as errors.
func Run(ctx context.Context, def TaskDefinition, model string, call ModelCaller, opts Options) (*Result, error) {
	runs := opts.Runs
	if runs <= 0 {
		runs = def.DefaultRuns
	}
	if runs <= 0 {
		return nil, fmt.Errorf("eval %q: run count must be positive, got %d", def.Name, runs)
	}

	params, err := MergeParams(def.DefaultParams, opts.Params)
	if err != nil {
		return nil, fmt.Errorf("eval %q: %w", def.Name, err)
	}
	if def.Validate != nil {
		if err := def.Validate(params); err != nil {
			return nil, fmt.Errorf("eval %q: %w", def.Name, err)
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > runs {
		workers = runs
	}

	retryCall := withRetry(call)
	outcomes := make([]Outcome, runs)
	work := make(chan int)

	// feed trial indices; on cancellation, stop feeding and record the
	// never-started trials so Runs always equals the requested count
	go func() {
		defer close(work)
		for i := 0; i < runs; i++ {
			select {
			case work <- i:
			case <-ctx.Done():
				for ; i < runs; i++ {
					outcomes[i] = Outcome{Index: i, Failed: true, Err: "canceled before start"}
				}
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				rng := rand.New(rand.NewSource(trialSeed(opts.Seed, i)))
				out := def.Trial(ctx, retryCall, params, rng)
				out.Index = i
				outcomes[i] = out
				if opts.OnTrial != nil {
					opts.OnTrial(out)
				}
			}
		}()
	}
	wg.Wait()

	return reduce(def.Name, model, outcomes), nil
}

// reduce folds outcomes into a Result. Sum-then-divide is commutative
// and associative, so the aggregate does not depend on completion order.
func reduce(evalName, model string, outcomes []Outcome) *Result {
	res := &Result{
		Eval:      evalName,
		Model:     model,
		Runs:      len(outcomes),
		Timestamp: time.Now(),
		Outcomes:  outcomes,
	}
	var sum float64
	for _, o := range outcomes {
		sum += o.Score
		if o.Failed {
			res.Failures++
		}
	}
	if res.Runs > 0 {
		res.Mean = sum / float64(res.Runs)
	}
	return res
}

// withRetry wraps a caller with the fixed retry policy. Retries stop
// early once the context is canceled.
func withRetry(call ModelCaller) ModelCaller {
	return func(ctx context.Context, prompt string) (string, error) {
		var lastErr error
		for attempt := 0; attempt <= modelCallRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				if lastErr != nil {
					return "", lastErr
				}
				return "", err
			}
			resp, err := call(ctx, prompt)
			if err == nil {
				return resp, nil
			}
			lastErr = err
		}
		return "", fmt.Errorf("model call failed after %d attempts: %w", modelCallRetries+1, lastErr)
	}
}

// trialSeed derives trial i's seed from the base seed, so trial streams
// are independent but reproducible.
func trialSeed(base int64, i int) int64 {
	h := fnv.New64a()
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(base))
	binary.LittleEndian.PutUint64(buf[8:], uint64(i))
	h.Write(buf[:])
	return int64(h.Sum64())
}
