package sim

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"
)

// BatchConfig configures RunBatch.
type BatchConfig struct {
	Config
	// Trials is the number of independent games. Must be positive.
	Trials int
	// Workers caps parallelism; <= 0 means runtime.NumCPU().
	Workers int
	// Seed is the base RNG seed; trial i plays with Seed + i, so a
	// batch is reproducible regardless of scheduling. 0 means seed
	// from the clock.
	Seed int64
	// OnProgress, if set, is called from the aggregation goroutine
	// roughly every 1% of trials (at least every trial for tiny
	// batches), and always on the final trial.
	OnProgress func(done, total int)
}

// TrialError is a fatal engine error from one trial, carrying enough
// context to reproduce it.
type TrialError struct {
	Trial  int
	Config Config
	Err    error
}

func (e *TrialError) Error() string {
	return fmt.Sprintf("trial %d (jokers=%d budget=%d threshold=%.1f): %v",
		e.Trial, e.Config.Jokers, e.Config.InclusiveBudget, e.Config.Threshold, e.Err)
}

func (e *TrialError) Unwrap() error { return e.Err }

// RunBatch plays cfg.Trials independent games across a worker pool and
// aggregates the outcomes in trial order. Cancellation is honored
// between trials; a cancelled batch returns ctx.Err(). The first trial
// error cancels the rest and is returned as a *TrialError.
func RunBatch(ctx context.Context, cfg BatchConfig) (*Results, error) {
	if err := cfg.Config.Validate(); err != nil {
		return nil, err
	}
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("%w: trials %d must be positive", ErrInvalidParameterRange, cfg.Trials)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > cfg.Trials {
		workers = cfg.Trials
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	type trialResult struct {
		trial   int
		outcome GameOutcome
		err     error
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	go func() {
		defer close(jobs)
		for trial := 0; trial < cfg.Trials; trial++ {
			select {
			case jobs <- trial:
			case <-runCtx.Done():
				return
			}
		}
	}()

	resultCh := make(chan trialResult, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for trial := range jobs {
				// Each trial gets a private RNG so workers never
				// contend and results do not depend on scheduling.
				rng := rand.New(rand.NewSource(seed + int64(trial)))
				outcome, err := PlayGame(cfg.Config, rng)
				select {
				case resultCh <- trialResult{trial: trial, outcome: outcome, err: err}:
				case <-runCtx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	res := &Results{
		Config:   cfg.Config,
		Seed:     seed,
		Outcomes: make([]GameOutcome, cfg.Trials),
	}
	progressEvery := cfg.Trials / 100
	if progressEvery < 1 {
		progressEvery = 1
	}

	done := 0
	var firstErr error
	for tr := range resultCh {
		if tr.err != nil {
			if firstErr == nil {
				firstErr = &TrialError{Trial: tr.trial, Config: cfg.Config, Err: tr.err}
				cancel()
			}
			continue
		}
		res.Outcomes[tr.trial] = tr.outcome
		if tr.outcome.Won {
			res.Wins++
		} else {
			res.Losses++
		}
		done++
		if cfg.OnProgress != nil && (done%progressEvery == 0 || done == cfg.Trials) {
			cfg.OnProgress(done, cfg.Trials)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
