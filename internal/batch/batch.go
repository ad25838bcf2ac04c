// Package batch augments many inputs concurrently with one recipe.
package batch

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	domainAugmentation "textattack/domain/augmentation"
	"textattack/domain/core"
	"textattack/internal"
	"textattack/ports"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is used when the runner is created with a non-positive limit.
const DefaultConcurrency = 4

// Build constructs the augmenter for one input around its private random stream.
type Build func(rng *rand.Rand) (ports.Augmenter, error)

// Request is one batch: a recipe, its seed and the inputs in order.
type Request struct {
	Recipe string
	Seed   int64
	Inputs []string
}

// Runner fans inputs out over a bounded number of workers. Every input gets
// its own augmenter and RNG stream derived from (recipe, position, text, seed),
// so results do not depend on scheduling.
type Runner struct {
	rng    ports.RNGPort
	sem    *semaphore.Weighted
	limit  int
	logger *internal.Logger
}

// NewRunner creates a runner; a nil logger means internal.DefaultLogger
func NewRunner(rng ports.RNGPort, concurrency int, logger *internal.Logger) *Runner {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Runner{
		rng:    rng,
		sem:    semaphore.NewWeighted(int64(concurrency)),
		limit:  concurrency,
		logger: logger,
	}
}

// Concurrency returns the worker limit
func (r *Runner) Concurrency() int { return r.limit }

// Run augments every input and returns the results in input order.
// The first error cancels the remaining work.
func (r *Runner) Run(ctx context.Context, req Request, build Build) ([]domainAugmentation.Result, error) {
	if build == nil {
		return nil, fmt.Errorf("%w: nil augmenter builder", core.ErrContractViolation)
	}

	start := time.Now()
	results := make([]domainAugmentation.Result, len(req.Inputs))
	g, gctx := errgroup.WithContext(ctx)

	for i, input := range req.Inputs {
		if err := r.sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer r.sem.Release(1)

			res, err := r.augmentOne(gctx, req, i, input, build)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.logger.Info("[Batch] %s: %d inputs augmented in %s", req.Recipe, len(req.Inputs), time.Since(start).Round(time.Millisecond))
	return results, nil
}

func (r *Runner) augmentOne(ctx context.Context, req Request, i int, input string, build Build) (*domainAugmentation.Result, error) {
	hash := core.NewTextHash(input)
	key := strconv.Itoa(i) + ":" + hash.String()
	rng, err := r.rng.Stream(ctx, "", req.Recipe, key, req.Seed)
	if err != nil {
		return nil, err
	}

	aug, err := build(rng)
	if err != nil {
		return nil, err
	}

	res, err := aug.AugmentWithAudit(ctx, input)
	if err != nil {
		return nil, err
	}
	r.logger.Trace("[Batch] input %d (%s): %d outputs", i, core.Hash(hash).Short(), len(res.Outputs))
	return res, nil
}
