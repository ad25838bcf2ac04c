// Package augmentation turns a transformation and a constraint list into a text augmenter,
// and builds the named recipes on top of it.
package augmentation

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	domainAugmentation "textattack/domain/augmentation"
	"textattack/domain/core"
	"textattack/domain/text"
	"textattack/internal"
	"textattack/internal/constraints"
	"textattack/ports"
)

// Option configures an augmenter.
type Option func(*options)

type options struct {
	rng    *rand.Rand
	logger *internal.Logger
}

// WithRNG injects the random source used for index order, edit choice and shuffling.
// The augmenter serializes its own use of it.
func WithRNG(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

func WithLogger(logger *internal.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.logger == nil {
		o.logger = internal.DefaultLogger
	}
	return o
}

// Augmenter applies one transformation to an input and keeps the candidates every
// constraint accepts.
type Augmenter struct {
	// NumWordsToSwap is the perturbation budget handed to the transformation.
	NumWordsToSwap int
	// TransformationsPerExample caps the number of outputs per input.
	TransformationsPerExample int

	transformation ports.Transformation
	pre            []ports.PreTransformationConstraint
	chain          *constraints.Chain

	mu     sync.Mutex
	rng    *rand.Rand
	logger *internal.Logger
}

// NewAugmenter routes pre-transformation constraints to the transformation and chains the rest.
// Both tunables default to 1.
func NewAugmenter(t ports.Transformation, list []ports.NamedConstraint, opts ...Option) (*Augmenter, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: transformation is required", core.ErrInvalidConfiguration)
	}
	pre, chain, err := constraints.Split(list)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Augmenter{
		NumWordsToSwap:            1,
		TransformationsPerExample: 1,
		transformation:            t,
		pre:                       pre,
		chain:                     chain,
		rng:                       o.rng,
		logger:                    o.logger,
	}, nil
}

// Name is the name of the wrapped transformation.
func (a *Augmenter) Name() string { return a.transformation.Name() }

// Augment returns up to TransformationsPerExample accepted variants of raw in production order.
// No candidates is not an error.
func (a *Augmenter) Augment(ctx context.Context, raw string) ([]string, error) {
	res, err := a.AugmentWithAudit(ctx, raw)
	if err != nil {
		return nil, err
	}
	return res.Outputs, nil
}

// AugmentWithAudit is Augment plus the record of every dropped candidate.
// Constraint errors abort the call.
func (a *Augmenter) AugmentWithAudit(ctx context.Context, raw string) (*domainAugmentation.Result, error) {
	if a.NumWordsToSwap < 1 || a.TransformationsPerExample < 1 {
		return nil, fmt.Errorf("%w: words to swap %d and transformations per example %d must be at least 1",
			core.ErrInvalidRecipeParams, a.NumWordsToSwap, a.TransformationsPerExample)
	}

	original := text.New(raw)
	res := &domainAugmentation.Result{
		Input:       raw,
		InputHash:   original.Hash(),
		Outputs:     []string{},
		WordCount:   original.NumWords(),
		WordsToSwap: a.NumWordsToSwap,
	}

	a.mu.Lock()
	candidates, err := a.transformation.Transform(ctx, original, ports.TransformRequest{
		Budget: a.NumWordsToSwap,
		Pre:    a.pre,
		RNG:    a.rng,
	})
	a.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("transformation %s: %w", a.Name(), err)
	}
	res.CandidateCount = len(candidates)

	seen := make(map[string]struct{}, len(candidates))
	for i, cand := range candidates {
		printable := cand.Printable()
		drop := func(constraint, reason string) {
			res.Dropped = append(res.Dropped, domainAugmentation.DroppedCandidate{
				CandidateIndex: i,
				Text:           printable,
				Constraint:     constraint,
				Reason:         reason,
			})
		}

		if cand.Equal(original) {
			drop("", domainAugmentation.ReasonUnchanged)
			continue
		}
		if _, dup := seen[printable]; dup {
			drop("", domainAugmentation.ReasonDuplicate)
			continue
		}
		seen[printable] = struct{}{}

		ok, rejectedBy, err := a.chain.Check(ctx, cand, original)
		if err != nil {
			return nil, err
		}
		if !ok {
			drop(rejectedBy, domainAugmentation.ReasonRejected)
			continue
		}
		if len(res.Outputs) >= a.TransformationsPerExample {
			drop("", domainAugmentation.ReasonOverCap)
			continue
		}
		res.Outputs = append(res.Outputs, printable)
	}

	a.logger.Debug("augmenter %s: %d candidates, %d outputs, %d dropped",
		a.Name(), res.CandidateCount, len(res.Outputs), len(res.Dropped))
	return res, nil
}
