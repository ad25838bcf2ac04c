// Package constraints holds the acceptance predicates applied to transformed candidates.
package constraints

import (
	"context"
	"fmt"
	"math"

	"textattack/domain/core"
	"textattack/domain/text"
	"textattack/ports"
)

// LanguageModelOptions configures a LanguageModel constraint.
// Exactly one of MaxLogProbDiff and MaxProbDiff must be set.
type LanguageModelOptions struct {
	MaxLogProbDiff         *float64
	MaxProbDiff            *float64
	CompareAgainstOriginal bool
}

// LanguageModel rejects candidates whose modified words are much less likely
// under a language model than the words they replaced.
type LanguageModel struct {
	provider               ports.LanguageModel
	tolerance              float64
	ring                   func(float64) float64
	compareAgainstOriginal bool
}

// NewLanguageModel validates the tolerance and fixes the comparison ring:
// identity for a log-probability tolerance, exp for a raw-probability tolerance.
func NewLanguageModel(provider ports.LanguageModel, opts LanguageModelOptions) (*LanguageModel, error) {
	if (opts.MaxLogProbDiff == nil) == (opts.MaxProbDiff == nil) {
		return nil, core.ErrToleranceUnitAmbiguous
	}
	if provider == nil {
		return nil, fmt.Errorf("%w: language model provider is required", core.ErrInvalidConfiguration)
	}

	c := &LanguageModel{
		provider:               provider,
		ring:                   func(x float64) float64 { return x },
		compareAgainstOriginal: opts.CompareAgainstOriginal,
	}
	if opts.MaxLogProbDiff != nil {
		c.tolerance = *opts.MaxLogProbDiff
	} else {
		c.tolerance = *opts.MaxProbDiff
		c.ring = math.Exp
	}
	if !(c.tolerance >= 0) {
		return nil, core.ErrNegativeTolerance
	}
	return c, nil
}

func (c *LanguageModel) Name() string { return "language_model" }

func (c *LanguageModel) CompareAgainstOriginal() bool { return c.compareAgainstOriginal }

// Tolerance returns the configured maximum difference in its own unit.
func (c *LanguageModel) Tolerance() float64 { return c.tolerance }

// Check scores every newly modified position of candidate against reference.
// A candidate without a modification record is a caller bug and returns
// core.ErrMissingModifiedIndices; an empty record is accepted.
func (c *LanguageModel) Check(ctx context.Context, candidate, reference *text.AttackedText) (bool, error) {
	indices, ok := candidate.NewlyModifiedIndices()
	if !ok {
		return false, core.ErrMissingModifiedIndices
	}

	pair := []*text.AttackedText{reference, candidate}
	limit := c.ring(c.tolerance)
	for _, i := range indices {
		probs, err := c.provider.LogProbsAt(ctx, pair, i)
		if err != nil {
			return false, fmt.Errorf("language model score at word %d: %w", i, err)
		}
		if len(probs) != 2 {
			return false, core.NewArityError(len(probs))
		}
		if c.ring(probs[1]) < c.ring(probs[0])-limit {
			return false, nil
		}
	}
	return true, nil
}
