package augmentation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	domainAugmentation "textattack/domain/augmentation"
	"textattack/domain/core"
	"textattack/domain/text"
	"textattack/internal"
)

// EasyDataAugmenter combines synonym replacement, random deletion, random swap and
// random synonym insertion (Wei and Zou, 2019).
type EasyDataAugmenter struct {
	alpha float64
	nAug  int

	synonymReplacement *Augmenter
	randomDeletion     *Augmenter
	randomSwap         *Augmenter
	randomInsertion    *Augmenter

	mu     sync.Mutex
	rng    *rand.Rand
	logger *internal.Logger
}

// NewEasyDataAugmenter needs alpha in (0, 1] and nAug >= 1. Each sub-pipeline
// contributes at most max(nAug/4, 1) outputs.
func NewEasyDataAugmenter(alpha float64, nAug int, res Resources, opts ...Option) (*EasyDataAugmenter, error) {
	if !(alpha > 0 && alpha <= 1) {
		return nil, fmt.Errorf("%w: alpha must be in (0, 1], got %v", core.ErrInvalidRecipeParams, alpha)
	}
	if nAug < 1 {
		return nil, fmt.Errorf("%w: n_aug must be at least 1, got %d", core.ErrInvalidRecipeParams, nAug)
	}

	o := buildOptions(opts)
	shared := []Option{WithRNG(o.rng), WithLogger(o.logger)}

	e := &EasyDataAugmenter{alpha: alpha, nAug: nAug, rng: o.rng, logger: o.logger}
	var err error
	if e.synonymReplacement, err = NewWordNetAugmenter(res, shared...); err != nil {
		return nil, err
	}
	if e.randomDeletion, err = NewDeletionAugmenter(res, shared...); err != nil {
		return nil, err
	}
	if e.randomSwap, err = NewSwapAugmenter(res, shared...); err != nil {
		return nil, err
	}
	if e.randomInsertion, err = NewSynonymInsertionAugmenter(res, shared...); err != nil {
		return nil, err
	}

	each := max(nAug/4, 1)
	for _, sub := range e.subs() {
		sub.TransformationsPerExample = each
	}
	return e, nil
}

func (e *EasyDataAugmenter) subs() []*Augmenter {
	return []*Augmenter{e.synonymReplacement, e.randomDeletion, e.randomSwap, e.randomInsertion}
}

// Augment returns at most nAug strings drawn from the original text and the four sub-pipelines.
func (e *EasyDataAugmenter) Augment(ctx context.Context, raw string) ([]string, error) {
	res, err := e.AugmentWithAudit(ctx, raw)
	if err != nil {
		return nil, err
	}
	return res.Outputs, nil
}

func (e *EasyDataAugmenter) AugmentWithAudit(ctx context.Context, raw string) (*domainAugmentation.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.candidates(ctx, raw)
	if err != nil {
		return nil, err
	}
	e.rng.Shuffle(len(res.Outputs), func(i, j int) {
		res.Outputs[i], res.Outputs[j] = res.Outputs[j], res.Outputs[i]
	})
	if len(res.Outputs) > e.nAug {
		res.Outputs = res.Outputs[:e.nAug]
	}
	return res, nil
}

// candidates builds the unshuffled pool: the original followed by each sub-pipeline's outputs.
// Callers hold e.mu.
func (e *EasyDataAugmenter) candidates(ctx context.Context, raw string) (*domainAugmentation.Result, error) {
	original := text.New(raw)
	budget := max(1, int(math.Floor(e.alpha*float64(original.NumWords()))))

	res := &domainAugmentation.Result{
		Input:       raw,
		InputHash:   original.Hash(),
		Outputs:     []string{original.Printable()},
		WordCount:   original.NumWords(),
		WordsToSwap: budget,
	}
	for _, sub := range e.subs() {
		sub.NumWordsToSwap = budget
		part, err := sub.AugmentWithAudit(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("eda %s: %w", sub.Name(), err)
		}
		offset := res.CandidateCount
		for _, d := range part.Dropped {
			d.CandidateIndex += offset
			res.Dropped = append(res.Dropped, d)
		}
		res.CandidateCount += part.CandidateCount
		res.Outputs = append(res.Outputs, part.Outputs...)
	}

	e.logger.Debug("eda: budget %d, pool of %d for %d words", budget, len(res.Outputs), original.NumWords())
	return res, nil
}
