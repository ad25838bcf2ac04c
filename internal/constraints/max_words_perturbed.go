package constraints

import (
	"context"
	"fmt"
	"math"

	"textattack/domain/core"
	"textattack/domain/text"
)

// MaxWordsPerturbed caps how many words of the original may be modified.
// With both limits set the stricter one applies.
type MaxWordsPerturbed struct {
	maxNum     int
	maxPercent float64
	hasNum     bool
	hasPercent bool
}

// NewMaxWordsPerturbed needs at least one limit. maxPercent is a fraction in [0, 1].
func NewMaxWordsPerturbed(maxNum *int, maxPercent *float64) (*MaxWordsPerturbed, error) {
	if maxNum == nil && maxPercent == nil {
		return nil, fmt.Errorf("%w: max words perturbed needs max_num or max_percent", core.ErrInvalidConfiguration)
	}
	c := &MaxWordsPerturbed{}
	if maxNum != nil {
		if *maxNum < 0 {
			return nil, fmt.Errorf("%w: max_num must be non-negative", core.ErrInvalidConfiguration)
		}
		c.maxNum, c.hasNum = *maxNum, true
	}
	if maxPercent != nil {
		if *maxPercent < 0 || *maxPercent > 1 {
			return nil, fmt.Errorf("%w: max_percent must be in [0, 1]", core.ErrInvalidConfiguration)
		}
		c.maxPercent, c.hasPercent = *maxPercent, true
	}
	return c, nil
}

func (c *MaxWordsPerturbed) Name() string { return "max_words_perturbed" }

func (c *MaxWordsPerturbed) CompareAgainstOriginal() bool { return true }

func (c *MaxWordsPerturbed) Check(_ context.Context, candidate, reference *text.AttackedText) (bool, error) {
	changed := len(candidate.ModifiedIndices())
	if c.hasNum && changed > c.maxNum {
		return false, nil
	}
	if c.hasPercent {
		shortest := min(candidate.NumWords(), reference.NumWords())
		if float64(changed) > math.Ceil(float64(shortest)*c.maxPercent) {
			return false, nil
		}
	}
	return true, nil
}
