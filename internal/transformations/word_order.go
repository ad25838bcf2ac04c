package transformations

import (
	"context"
	"fmt"
	"strings"

	"textattack/domain/core"
	"textattack/domain/text"
	"textattack/ports"
)

// WordDeletion removes words. A text is never reduced below one word.
type WordDeletion struct{}

func NewWordDeletion() *WordDeletion { return &WordDeletion{} }

func (w *WordDeletion) Name() string { return "word_deletion" }

func (w *WordDeletion) Transform(ctx context.Context, t *text.AttackedText, req ports.TransformRequest) ([]*text.AttackedText, error) {
	return stepwise(ctx, t, req, w.edit)
}

func (w *WordDeletion) edit(t *text.AttackedText, i int, _ *stepEnv) *text.AttackedText {
	if t.NumWords() <= 1 {
		return nil
	}
	return t.DeleteWordAt(i)
}

// RandomSwap exchanges a word with another modifiable word holding different text.
type RandomSwap struct{}

func NewRandomSwap() *RandomSwap { return &RandomSwap{} }

func (w *RandomSwap) Name() string { return "random_swap" }

func (w *RandomSwap) Transform(ctx context.Context, t *text.AttackedText, req ports.TransformRequest) ([]*text.AttackedText, error) {
	return stepwise(ctx, t, req, w.edit)
}

func (w *RandomSwap) edit(t *text.AttackedText, i int, env *stepEnv) *text.AttackedText {
	for _, j := range env.modifiable(t) {
		if j != i && t.WordAt(j) != t.WordAt(i) {
			return t.SwapWords(i, j)
		}
	}
	return nil
}

// RandomSynonymInsertion inserts a synonym of a random word of the text at the edited position.
type RandomSynonymInsertion struct {
	thesaurus ports.Thesaurus
}

func NewRandomSynonymInsertion(th ports.Thesaurus) (*RandomSynonymInsertion, error) {
	if th == nil {
		return nil, fmt.Errorf("%w: thesaurus is required", core.ErrInvalidConfiguration)
	}
	return &RandomSynonymInsertion{thesaurus: th}, nil
}

func (w *RandomSynonymInsertion) Name() string { return "random_synonym_insertion" }

func (w *RandomSynonymInsertion) Transform(ctx context.Context, t *text.AttackedText, req ports.TransformRequest) ([]*text.AttackedText, error) {
	return stepwise(ctx, t, req, w.edit)
}

func (w *RandomSynonymInsertion) edit(t *text.AttackedText, i int, env *stepEnv) *text.AttackedText {
	for _, j := range env.rng.Perm(t.NumWords()) {
		source := t.WordAt(j)
		choices := replacements(source, w.thesaurus.Synonyms(strings.ToLower(source)))
		if len(choices) > 0 {
			return t.InsertWordAt(i, choices[env.rng.Intn(len(choices))])
		}
	}
	return nil
}
