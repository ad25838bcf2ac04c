package transformations

import (
	"context"
	"fmt"
	"strings"

	"textattack/domain/core"
	"textattack/domain/text"
	"textattack/ports"
)

// WordSwapThesaurus replaces words with a random thesaurus synonym.
type WordSwapThesaurus struct {
	thesaurus ports.Thesaurus
}

func NewWordSwapThesaurus(th ports.Thesaurus) (*WordSwapThesaurus, error) {
	if th == nil {
		return nil, fmt.Errorf("%w: thesaurus is required", core.ErrInvalidConfiguration)
	}
	return &WordSwapThesaurus{thesaurus: th}, nil
}

func (w *WordSwapThesaurus) Name() string { return "word_swap_thesaurus" }

func (w *WordSwapThesaurus) Transform(ctx context.Context, t *text.AttackedText, req ports.TransformRequest) ([]*text.AttackedText, error) {
	return stepwise(ctx, t, req, w.edit)
}

func (w *WordSwapThesaurus) edit(t *text.AttackedText, i int, env *stepEnv) *text.AttackedText {
	word := t.WordAt(i)
	choices := replacements(word, w.thesaurus.Synonyms(strings.ToLower(word)))
	if len(choices) == 0 {
		return nil
	}
	return t.ReplaceWordAt(i, matchCase(word, choices[env.rng.Intn(len(choices))]))
}

// WordSwapEmbedding replaces words with one of their nearest embedding neighbours.
type WordSwapEmbedding struct {
	embedding     ports.WordEmbedding
	MaxCandidates int
}

// DefaultMaxCandidates is the neighbourhood size used when none is given.
const DefaultMaxCandidates = 15

func NewWordSwapEmbedding(emb ports.WordEmbedding, maxCandidates int) (*WordSwapEmbedding, error) {
	if emb == nil {
		return nil, fmt.Errorf("%w: word embedding is required", core.ErrInvalidConfiguration)
	}
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	return &WordSwapEmbedding{embedding: emb, MaxCandidates: maxCandidates}, nil
}

func (w *WordSwapEmbedding) Name() string { return "word_swap_embedding" }

// Embedding exposes the vectors so distance constraints can share them.
func (w *WordSwapEmbedding) Embedding() ports.WordEmbedding { return w.embedding }

func (w *WordSwapEmbedding) Transform(ctx context.Context, t *text.AttackedText, req ports.TransformRequest) ([]*text.AttackedText, error) {
	return stepwise(ctx, t, req, w.edit)
}

func (w *WordSwapEmbedding) edit(t *text.AttackedText, i int, env *stepEnv) *text.AttackedText {
	word := t.WordAt(i)
	neighbors := w.embedding.Nearest(strings.ToLower(word), w.MaxCandidates)
	words := make([]string, len(neighbors))
	for k, n := range neighbors {
		words[k] = n.Word
	}
	choices := replacements(word, words)
	if len(choices) == 0 {
		return nil
	}
	return t.ReplaceWordAt(i, matchCase(word, choices[env.rng.Intn(len(choices))]))
}

// replacements drops candidates equal to word and anything that is not a single token.
func replacements(word string, candidates []string) []string {
	lower := strings.ToLower(word)
	var out []string
	for _, c := range candidates {
		if singleWord(c) && strings.ToLower(c) != lower {
			out = append(out, c)
		}
	}
	return out
}
