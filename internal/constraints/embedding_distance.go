package constraints

import (
	"context"
	"fmt"
	"strings"

	"textattack/domain/core"
	"textattack/domain/text"
	"textattack/ports"
)

// WordEmbeddingDistance requires every replaced word to stay close to the word it
// replaced in embedding space.
type WordEmbeddingDistance struct {
	embedding              ports.WordEmbedding
	minCosSim              float64
	compareAgainstOriginal bool
}

// NewWordEmbeddingDistance compares against the original input.
func NewWordEmbeddingDistance(embedding ports.WordEmbedding, minCosSim float64) (*WordEmbeddingDistance, error) {
	if embedding == nil {
		return nil, fmt.Errorf("%w: word embedding is required", core.ErrInvalidConfiguration)
	}
	if minCosSim < -1 || minCosSim > 1 {
		return nil, fmt.Errorf("%w: min cosine similarity %v outside [-1, 1]", core.ErrInvalidConfiguration, minCosSim)
	}
	return &WordEmbeddingDistance{embedding: embedding, minCosSim: minCosSim, compareAgainstOriginal: true}, nil
}

func (c *WordEmbeddingDistance) Name() string { return "word_embedding_distance" }

func (c *WordEmbeddingDistance) CompareAgainstOriginal() bool { return c.compareAgainstOriginal }

// Check rejects on the first replaced word whose similarity is below the minimum or
// whose vector is unknown. Positions absent from either text reject as well.
func (c *WordEmbeddingDistance) Check(ctx context.Context, candidate, reference *text.AttackedText) (bool, error) {
	indices, ok := candidate.NewlyModifiedIndices()
	if !ok {
		return false, core.ErrMissingModifiedIndices
	}
	for _, i := range indices {
		if i >= candidate.NumWords() || i >= reference.NumWords() {
			return false, nil
		}
		from := strings.ToLower(reference.WordAt(i))
		to := strings.ToLower(candidate.WordAt(i))
		if from == to {
			continue
		}
		sim, known := c.embedding.Similarity(from, to)
		if !known || sim < c.minCosSim {
			return false, nil
		}
	}
	return true, nil
}
