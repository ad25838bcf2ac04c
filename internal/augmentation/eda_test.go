package augmentation

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textattack/domain/core"
	"textattack/internal"
)

type mapThesaurus map[string][]string

func (m mapThesaurus) Synonyms(w string) []string { return m[w] }

func foxResources() Resources {
	return Resources{Thesaurus: mapThesaurus{
		"quick": {"fast", "speedy", "rapid"},
		"brown": {"chocolate", "tan"},
		"fox":   {"vixen", "canine"},
	}}
}

func seeded(seed int64) []Option {
	return []Option{WithRNG(rand.New(rand.NewSource(seed))), WithLogger(internal.NewNopLogger())}
}

func TestEasyDataAugmenterReturnsNAug(t *testing.T) {
	eda, err := NewEasyDataAugmenter(0.25, 8, foxResources(), seeded(5)...)
	require.NoError(t, err)

	out, err := eda.Augment(context.Background(), "The quick brown fox")
	require.NoError(t, err)
	assert.Len(t, out, 8)
}

func TestEasyDataAugmenterPoolHoldsOriginalAndEverySubPipeline(t *testing.T) {
	eda, err := NewEasyDataAugmenter(0.1, 2, foxResources(), seeded(9)...)
	require.NoError(t, err)

	pool, err := eda.candidates(context.Background(), "The quick brown fox")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(pool.Outputs), 5)
	assert.Equal(t, "The quick brown fox", pool.Outputs[0])
	assert.Equal(t, 1, pool.WordsToSwap)

	out, err := eda.Augment(context.Background(), "The quick brown fox")
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestEasyDataAugmenterBudgetFollowsAlpha(t *testing.T) {
	eda, err := NewEasyDataAugmenter(0.5, 4, foxResources(), seeded(3)...)
	require.NoError(t, err)

	res, err := eda.AugmentWithAudit(context.Background(), "The quick brown fox")
	require.NoError(t, err)
	assert.Equal(t, 2, res.WordsToSwap)
	for _, sub := range eda.subs() {
		assert.Equal(t, 2, sub.NumWordsToSwap)
		assert.Equal(t, 1, sub.TransformationsPerExample)
	}
}

func TestEasyDataAugmenterDeterministicForSeed(t *testing.T) {
	run := func() []string {
		eda, err := NewEasyDataAugmenter(0.25, 4, foxResources(), seeded(77)...)
		require.NoError(t, err)
		out, err := eda.Augment(context.Background(), "The quick brown fox jumps")
		require.NoError(t, err)
		return out
	}
	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("seeded EDA runs differ (-first +second):\n%s", diff)
	}
}

func TestEasyDataAugmenterOutputsComeFromPool(t *testing.T) {
	eda, err := NewEasyDataAugmenter(0.25, 3, foxResources(), seeded(1)...)
	require.NoError(t, err)

	out, err := eda.Augment(context.Background(), "The quick brown fox")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), 3)
	for _, s := range out {
		assert.NotEmpty(t, s)
	}
}

func TestEasyDataAugmenterValidation(t *testing.T) {
	tests := []struct {
		name  string
		alpha float64
		nAug  int
	}{
		{"zero alpha", 0, 4},
		{"alpha above one", 1.5, 4},
		{"zero n_aug", 0.1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEasyDataAugmenter(tt.alpha, tt.nAug, foxResources())
			assert.ErrorIs(t, err, core.ErrInvalidRecipeParams)
		})
	}

	_, err := NewEasyDataAugmenter(0.1, 4, Resources{})
	assert.True(t, core.IsConfigurationError(err), "thesaurus is required")
}

func TestEasyDataAugmenterEmptyInput(t *testing.T) {
	eda, err := NewEasyDataAugmenter(0.1, 4, foxResources(), seeded(2)...)
	require.NoError(t, err)

	out, err := eda.Augment(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{""}, out)
}
