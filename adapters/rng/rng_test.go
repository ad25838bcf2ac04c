package rng

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draws(r *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Float64()
	}
	return out
}

func TestStreamDeterministic(t *testing.T) {
	a := New()
	ctx := context.Background()

	r1, err := a.Stream(ctx, "run-1", "eda", "17", 42)
	require.NoError(t, err)
	r2, err := a.Stream(ctx, "run-1", "eda", "17", 42)
	require.NoError(t, err)
	assert.Equal(t, draws(r1, 5), draws(r2, 5))
}

func TestStreamSeparatesInputs(t *testing.T) {
	assert.NotEqual(t, DeriveSeed(1, "run", "eda", "1"), DeriveSeed(1, "run", "eda", "2"))
	assert.NotEqual(t, DeriveSeed(1, "a", ""), DeriveSeed(1, "", "a"))
	assert.NotEqual(t, DeriveSeed(1, "x"), DeriveSeed(2, "x"))
	assert.GreaterOrEqual(t, DeriveSeed(7, "anything"), int64(0))
}

func TestValidateSeed(t *testing.T) {
	a := New()
	expected := draws(rand.New(rand.NewSource(9)), 3)

	assert.NoError(t, a.ValidateSeed(context.Background(), "check", 9, expected))
	assert.Error(t, a.ValidateSeed(context.Background(), "check", 10, expected))
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Stream(ctx, "r", "eda", "0", 1)
	assert.ErrorIs(t, err, context.Canceled)
}
