package batch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"

	"textattack/adapters/rng"
	domainAugmentation "textattack/domain/augmentation"
	"textattack/domain/core"
	"textattack/internal"
	"textattack/ports"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// drawAugmenter appends a draw from its stream so outputs expose which stream was used.
type drawAugmenter struct {
	rng  *rand.Rand
	fail string
}

func (d *drawAugmenter) Augment(ctx context.Context, raw string) ([]string, error) {
	res, err := d.AugmentWithAudit(ctx, raw)
	if err != nil {
		return nil, err
	}
	return res.Outputs, nil
}

func (d *drawAugmenter) AugmentWithAudit(ctx context.Context, raw string) (*domainAugmentation.Result, error) {
	if raw == d.fail {
		return nil, errors.New("boom")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &domainAugmentation.Result{
		Input:   raw,
		Outputs: []string{fmt.Sprintf("%s#%d", raw, d.rng.Intn(1_000_000))},
	}, nil
}

func builder(fail string) Build {
	return func(r *rand.Rand) (ports.Augmenter, error) {
		return &drawAugmenter{rng: r, fail: fail}, nil
	}
}

func inputs(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("sentence %d", i)
	}
	return out
}

func TestRunKeepsInputOrder(t *testing.T) {
	runner := NewRunner(rng.New(), 3, internal.NewNopLogger())
	req := Request{Recipe: "eda", Seed: 42, Inputs: inputs(20)}

	results, err := runner.Run(context.Background(), req, builder(""))
	require.NoError(t, err)
	require.Len(t, results, 20)
	for i, res := range results {
		assert.Equal(t, req.Inputs[i], res.Input)
		require.Len(t, res.Outputs, 1)
	}
}

func TestRunIsIndependentOfConcurrency(t *testing.T) {
	req := Request{Recipe: "eda", Seed: 7, Inputs: inputs(32)}

	serial, err := NewRunner(rng.New(), 1, internal.NewNopLogger()).Run(context.Background(), req, builder(""))
	require.NoError(t, err)
	parallel, err := NewRunner(rng.New(), 8, internal.NewNopLogger()).Run(context.Background(), req, builder(""))
	require.NoError(t, err)

	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Errorf("results differ between worker counts (-serial +parallel):\n%s", diff)
	}

	req.Seed = 8
	other, err := NewRunner(rng.New(), 8, internal.NewNopLogger()).Run(context.Background(), req, builder(""))
	require.NoError(t, err)
	assert.NotEqual(t, serial, other)
}

func TestRunSameTextAtDifferentPositions(t *testing.T) {
	req := Request{Recipe: "eda", Seed: 1, Inputs: []string{"same", "same"}}
	results, err := NewRunner(rng.New(), 2, internal.NewNopLogger()).Run(context.Background(), req, builder(""))
	require.NoError(t, err)
	assert.NotEqual(t, results[0].Outputs, results[1].Outputs)
}

func TestRunStopsOnFirstError(t *testing.T) {
	var built atomic.Int32
	build := func(r *rand.Rand) (ports.Augmenter, error) {
		built.Add(1)
		return &drawAugmenter{rng: r, fail: "sentence 3"}, nil
	}

	_, err := NewRunner(rng.New(), 2, internal.NewNopLogger()).Run(context.Background(), Request{Recipe: "eda", Inputs: inputs(50)}, build)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input 3")
	assert.LessOrEqual(t, int(built.Load()), 50)
}

func TestRunBuildError(t *testing.T) {
	build := func(*rand.Rand) (ports.Augmenter, error) { return nil, core.ErrUnknownRecipe }
	_, err := NewRunner(rng.New(), 2, internal.NewNopLogger()).Run(context.Background(), Request{Inputs: inputs(3)}, build)
	assert.ErrorIs(t, err, core.ErrUnknownRecipe)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(rng.New(), 2, internal.NewNopLogger()).Run(ctx, Request{Inputs: inputs(5)}, builder(""))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunNilBuilder(t *testing.T) {
	_, err := NewRunner(rng.New(), 0, nil).Run(context.Background(), Request{}, nil)
	assert.ErrorIs(t, err, core.ErrContractViolation)
}

func TestRunEmptyBatch(t *testing.T) {
	r := NewRunner(rng.New(), 0, internal.NewNopLogger())
	assert.Equal(t, DefaultConcurrency, r.Concurrency())

	results, err := r.Run(context.Background(), Request{}, builder(""))
	require.NoError(t, err)
	assert.Empty(t, results)
}
