package constraints

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"textattack/domain/core"
	"textattack/domain/text"
)

type mockLanguageModel struct {
	mock.Mock
}

func (m *mockLanguageModel) LogProbsAt(ctx context.Context, texts []*text.AttackedText, index int) ([]float64, error) {
	args := m.Called(ctx, texts, index)
	probs, _ := args.Get(0).([]float64)
	return probs, args.Error(1)
}

func f64(v float64) *float64 { return &v }

func TestNewLanguageModelToleranceValidation(t *testing.T) {
	lm := &mockLanguageModel{}
	tests := []struct {
		name    string
		opts    LanguageModelOptions
		wantErr error
	}{
		{"neither set", LanguageModelOptions{}, core.ErrToleranceUnitAmbiguous},
		{"both set", LanguageModelOptions{MaxLogProbDiff: f64(1), MaxProbDiff: f64(0.5)}, core.ErrToleranceUnitAmbiguous},
		{"negative log diff", LanguageModelOptions{MaxLogProbDiff: f64(-0.1)}, core.ErrNegativeTolerance},
		{"negative prob diff", LanguageModelOptions{MaxProbDiff: f64(-2)}, core.ErrNegativeTolerance},
		{"NaN", LanguageModelOptions{MaxLogProbDiff: f64(math.NaN())}, core.ErrNegativeTolerance},
		{"zero log diff", LanguageModelOptions{MaxLogProbDiff: f64(0)}, nil},
		{"zero prob diff", LanguageModelOptions{MaxProbDiff: f64(0)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewLanguageModel(lm, tt.opts)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, core.IsConfigurationError(err))
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0.0, c.Tolerance())
		})
	}
}

func TestNewLanguageModelRequiresProvider(t *testing.T) {
	_, err := NewLanguageModel(nil, LanguageModelOptions{MaxLogProbDiff: f64(1)})
	assert.True(t, core.IsConfigurationError(err))
}

func TestLanguageModelLogProbabilityThreshold(t *testing.T) {
	ref := text.New("the quick brown fox")
	tests := []struct {
		name     string
		cand     float64
		expected bool
	}{
		{"well below threshold", -3.5, false},
		{"exactly at threshold", -3.0, true},
		{"above threshold", -2.9, true},
		{"more likely than reference", -1.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := ref.ReplaceWordAt(1, "fast")
			lm := &mockLanguageModel{}
			lm.On("LogProbsAt", mock.Anything, []*text.AttackedText{ref, cand}, 1).Return([]float64{-2.0, tt.cand}, nil).Once()

			c, err := NewLanguageModel(lm, LanguageModelOptions{MaxLogProbDiff: f64(1), CompareAgainstOriginal: true})
			require.NoError(t, err)

			ok, err := c.Check(context.Background(), cand, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
			lm.AssertExpectations(t)
		})
	}
}

func TestLanguageModelProbabilityModeExponentiatesTolerance(t *testing.T) {
	ref := text.New("a b c")
	tests := []struct {
		name     string
		refLP    float64
		candLP   float64
		tol      float64
		expected bool
	}{
		// exp(0) == 1, so the threshold is exp(ref) - 1 = 5 - 1 = 4.
		{"below", math.Log(5), math.Log(3.9), 0, false},
		{"above", math.Log(5), math.Log(4.1), 0, true},
		// exp(0) - exp(0) == 0 and exp(-Inf) == 0: exactly at the threshold accepts.
		{"at threshold", 0, math.Inf(-1), 0, true},
		{"just under threshold", 1e-9, math.Inf(-1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := ref.ReplaceWordAt(0, "x")
			lm := &mockLanguageModel{}
			lm.On("LogProbsAt", mock.Anything, mock.Anything, 0).Return([]float64{tt.refLP, tt.candLP}, nil)

			c, err := NewLanguageModel(lm, LanguageModelOptions{MaxProbDiff: f64(tt.tol)})
			require.NoError(t, err)

			ok, err := c.Check(context.Background(), cand, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestLanguageModelMissingRecordIsContractViolation(t *testing.T) {
	lm := &mockLanguageModel{}
	c, err := NewLanguageModel(lm, LanguageModelOptions{MaxLogProbDiff: f64(1)})
	require.NoError(t, err)

	fresh := text.New("nothing derived here")
	ok, err := c.Check(context.Background(), fresh, fresh)
	require.ErrorIs(t, err, core.ErrMissingModifiedIndices)
	assert.True(t, core.IsContractViolation(err))
	assert.False(t, ok)
	lm.AssertNotCalled(t, "LogProbsAt", mock.Anything, mock.Anything, mock.Anything)
}

func TestLanguageModelEmptyRecordAccepts(t *testing.T) {
	lm := &mockLanguageModel{}
	c, err := NewLanguageModel(lm, LanguageModelOptions{MaxLogProbDiff: f64(0)})
	require.NoError(t, err)

	ref := text.New("same words")
	ok, err := c.Check(context.Background(), ref.Unchanged(), ref)
	require.NoError(t, err)
	assert.True(t, ok)
	lm.AssertNotCalled(t, "LogProbsAt", mock.Anything, mock.Anything, mock.Anything)
}

func TestLanguageModelProviderArity(t *testing.T) {
	for _, probs := range [][]float64{{-1}, {-1, -2, -3}, {}} {
		lm := &mockLanguageModel{}
		lm.On("LogProbsAt", mock.Anything, mock.Anything, 0).Return(probs, nil)

		c, err := NewLanguageModel(lm, LanguageModelOptions{MaxLogProbDiff: f64(10)})
		require.NoError(t, err)

		ref := text.New("hello world")
		_, err = c.Check(context.Background(), ref.ReplaceWordAt(0, "hi"), ref)
		require.ErrorIs(t, err, core.ErrProviderArity)
		assert.True(t, core.IsContractViolation(err))
	}
}

func TestLanguageModelProviderErrorPropagates(t *testing.T) {
	boom := errors.New("scorer offline")
	lm := &mockLanguageModel{}
	lm.On("LogProbsAt", mock.Anything, mock.Anything, 1).Return(nil, boom)

	c, err := NewLanguageModel(lm, LanguageModelOptions{MaxLogProbDiff: f64(1)})
	require.NoError(t, err)

	ref := text.New("hello big world")
	_, err = c.Check(context.Background(), ref.ReplaceWordAt(1, "small"), ref)
	assert.ErrorIs(t, err, boom)
}

func TestLanguageModelStopsAtFirstRejectedIndex(t *testing.T) {
	ref := text.New("one two three")
	cand := ref.SwapWords(2, 0)

	lm := &mockLanguageModel{}
	lm.On("LogProbsAt", mock.Anything, mock.Anything, 0).Return([]float64{-1, -9}, nil).Once()

	c, err := NewLanguageModel(lm, LanguageModelOptions{MaxLogProbDiff: f64(2)})
	require.NoError(t, err)

	ok, err := c.Check(context.Background(), cand, ref)
	require.NoError(t, err)
	assert.False(t, ok)
	lm.AssertNotCalled(t, "LogProbsAt", mock.Anything, mock.Anything, 2)
}

func TestLanguageModelAllIndicesMustPass(t *testing.T) {
	ref := text.New("one two three")
	cand := ref.SwapWords(0, 2)

	lm := &mockLanguageModel{}
	lm.On("LogProbsAt", mock.Anything, mock.Anything, 0).Return([]float64{-1, -1.5}, nil).Once()
	lm.On("LogProbsAt", mock.Anything, mock.Anything, 2).Return([]float64{-1, -1.2}, nil).Once()

	c, err := NewLanguageModel(lm, LanguageModelOptions{MaxLogProbDiff: f64(1)})
	require.NoError(t, err)

	ok, err := c.Check(context.Background(), cand, ref)
	require.NoError(t, err)
	assert.True(t, ok)
	lm.AssertExpectations(t)
}
