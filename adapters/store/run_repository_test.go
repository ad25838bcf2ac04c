package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"textattack/domain/augmentation"
	"textattack/domain/core"

	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRun(recipe string, at time.Time) *augmentation.Run {
	return &augmentation.Run{
		Recipe: recipe,
		Params: augmentation.Params{Alpha: 0.1, NumAugmentations: 2, Seed: 7, Language: "English"},
		Results: []augmentation.Result{
			{
				Input:          "the quick brown fox",
				InputHash:      core.NewTextHash("the quick brown fox"),
				Outputs:        []string{"the fast brown fox", "the quick brown hound"},
				CandidateCount: 3,
				WordCount:      4,
				WordsToSwap:    1,
				Dropped: []augmentation.DroppedCandidate{
					{CandidateIndex: 2, Text: "the quick brown fox", Reason: augmentation.ReasonUnchanged},
				},
			},
			{Input: "", Outputs: []string{}},
		},
		Summary:   &augmentation.Summary{Inputs: 2, Outputs: 2, EmptyInputs: 1, MeanOutputs: 1},
		CreatedAt: core.NewTimestamp(at),
	}
}

func TestRunRepository_SaveAndGet(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))
	ctx := context.Background()

	run := sampleRun("eda", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, repo.SaveRun(ctx, run))
	require.False(t, run.ID.IsEmpty(), "SaveRun assigns an ID")

	got, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "eda", got.Recipe)
	assert.Equal(t, run.Params, got.Params)
	assert.Equal(t, run.Summary, got.Summary)
	assert.True(t, run.CreatedAt.Time().Equal(got.CreatedAt.Time()))
	require.Len(t, got.Results, 2)
	if diff := cmp.Diff(run.Results[0], got.Results[0]); diff != "" {
		t.Errorf("first result mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{}, got.Results[1].Outputs)
	assert.Equal(t, core.NewTextHash(""), got.Results[1].InputHash)
}

func TestRunRepository_GetMissing(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))

	_, err := repo.GetRun(context.Background(), core.NewRunID())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrRunNotFound)
	assert.True(t, core.IsNotFoundError(err))
}

func TestRunRepository_ListNewestFirst(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, recipe := range []string{"eda", "wordnet", "deletion"} {
		require.NoError(t, repo.SaveRun(ctx, sampleRun(recipe, base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := repo.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "deletion", runs[0].Recipe)
	assert.Equal(t, "wordnet", runs[1].Recipe)
	assert.Empty(t, runs[0].Results, "headers carry no results")
}

func TestRunRepository_SaveNil(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))
	err := repo.SaveRun(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrContractViolation)
}

func TestOpen_Validation(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		url    string
	}{
		{"unknown driver", "mysql", "x"},
		{"empty url", "sqlite", "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.driver, tt.url)
			require.Error(t, err)
			assert.True(t, core.IsConfigurationError(err))
		})
	}
}
