package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"textattack/domain/augmentation"
	"textattack/domain/core"
	"textattack/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.xlsx")
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadSentences_XLSXDetectsTextColumn(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"id", "Text", "label"},
		{1, "the quick brown fox", "pos"},
		{2, "", "neg"},
		{3, "  jumps over  ", "pos"},
	})

	r := NewDataReader(DefaultDatasetConfig(), internal.NewNopLogger())
	got, err := r.ReadSentences(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"the quick brown fox", "", "jumps over"}, got)
}

func TestReadSentences_ConfiguredColumn(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"id", "review"},
		{1, "great film"},
	})

	r := NewDataReader(DatasetConfig{TextColumn: "REVIEW"}, internal.NewNopLogger())
	got, err := r.ReadSentences(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"great film"}, got)

	r = NewDataReader(DatasetConfig{TextColumn: "missing"}, internal.NewNopLogger())
	_, err = r.ReadSentences(context.Background(), path)
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
}

func TestReadSentences_CSVWithoutHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte("hello world\n\"a, b\"\n"), 0o644))

	r := NewDataReader(DatasetConfig{NoHeader: true}, internal.NewNopLogger())
	got, err := r.ReadSentences(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello world", "a, b"}, got)
}

func TestReadSentences_PlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\r\ntwo\n\nfour\n"), 0o644))

	r := NewDataReader(DefaultDatasetConfig(), internal.NewNopLogger())
	got, err := r.ReadSentences(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "", "four"}, got)
}

func TestReadSentences_MissingFile(t *testing.T) {
	r := NewDataReader(DefaultDatasetConfig(), internal.NewNopLogger())
	_, err := r.ReadSentences(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.True(t, core.IsResourceError(err))
}

func exportRun() *augmentation.Run {
	return &augmentation.Run{
		ID:     core.NewRunID(),
		Recipe: "eda",
		Params: augmentation.Params{Alpha: 0.1, NumAugmentations: 2},
		Results: []augmentation.Result{
			{
				Input:   "the quick brown fox",
				Outputs: []string{"the fast brown fox", "quick the brown fox"},
				Dropped: []augmentation.DroppedCandidate{
					{CandidateIndex: 3, Text: "the quick fox", Constraint: "language_model", Reason: augmentation.ReasonRejected},
				},
			},
			{Input: "hello", Outputs: []string{"hullo"}},
		},
		Summary: &augmentation.Summary{Inputs: 2, Outputs: 3, RejectionsByName: map[string]int{"language_model": 1}},
	}
}

func TestWriteRun_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	w := NewRunWriter(internal.NewNopLogger())
	require.NoError(t, w.WriteRun(context.Background(), path, exportRun()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{OutputSheet, SummarySheet, DroppedSheet}, f.GetSheetList())

	rows, err := f.GetRows(OutputSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"input_id", "input", "output_id", "output"}, rows[0])
	assert.Equal(t, []string{"1", "the quick brown fox", "2", "quick the brown fox"}, rows[2])
	assert.Equal(t, []string{"2", "hello", "1", "hullo"}, rows[3])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"rejected_by:language_model", "1"}, summary[len(summary)-1])

	dropped, err := f.GetRows(DroppedSheet)
	require.NoError(t, err)
	require.Len(t, dropped, 2)
	assert.Equal(t, "language_model", dropped[1][4])
}

func TestWriteRun_CSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, NewRunWriter(internal.NewNopLogger()).WriteRun(context.Background(), path, exportRun()))

	r := NewDataReader(DatasetConfig{TextColumn: "output"}, internal.NewNopLogger())
	got, err := r.ReadSentences(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"the fast brown fox", "quick the brown fox", "hullo"}, got)
}
