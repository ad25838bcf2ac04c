package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"textattack/domain/augmentation"
	"textattack/internal"
	"textattack/ports"

	"github.com/xuri/excelize/v2"
)

// Sheet names of an exported run
const (
	OutputSheet  = "Augmented"
	SummarySheet = "Summary"
	DroppedSheet = "Dropped"
)

// RunWriter exports augmentation runs to XLSX (or CSV when the path ends in .csv)
type RunWriter struct {
	logger *internal.Logger
}

var _ ports.DatasetWriter = (*RunWriter)(nil)

// NewRunWriter creates a writer; a nil logger means internal.DefaultLogger
func NewRunWriter(logger *internal.Logger) *RunWriter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RunWriter{logger: logger}
}

// outputRows flattens a run into one row per output: input position, input, output index, output.
func outputRows(run *augmentation.Run) [][]interface{} {
	var rows [][]interface{}
	for i, res := range run.Results {
		for j, out := range res.Outputs {
			rows = append(rows, []interface{}{i + 1, res.Input, j + 1, out})
		}
	}
	return rows
}

var outputHeader = []interface{}{"input_id", "input", "output_id", "output"}

// WriteRun writes every output of the run next to its input
func (w *RunWriter) WriteRun(ctx context.Context, path string, run *augmentation.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("cannot export nil run")
	}

	var err error
	if fileType(path) == "csv" {
		err = w.writeCSV(path, run)
	} else {
		err = w.writeXLSX(path, run)
	}
	if err != nil {
		return err
	}
	w.logger.Info("[RunWriter] run %s exported to %s (%d outputs)", run.ID, path, len(run.Outputs()))
	return nil
}

func (w *RunWriter) writeCSV(path string, run *augmentation.Run) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"input_id", "input", "output_id", "output"}); err != nil {
		return err
	}
	for _, row := range outputRows(run) {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (w *RunWriter) writeXLSX(path string, run *augmentation.Run) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", OutputSheet); err != nil {
		return err
	}
	if err := writeSheet(f, OutputSheet, outputHeader, outputRows(run)); err != nil {
		return err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	if err := writeSheet(f, SummarySheet, []interface{}{"metric", "value"}, summaryRows(run)); err != nil {
		return err
	}

	if dropped := droppedRows(run); len(dropped) > 0 {
		if _, err := f.NewSheet(DroppedSheet); err != nil {
			return err
		}
		header := []interface{}{"input_id", "candidate_index", "candidate", "reason", "constraint"}
		if err := writeSheet(f, DroppedSheet, header, dropped); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func summaryRows(run *augmentation.Run) [][]interface{} {
	rows := [][]interface{}{
		{"run_id", run.ID.String()},
		{"recipe", run.Recipe},
		{"alpha", run.Params.Alpha},
		{"n_aug", run.Params.NumAugmentations},
		{"seed", run.Params.Seed},
	}
	s := run.Summary
	if s == nil {
		return rows
	}
	rows = append(rows,
		[]interface{}{"inputs", s.Inputs},
		[]interface{}{"outputs", s.Outputs},
		[]interface{}{"empty_inputs", s.EmptyInputs},
		[]interface{}{"mean_outputs", s.MeanOutputs},
		[]interface{}{"median_outputs", s.MedianOutputs},
		[]interface{}{"mean_change_ratio", s.MeanChangeRatio},
		[]interface{}{"stddev_change_ratio", s.StdDevChangeRatio},
		[]interface{}{"p90_change_ratio", s.P90ChangeRatio},
		[]interface{}{"acceptance_rate", s.AcceptanceRate},
	)
	names := make([]string, 0, len(s.RejectionsByName))
	for name := range s.RejectionsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, []interface{}{"rejected_by:" + name, s.RejectionsByName[name]})
	}
	return rows
}

func droppedRows(run *augmentation.Run) [][]interface{} {
	var rows [][]interface{}
	for i, res := range run.Results {
		for _, d := range res.Dropped {
			rows = append(rows, []interface{}{i + 1, d.CandidateIndex, d.Text, d.Reason, d.Constraint})
		}
	}
	return rows
}
