package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"textattack/domain/augmentation"
	"textattack/domain/core"
	"textattack/ports"

	"github.com/jmoiron/sqlx"
)

type runRow struct {
	ID        string         `db:"id"`
	Recipe    string         `db:"recipe"`
	Params    string         `db:"params"`
	Summary   sql.NullString `db:"summary"`
	CreatedAt string         `db:"created_at"`
}

type resultRow struct {
	RunID          string         `db:"run_id"`
	Position       int            `db:"position"`
	Input          string         `db:"input"`
	InputHash      string         `db:"input_hash"`
	Outputs        string         `db:"outputs"`
	CandidateCount int            `db:"candidate_count"`
	WordCount      int            `db:"word_count"`
	WordsToSwap    int            `db:"words_to_swap"`
	Dropped        sql.NullString `db:"dropped"`
}

// RunRepositoryImpl implements AugmentationRepository over sqlx
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a run repository on an opened database
func NewRunRepository(db *sqlx.DB) ports.AugmentationRepository {
	return &RunRepositoryImpl{db: db}
}

// SaveRun stores a run and its results in one transaction. A run without an ID gets one.
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, run *augmentation.Run) error {
	if run == nil {
		return fmt.Errorf("%w: nil run", core.ErrContractViolation)
	}
	if run.ID.IsEmpty() {
		run.ID = core.NewRunID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = core.Now()
	}

	row, err := toRunRow(run)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO augmentation_runs (id, recipe, params, summary, created_at)
		VALUES (:id, :recipe, :params, :summary, :created_at)
	`, row); err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for i, res := range run.Results {
		rr, err := toResultRow(run.ID, i, res)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO augmentation_results
				(run_id, position, input, input_hash, outputs, candidate_count, word_count, words_to_swap, dropped)
			VALUES
				(:run_id, :position, :input, :input_hash, :outputs, :candidate_count, :word_count, :words_to_swap, :dropped)
		`, rr); err != nil {
			return fmt.Errorf("insert result %d of run %s: %w", i, run.ID, err)
		}
	}

	return tx.Commit()
}

// GetRun loads a run with all of its results in input order
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*augmentation.Run, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT id, recipe, params, summary, created_at
		FROM augmentation_runs
		WHERE id = ?
	`), id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	run, err := fromRunRow(row)
	if err != nil {
		return nil, err
	}

	var rows []resultRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT run_id, position, input, input_hash, outputs, candidate_count, word_count, words_to_swap, dropped
		FROM augmentation_results
		WHERE run_id = ?
		ORDER BY position ASC
	`), id.String()); err != nil {
		return nil, err
	}

	run.Results = make([]augmentation.Result, 0, len(rows))
	for _, rr := range rows {
		res, err := fromResultRow(rr)
		if err != nil {
			return nil, err
		}
		run.Results = append(run.Results, res)
	}
	return run, nil
}

// ListRuns returns run headers newest first
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]*augmentation.Run, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT id, recipe, params, summary, created_at
		FROM augmentation_runs
		ORDER BY created_at DESC
		LIMIT ?
	`), limit); err != nil {
		return nil, err
	}

	runs := make([]*augmentation.Run, 0, len(rows))
	for _, row := range rows {
		run, err := fromRunRow(row)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func toRunRow(run *augmentation.Run) (runRow, error) {
	params, err := json.Marshal(run.Params)
	if err != nil {
		return runRow{}, fmt.Errorf("encode params: %w", err)
	}
	row := runRow{
		ID:        run.ID.String(),
		Recipe:    run.Recipe,
		Params:    string(params),
		CreatedAt: run.CreatedAt.SortKey(),
	}
	if run.Summary != nil {
		summary, err := json.Marshal(run.Summary)
		if err != nil {
			return runRow{}, fmt.Errorf("encode summary: %w", err)
		}
		row.Summary = sql.NullString{String: string(summary), Valid: true}
	}
	return row, nil
}

func fromRunRow(row runRow) (*augmentation.Run, error) {
	run := &augmentation.Run{
		ID:     core.RunID(row.ID),
		Recipe: row.Recipe,
	}
	if err := json.Unmarshal([]byte(row.Params), &run.Params); err != nil {
		return nil, fmt.Errorf("decode params of run %s: %w", row.ID, err)
	}
	if row.Summary.Valid && row.Summary.String != "" {
		run.Summary = &augmentation.Summary{}
		if err := json.Unmarshal([]byte(row.Summary.String), run.Summary); err != nil {
			return nil, fmt.Errorf("decode summary of run %s: %w", row.ID, err)
		}
	}
	created, err := core.ParseSortKey(row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("decode created_at of run %s: %w", row.ID, err)
	}
	run.CreatedAt = created
	return run, nil
}

func toResultRow(id core.RunID, position int, res augmentation.Result) (resultRow, error) {
	outputs := res.Outputs
	if outputs == nil {
		outputs = []string{}
	}
	encoded, err := json.Marshal(outputs)
	if err != nil {
		return resultRow{}, fmt.Errorf("encode outputs: %w", err)
	}
	hash := res.InputHash
	if hash == "" {
		hash = core.NewTextHash(res.Input)
	}
	row := resultRow{
		RunID:          id.String(),
		Position:       position,
		Input:          res.Input,
		InputHash:      hash.String(),
		Outputs:        string(encoded),
		CandidateCount: res.CandidateCount,
		WordCount:      res.WordCount,
		WordsToSwap:    res.WordsToSwap,
	}
	if len(res.Dropped) > 0 {
		dropped, err := json.Marshal(res.Dropped)
		if err != nil {
			return resultRow{}, fmt.Errorf("encode dropped: %w", err)
		}
		row.Dropped = sql.NullString{String: string(dropped), Valid: true}
	}
	return row, nil
}

func fromResultRow(row resultRow) (augmentation.Result, error) {
	res := augmentation.Result{
		Input:          row.Input,
		InputHash:      core.TextHash(row.InputHash),
		CandidateCount: row.CandidateCount,
		WordCount:      row.WordCount,
		WordsToSwap:    row.WordsToSwap,
	}
	if err := json.Unmarshal([]byte(row.Outputs), &res.Outputs); err != nil {
		return res, fmt.Errorf("decode outputs at position %d: %w", row.Position, err)
	}
	if row.Dropped.Valid && row.Dropped.String != "" {
		if err := json.Unmarshal([]byte(row.Dropped.String), &res.Dropped); err != nil {
			return res, fmt.Errorf("decode dropped at position %d: %w", row.Position, err)
		}
	}
	return res, nil
}
