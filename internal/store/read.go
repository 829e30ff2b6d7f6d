package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned by ReadRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, battery, target, tool, started_at, elapsed_ns, total, passed, failed, unexpected, log_path`

// ListRuns returns the most recent runs, newest first.
// A limit of 0 or less returns every run.
//
// Returns an empty slice (not nil) when the history is empty.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns one run by id.
func (s *Store) ReadRun(ctx context.Context, id string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// ReadOutcomes returns a run's outcomes in battery order.
func (s *Store) ReadOutcomes(ctx context.Context, runID string) ([]OutcomeRecord, error) {
	return s.readOutcomes(ctx, runID, false)
}

// ReadUnexpected returns only the outcomes that did not match their
// expectation, in battery order.
func (s *Store) ReadUnexpected(ctx context.Context, runID string) ([]OutcomeRecord, error) {
	return s.readOutcomes(ctx, runID, true)
}

func (s *Store) readOutcomes(ctx context.Context, runID string, unexpectedOnly bool) ([]OutcomeRecord, error) {
	query := `
		SELECT seq, label, section, args, expect, actual, predicted, status,
		       started_at, elapsed_ns, matched, warnings, notes, excerpt
		FROM outcomes
		WHERE run_id = ?`
	if unexpectedOnly {
		query += ` AND matched = 0`
	}
	query += ` ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []OutcomeRecord{}
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return outcomes, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var (
		run       RunRecord
		startedAt string
		elapsed   int64
	)
	err := row.Scan(
		&run.ID,
		&run.Battery,
		&run.Target,
		&run.Tool,
		&startedAt,
		&elapsed,
		&run.Total,
		&run.Passed,
		&run.Failed,
		&run.Unexpected,
		&run.LogPath,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, err
		}
		return RunRecord{}, fmt.Errorf("scan run: %w", err)
	}
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return RunRecord{}, fmt.Errorf("scan run %s: %w", run.ID, err)
	}
	run.Elapsed = time.Duration(elapsed)
	return run, nil
}

func scanOutcome(row scanner) (OutcomeRecord, error) {
	var (
		o                     OutcomeRecord
		args, warnings, notes string
		startedAt             string
		elapsed               int64
		matched               int
	)
	err := row.Scan(
		&o.Seq,
		&o.Label,
		&o.Section,
		&args,
		&o.Expect,
		&o.Actual,
		&o.Predicted,
		&o.Status,
		&startedAt,
		&elapsed,
		&matched,
		&warnings,
		&notes,
		&o.Excerpt,
	)
	if err != nil {
		return OutcomeRecord{}, fmt.Errorf("scan outcome: %w", err)
	}

	if o.Args, err = unmarshalList(args); err != nil {
		return OutcomeRecord{}, fmt.Errorf("scan outcome %s: %w", o.Label, err)
	}
	if o.Warnings, err = unmarshalList(warnings); err != nil {
		return OutcomeRecord{}, fmt.Errorf("scan outcome %s: %w", o.Label, err)
	}
	if o.Notes, err = unmarshalList(notes); err != nil {
		return OutcomeRecord{}, fmt.Errorf("scan outcome %s: %w", o.Label, err)
	}
	if o.StartedAt, err = parseTime(startedAt); err != nil {
		return OutcomeRecord{}, fmt.Errorf("scan outcome %s: %w", o.Label, err)
	}
	o.Elapsed = time.Duration(elapsed)
	o.Matched = matched != 0
	return o, nil
}
