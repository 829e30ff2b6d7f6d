package store

import (
	"context"
	"fmt"
)

// WriteRun stores a run and its outcomes in one transaction.
// Either everything is written or nothing is. Writing the same run id
// twice fails with a constraint error.
func (s *Store) WriteRun(ctx context.Context, run RunRecord, outcomes []OutcomeRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, battery, target, tool, started_at, elapsed_ns, total, passed, failed, unexpected, log_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Battery,
		run.Target,
		run.Tool,
		formatTime(run.StartedAt),
		int64(run.Elapsed),
		run.Total,
		run.Passed,
		run.Failed,
		run.Unexpected,
		run.LogPath,
	)
	if err != nil {
		return fmt.Errorf("write run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outcomes
		(run_id, seq, label, section, args, expect, actual, predicted, status,
		 started_at, elapsed_ns, matched, warnings, notes, excerpt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run %s: prepare: %w", run.ID, err)
	}
	defer stmt.Close()

	for _, o := range outcomes {
		args, err := marshalList(o.Args)
		if err != nil {
			return fmt.Errorf("write outcome %s: %w", o.Label, err)
		}
		warnings, err := marshalList(o.Warnings)
		if err != nil {
			return fmt.Errorf("write outcome %s: %w", o.Label, err)
		}
		notes, err := marshalList(o.Notes)
		if err != nil {
			return fmt.Errorf("write outcome %s: %w", o.Label, err)
		}

		_, err = stmt.ExecContext(ctx,
			run.ID,
			o.Seq,
			o.Label,
			o.Section,
			args,
			o.Expect,
			o.Actual,
			o.Predicted,
			o.Status,
			formatTime(o.StartedAt),
			int64(o.Elapsed),
			boolToInt(o.Matched),
			warnings,
			notes,
			o.Excerpt,
		)
		if err != nil {
			return fmt.Errorf("write outcome %s: %w", o.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run %s: commit: %w", run.ID, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
