package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/orbharness/internal/scenario"
)

// RunRecord is one stored battery run.
type RunRecord struct {
	ID         string        `json:"id"`
	Battery    string        `json:"battery"`
	Target     string        `json:"target"`
	Tool       string        `json:"tool"`
	StartedAt  time.Time     `json:"started_at"`
	Elapsed    time.Duration `json:"elapsed"`
	Total      int           `json:"total"`
	Passed     int           `json:"passed"`
	Failed     int           `json:"failed"`
	Unexpected int           `json:"unexpected"`
	LogPath    string        `json:"log_path,omitempty"`
}

// OutcomeRecord is one stored scenario outcome.
type OutcomeRecord struct {
	Seq       int           `json:"seq"`
	Label     string        `json:"label"`
	Section   string        `json:"section,omitempty"`
	Args      []string      `json:"args"`
	Expect    string        `json:"expect"`
	Actual    string        `json:"actual"`
	Predicted string        `json:"predicted"`
	Status    int           `json:"status"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
	Matched   bool          `json:"matched"`
	Warnings  []string      `json:"warnings,omitempty"`
	Notes     []string      `json:"notes,omitempty"`
	Excerpt   string        `json:"excerpt,omitempty"`
}

// FromSummary converts a finished battery into records.
// The summary's RunID is kept when set; otherwise a UUIDv7 is generated.
func FromSummary(sum *scenario.Summary, tool, logPath string) (RunRecord, []OutcomeRecord, error) {
	id := sum.RunID
	if id == "" {
		u, err := uuid.NewV7()
		if err != nil {
			return RunRecord{}, nil, fmt.Errorf("generate run id: %w", err)
		}
		id = u.String()
	}

	run := RunRecord{
		ID:         id,
		Battery:    sum.Battery,
		Target:     sum.Target,
		Tool:       tool,
		StartedAt:  sum.Start,
		Elapsed:    sum.Elapsed,
		Total:      sum.Total,
		Passed:     sum.Passed,
		Failed:     sum.Failed,
		Unexpected: len(sum.Unexpected),
		LogPath:    logPath,
	}

	outcomes := make([]OutcomeRecord, len(sum.Outcomes))
	for i, o := range sum.Outcomes {
		outcomes[i] = OutcomeRecord{
			Seq:       i + 1,
			Label:     o.Label,
			Section:   o.Section,
			Args:      o.Args,
			Expect:    string(o.Expect),
			Actual:    string(o.Actual),
			Predicted: string(o.Predicted),
			Status:    o.Status,
			StartedAt: o.Start,
			Elapsed:   o.Elapsed,
			Matched:   o.Matched,
			Warnings:  o.Warnings,
			Notes:     o.Notes,
			Excerpt:   o.Excerpt,
		}
	}
	return run, outcomes, nil
}
