package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

// createTestStore opens a fresh history database in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun builds a run of n outcomes; every third outcome is unexpected.
func createTestRun(id string, start time.Time, n int) (RunRecord, []OutcomeRecord) {
	run := RunRecord{
		ID:        id,
		Battery:   "sbas-corrections",
		Target:    "/dev/ttyFAKE0",
		Tool:      "orbfix",
		StartedAt: start,
		Total:     n,
		LogPath:   "logs/sbas-corrections_20261016_090000.log",
	}

	outcomes := make([]OutcomeRecord, n)
	for i := range outcomes {
		matched := (i+1)%3 != 0
		o := OutcomeRecord{
			Seq:       i + 1,
			Label:     fmt.Sprintf("step-%d", i+1),
			Section:   "baseline",
			Args:      []string{"cmd", "sbas-corrections", "get", "--port", "/dev/ttyFAKE0"},
			Expect:    "success",
			Actual:    "success",
			Predicted: "success",
			StartedAt: start.Add(time.Duration(i) * 250 * time.Millisecond),
			Elapsed:   250 * time.Millisecond,
			Matched:   matched,
		}
		if !matched {
			o.Actual = "failure"
			o.Status = 1
			o.Notes = []string{"output differs from step-1"}
			o.Excerpt = "NACK: rejected"
			run.Unexpected++
			run.Failed++
		} else {
			run.Passed++
		}
		run.Elapsed += o.Elapsed
		outcomes[i] = o
	}
	return run, outcomes
}
