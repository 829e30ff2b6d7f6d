package scenario

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Outcome is the judged result of one scenario.
type Outcome struct {
	Label   string      `json:"label"`
	Section string      `json:"section,omitempty"`
	Args    []string    `json:"args"`
	Expect  Expectation `json:"expect"`

	// Actual is success for exit status 0 and failure otherwise.
	Actual  Expectation   `json:"actual"`
	Status  int           `json:"status"`
	Start   time.Time     `json:"start"`
	Elapsed time.Duration `json:"elapsed"`

	// Predicted is what the local codec expected of the input. It is
	// informational: the device tool has the final word.
	Predicted Expectation `json:"predicted"`

	// Matched is true when Actual equals Expect and any output comparison
	// requested through CompareWith held.
	Matched bool `json:"matched"`

	Warnings []string `json:"warnings,omitempty"`
	Notes    []string `json:"notes,omitempty"`

	// Excerpt is the tail of the output of a failing command.
	Excerpt string `json:"excerpt,omitempty"`
}

// Verdict is the one-word form of Matched used in reports.
func (o *Outcome) Verdict() string {
	if o.Matched {
		return "ok"
	}
	return "UNEXPECTED"
}

// Summary aggregates a battery run.
type Summary struct {
	RunID   string        `json:"run_id,omitempty"`
	Battery string        `json:"battery"`
	Target  string        `json:"target"`
	Start   time.Time     `json:"start"`
	Elapsed time.Duration `json:"elapsed"`

	Total int `json:"total"`

	// Passed counts commands that exited 0, Failed those that did not.
	Passed int `json:"passed"`
	Failed int `json:"failed"`

	// Unexpected lists labels whose outcome did not match the expectation.
	Unexpected []string `json:"unexpected"`

	Outcomes []*Outcome `json:"outcomes"`
}

func (s *Summary) add(o *Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	s.Total++
	if o.Actual == ExpectSuccess {
		s.Passed++
	} else {
		s.Failed++
	}
	if !o.Matched {
		s.Unexpected = append(s.Unexpected, o.Label)
	}
}

// AllMatched reports whether every scenario behaved as expected.
func (s *Summary) AllMatched() bool {
	return len(s.Unexpected) == 0
}

// WriteText renders the summary as a plain-text report.
func (s *Summary) WriteText(w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("Battery %s on %s\n", s.Battery, s.Target)
	section := "\x00"
	for _, o := range s.Outcomes {
		if o.Section != section {
			section = o.Section
			name := section
			if name == "" {
				name = "(none)"
			}
			ew.printf("\n[%s]\n", name)
		}
		ew.printf("  %-10s  %-40s  expect %-7s  exit %-3d  %.3fs\n",
			o.Verdict(), o.Label, o.Expect, o.Status, o.Elapsed.Seconds())
		for _, w := range o.Warnings {
			ew.printf("              warning: %s\n", w)
		}
		for _, n := range o.Notes {
			ew.printf("              note: %s\n", n)
		}
		if o.Excerpt != "" && !o.Matched {
			for _, line := range strings.Split(o.Excerpt, "\n") {
				ew.printf("              | %s\n", line)
			}
		}
	}

	ew.printf("\n%d scenarios: %d exited 0, %d exited non-zero, %d unexpected (%.3fs)\n",
		s.Total, s.Passed, s.Failed, len(s.Unexpected), s.Elapsed.Seconds())
	for _, label := range s.Unexpected {
		ew.printf("  unexpected: %s\n", label)
	}
	return ew.err
}

// errWriter keeps the first write error so rendering code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
