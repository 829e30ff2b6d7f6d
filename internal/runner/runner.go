// Package runner executes labelled device-tool commands one at a time.
//
// A Runner prints a start marker, invokes the tool exactly once, prints the
// tool's output and a completion marker with elapsed time and exit status,
// and hands the result back. It never retries and never aborts the process:
// deciding what a non-zero status means is the caller's job.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Clock supplies wall-clock instants. time.Now readings carry a monotonic
// component, so elapsed times are immune to wall-clock steps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ExecutionResult is the outcome of one invocation.
type ExecutionResult struct {
	Label   string        `json:"label"`
	Args    []string      `json:"args"`
	Start   time.Time     `json:"start"`
	End     time.Time     `json:"end"`
	Elapsed time.Duration `json:"elapsed"`
	Status  int           `json:"status"`
	Output  []byte        `json:"-"`

	// Err is set when the tool could not be run at all.
	Err error `json:"-"`
}

// Passed reports whether the tool ran and exited 0.
func (r ExecutionResult) Passed() bool {
	return r.Err == nil && r.Status == 0
}

// Runner executes commands through an Invoker.
type Runner struct {
	invoker Invoker
	out     io.Writer
	logger  *slog.Logger
	clock   Clock
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock replaces the system clock (tests).
func WithClock(c Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithLogger sets the logger receiving per-step trace records.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// New returns a Runner printing its markers to out.
func New(invoker Invoker, out io.Writer, opts ...Option) *Runner {
	r := &Runner{
		invoker: invoker,
		out:     out,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:   systemClock{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run invokes args once under label and reports the outcome.
func (r *Runner) Run(ctx context.Context, label string, args []string) ExecutionResult {
	fmt.Fprintf(r.out, "=== RUN   %s\n", label)
	fmt.Fprintf(r.out, "    $ %s\n", strings.Join(args, " "))
	r.logger.Debug("invoking", "label", label, "args", strings.Join(args, " "))

	start := r.clock.Now()
	status, output, err := r.invoker.Invoke(ctx, args)
	end := r.clock.Now()

	res := ExecutionResult{
		Label:   label,
		Args:    args,
		Start:   start,
		End:     end,
		Elapsed: end.Sub(start),
		Status:  status,
		Output:  output,
		Err:     err,
	}

	if len(output) > 0 {
		r.out.Write(output)
		if !bytes.HasSuffix(output, []byte("\n")) {
			io.WriteString(r.out, "\n")
		}
	}
	if err != nil {
		fmt.Fprintf(r.out, "    error: %v\n", err)
	}

	verdict := "PASS"
	if !res.Passed() {
		verdict = "FAIL"
	}
	fmt.Fprintf(r.out, "--- %s: %s (%.3fs, exit %d)\n", verdict, label, res.Elapsed.Seconds(), status)

	r.logger.Debug("finished",
		"label", label,
		"status", status,
		"elapsed", res.Elapsed,
		"error", errString(err),
	)
	return res
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
