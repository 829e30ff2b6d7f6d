package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/roach88/orbharness/internal/codec"
	"github.com/roach88/orbharness/internal/port"
	"github.com/roach88/orbharness/internal/runner"
)

// Excerpt limits for the output of failing commands.
const (
	excerptLines = 5
	excerptWidth = 120
)

// Resolver yields the serial port a battery runs against.
type Resolver interface {
	Resolve() (port.Target, error)
}

// Sequencer runs batteries one scenario at a time.
type Sequencer struct {
	resolver Resolver
	runner   *runner.Runner
	logger   *slog.Logger
	exists   func(port.Target) error
}

// NewSequencer returns a Sequencer. A nil logger discards records.
func NewSequencer(resolver Resolver, r *runner.Runner, logger *slog.Logger) *Sequencer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sequencer{
		resolver: resolver,
		runner:   r,
		logger:   logger,
		exists:   port.AssertExists,
	}
}

// Run executes every scenario of b in order.
//
// The port is resolved and checked once, before any command runs; failure
// there returns the resolver's error and no summary. After that, only a
// missing device tool or a cancelled ctx stop the battery early, in which
// case the summary so far is returned alongside the error. Scenario
// verdicts never produce an error.
func (s *Sequencer) Run(ctx context.Context, b *Battery) (*Summary, error) {
	target, err := s.resolver.Resolve()
	if err != nil {
		return nil, err
	}
	if err := s.exists(target); err != nil {
		return nil, err
	}
	return s.RunOn(ctx, b, target)
}

// RunOn executes every scenario of b against a target the caller has
// already resolved and checked. The resolver is not consulted.
func (s *Sequencer) RunOn(ctx context.Context, b *Battery, target port.Target) (*Summary, error) {
	s.logger.Info("battery starting",
		"battery", b.Name,
		"target", string(target),
		"scenarios", len(b.Scenarios),
	)

	sum := &Summary{Battery: b.Name, Target: string(target)}
	outputs := make(map[string]string, len(b.Scenarios))

	for _, sc := range b.Scenarios {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("battery interrupted before %s: %w", sc.Label, err)
		}

		o, output, err := s.runOne(ctx, sc, target, outputs)
		if err != nil {
			return sum, err
		}
		outputs[sc.Label] = output
		if sum.Total == 0 {
			sum.Start = o.Start
		}
		sum.Elapsed += o.Elapsed
		sum.add(o)
	}

	s.logger.Info("battery finished",
		"battery", b.Name,
		"total", sum.Total,
		"passed", sum.Passed,
		"failed", sum.Failed,
		"unexpected", len(sum.Unexpected),
	)
	return sum, nil
}

// runOne runs a single scenario and returns its outcome together with its
// normalized output for later comparisons.
func (s *Sequencer) runOne(ctx context.Context, sc Scenario, target port.Target, outputs map[string]string) (*Outcome, string, error) {
	args, req, verr := sc.Args(string(target))

	o := &Outcome{
		Label:     sc.Label,
		Section:   sc.Section,
		Args:      args,
		Expect:    sc.Expected(),
		Predicted: ExpectSuccess,
	}
	if verr != nil {
		o.Predicted = ExpectFailure
		for _, p := range problems(verr) {
			o.Notes = append(o.Notes, "codec: "+p)
		}
		s.logger.Debug("codec rejected input, sending as written", "label", sc.Label, "error", verr)
	} else {
		for _, w := range req.Warnings {
			o.Warnings = append(o.Warnings, w.String())
			s.logger.Warn("codec warning", "label", sc.Label, "kind", string(w.Kind), "message", w.Message)
		}
	}

	res := s.runner.Run(ctx, sc.Label, args)
	if errors.Is(res.Err, runner.ErrToolNotFound) {
		return nil, "", res.Err
	}

	o.Status = res.Status
	o.Start = res.Start
	o.Elapsed = res.Elapsed
	o.Actual = ExpectFailure
	if res.Passed() {
		o.Actual = ExpectSuccess
	}
	o.Matched = o.Actual == o.Expect
	if res.Err != nil {
		o.Notes = append(o.Notes, "invocation error: "+res.Err.Error())
	}
	if o.Actual == ExpectFailure {
		o.Excerpt = excerpt(res.Output)
	}

	output := normalizeOutput(res.Output)
	if sc.CompareWith != "" {
		if prev, ok := outputs[sc.CompareWith]; ok && prev == output {
			o.Notes = append(o.Notes, "output matches "+sc.CompareWith+" apart from timestamps")
		} else {
			o.Matched = false
			o.Notes = append(o.Notes, "output differs from "+sc.CompareWith)
		}
	}

	s.logger.Info("scenario finished",
		"label", sc.Label,
		"status", o.Status,
		"expect", string(o.Expect),
		"verdict", o.Verdict(),
	)
	return o, output, nil
}

func problems(err error) []string {
	ps := codec.Problems(err)
	if len(ps) == 0 {
		return []string{err.Error()}
	}
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Error()
	}
	return out
}

var timestampPattern = regexp.MustCompile(
	`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?|\d{2}:\d{2}:\d{2}(\.\d+)?`)

// normalizeOutput removes timestamps and trailing whitespace so two reads
// of the same device state compare equal.
func normalizeOutput(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(timestampPattern.ReplaceAllString(line, "<ts>"), " \t\r")
	}
	return strings.Join(lines, "\n")
}

// excerpt keeps the last lines of a command's output, each cut to a
// bounded number of characters, for reporting failures.
func excerpt(b []byte) string {
	text := strings.TrimSpace(string(b))
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	var head []string
	if n := len(lines) - excerptLines; n > 0 {
		head = []string{fmt.Sprintf("... (%d earlier lines)", n)}
		lines = lines[n:]
	}
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if utf8.RuneCountInString(line) > excerptWidth {
			line = string([]rune(line)[:excerptWidth]) + "..."
		}
		lines[i] = line
	}
	return strings.Join(append(head, lines...), "\n")
}
