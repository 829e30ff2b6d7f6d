package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/orbharness/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB         string
	RunID      string
	Limit      int
	Unexpected bool
}

// RunDetail is the output of history --run.
type RunDetail struct {
	Run      store.RunRecord       `json:"run"`
	Outcomes []store.OutcomeRecord `json:"outcomes"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded battery runs",
		Long: `List battery runs recorded with "orbharness run --history", newest first,
or show the outcomes of one run.

Examples:
  orbharness history --db runs.db
  orbharness history --db runs.db --limit 50
  orbharness history --db runs.db --run 0192a4f0-... --unexpected`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "history database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show the outcomes of this run")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&opts.Unexpected, "unexpected", false, "with --run, show only unexpected outcomes")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	st, err := store.Open(opts.DB)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, "cannot open history", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		runs, err := st.ListRuns(ctx, opts.Limit)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeHistory, "cannot list runs", err)
		}
		if opts.Format == "json" {
			return formatter.Success(runs)
		}
		return writeRuns(cmd.OutOrStdout(), runs)
	}

	run, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, store.ErrRunNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, "unknown run", err)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, "cannot read run", err)
	}

	var outcomes []store.OutcomeRecord
	if opts.Unexpected {
		outcomes, err = st.ReadUnexpected(ctx, opts.RunID)
	} else {
		outcomes, err = st.ReadOutcomes(ctx, opts.RunID)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, "cannot read outcomes", err)
	}

	detail := RunDetail{Run: run, Outcomes: outcomes}
	if opts.Format == "json" {
		return formatter.Success(detail)
	}
	return writeRunDetail(cmd.OutOrStdout(), detail)
}

func writeRuns(w io.Writer, runs []store.RunRecord) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tBATTERY\tTARGET\tTOTAL\tEXIT 0\tUNEXPECTED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Battery, r.Target, r.Total, r.Passed, r.Unexpected)
	}
	return tw.Flush()
}

func writeRunDetail(w io.Writer, d RunDetail) error {
	r := d.Run
	fmt.Fprintf(w, "Run %s\n", r.ID)
	fmt.Fprintf(w, "  battery %s on %s via %s\n", r.Battery, r.Target, r.Tool)
	fmt.Fprintf(w, "  started %s, %.3fs\n", r.StartedAt.Local().Format(time.DateTime), r.Elapsed.Seconds())
	fmt.Fprintf(w, "  %d scenarios: %d exited 0, %d exited non-zero, %d unexpected\n", r.Total, r.Passed, r.Failed, r.Unexpected)
	if r.LogPath != "" {
		fmt.Fprintf(w, "  log %s\n", r.LogPath)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tLABEL\tEXPECT\tACTUAL\tEXIT\tVERDICT\tCOMMAND")
	for _, o := range d.Outcomes {
		verdict := "ok"
		if !o.Matched {
			verdict = "UNEXPECTED"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			o.Seq, o.Label, o.Expect, o.Actual, o.Status, verdict, strings.Join(o.Args, " "))
	}
	return tw.Flush()
}
