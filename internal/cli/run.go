package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/orbharness/internal/port"
	"github.com/roach88/orbharness/internal/runner"
	"github.com/roach88/orbharness/internal/scenario"
	"github.com/roach88/orbharness/internal/session"
	"github.com/roach88/orbharness/internal/store"
)

// DefaultTool is the device tool invoked when --tool is not given.
const DefaultTool = "orbfix"

// newInvoker builds the device-tool invoker. Tests replace it.
var newInvoker = func(tool string) (runner.Invoker, error) {
	return runner.NewExecInvoker(tool)
}

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Battery string // battery YAML file; empty runs the built-in battery
	Port    string // explicit serial port, wins over ORBFIX_PORT and the config file
	Tool    string // device tool name or path
	LogsDir string // replaces <battery dir>/logs
	History string // SQLite history database; empty disables history
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a battery against the receiver",
		Long: `Run every scenario of a battery through the device tool, one at a time.

Each command is logged between "=== RUN" and "--- PASS/FAIL" markers to the
console and to logs/<battery>_<timestamp>.log, with a per-step trace in the
matching .trace.log. Scenarios that fail never stop the battery.

Exit codes:
  0   - Battery completed (scenario verdicts are in the summary)
  2   - Port unresolved or missing, invalid battery file, run interrupted
  127 - Device tool not found

Examples:
  orbharness run
  orbharness run --port /dev/ttyUSB0
  orbharness run --battery smoke.yaml --history runs.db
  orbharness run --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Battery, "battery", "", "battery YAML file (default: built-in SBAS corrections battery)")
	cmd.Flags().StringVar(&opts.Port, "port", "", "serial port (default: $"+port.EnvPort+" or saved port)")
	cmd.Flags().StringVar(&opts.Tool, "tool", DefaultTool, "device tool name or path")
	cmd.Flags().StringVar(&opts.LogsDir, "logs-dir", "", "log directory (default: logs/ next to the battery file)")
	cmd.Flags().StringVar(&opts.History, "history", "", "record the run in this SQLite database")

	return cmd
}

func runRun(opts *RunOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	baseDir, err := os.Getwd()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "cannot determine working directory", err)
	}
	baseName := scenario.DefaultBatteryName
	if opts.Battery != "" {
		baseDir = filepath.Dir(opts.Battery)
		baseName = strings.TrimSuffix(filepath.Base(opts.Battery), filepath.Ext(opts.Battery))
	}

	// In JSON mode the console copy of the run goes to stderr so stdout
	// carries only the response.
	console := cmd.OutOrStdout()
	if opts.Format == "json" {
		console = cmd.ErrOrStderr()
	}
	sess, err := session.Begin(baseDir, baseName, session.Options{
		Stdout:  console,
		Stderr:  cmd.ErrOrStderr(),
		LogsDir: opts.LogsDir,
		Verbose: opts.Verbose,
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "cannot start log session", err)
	}
	defer sess.Close()
	formatter.VerboseLog("log: %s", sess.LogPath())
	formatter.VerboseLog("trace: %s", sess.TracePath())

	b := scenario.DefaultBattery()
	if opts.Battery != "" {
		b, err = scenario.LoadBattery(opts.Battery)
		if err := sess.Check("load battery", err); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidBattery, "invalid battery", err)
		}
	}

	cfg, err := port.DefaultStore()
	if err := sess.Check("locate port configuration", err); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "cannot locate port configuration", err)
	}
	target, err := resolveTarget(cfg, opts.Port)
	if err := sess.Check("resolve port", err); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeUnresolvedPort, "serial port unavailable", err)
	}

	inv, err := newInvoker(opts.Tool)
	if err := sess.Check("locate device tool", err); err != nil {
		return formatter.Fail(ExitToolMissing, ErrCodeToolMissing, "device tool unavailable", err)
	}

	r := runner.New(inv, sess.Out(), runner.WithLogger(sess.Trace()))
	seq := scenario.NewSequencer(nil, r, sess.Log())

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	sum, runErr := seq.RunOn(ctx, b, target)
	if sum != nil {
		sum.RunID = sess.RunID()
		if opts.History != "" {
			_ = sess.Check("record history", recordHistory(ctx, opts.History, sum, opts.Tool, sess.LogPath()))
		}
	}

	if err := sess.Check("run battery", runErr); err != nil {
		if errors.Is(err, runner.ErrToolNotFound) {
			return formatter.Fail(ExitToolMissing, ErrCodeToolMissing, "device tool unavailable", err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "battery aborted", err)
	}

	if opts.Format == "json" {
		return formatter.Success(sum)
	}
	return sum.WriteText(sess.Out())
}

// resolveTarget resolves the serial port once and checks that it exists.
// An explicit flag value wins over ORBFIX_PORT and the saved port.
func resolveTarget(cfg *port.Store, flagPort string) (port.Target, error) {
	resolver := port.NewResolver(cfg)
	if flagPort != "" {
		resolver.Override = flagPort
	}
	target, err := resolver.Resolve()
	if err != nil {
		return "", err
	}
	if err := port.AssertExists(target); err != nil {
		return "", err
	}
	return target, nil
}

func recordHistory(ctx context.Context, path string, sum *scenario.Summary, tool, logPath string) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	run, outcomes, err := store.FromSummary(sum, tool, logPath)
	if err != nil {
		return err
	}
	return st.WriteRun(context.WithoutCancel(ctx), run, outcomes)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
