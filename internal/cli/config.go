package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/orbharness/internal/port"
)

// ConfigResult is the output of the config subcommands.
type ConfigResult struct {
	Path    string `json:"path"`
	Port    string `json:"port,omitempty"`
	Source  string `json:"source,omitempty"` // "env" | "file", show only
	Cleared *bool  `json:"cleared,omitempty"`
}

// NewConfigCommand creates the config command and its subcommands.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the saved default serial port",
		Long: `Manage the default serial port stored in ~/.orbfix/config.toml, the file
the orbfix tool reads. Set ORBFIX_CONFIG_FILE to use another file.

Examples:
  orbharness config set-port /dev/ttyUSB0
  orbharness config show
  orbharness config clear-port`,
	}

	cmd.AddCommand(newConfigSetPortCommand(rootOpts))
	cmd.AddCommand(newConfigShowCommand(rootOpts))
	cmd.AddCommand(newConfigClearPortCommand(rootOpts))

	return cmd
}

func newConfigSetPortCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-port <port>",
		Short: "Save the default serial port",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			st, err := port.DefaultStore()
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeConfig, "cannot locate port configuration", err)
			}
			if err := st.SetPort(args[0]); err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeConfig, "cannot save port", err)
			}
			res := ConfigResult{Path: st.Path(), Port: args[0]}
			if rootOpts.Format == "json" {
				return formatter.Success(res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved port %s to %s\n", res.Port, res.Path)
			return nil
		},
	}
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the port a run would use",
		Long: `Show the serial port a run without --port would use and where it comes
from: the ORBFIX_PORT environment variable or the saved config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			st, err := port.DefaultStore()
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeConfig, "cannot locate port configuration", err)
			}
			resolver := port.NewResolver(st)
			target, err := resolver.Resolve()
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeUnresolvedPort, "no serial port configured", err)
			}
			source := "file"
			if resolver.Override != "" {
				source = "env"
			}
			res := ConfigResult{Path: st.Path(), Port: string(target), Source: source}
			if rootOpts.Format == "json" {
				return formatter.Success(res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "port:   %s\nsource: %s\nfile:   %s\n", res.Port, res.Source, res.Path)
			return nil
		},
	}
}

func newConfigClearPortCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-port",
		Short: "Remove the saved serial port",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			st, err := port.DefaultStore()
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeConfig, "cannot locate port configuration", err)
			}
			cleared, err := st.ClearPort()
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeConfig, "cannot clear port", err)
			}
			res := ConfigResult{Path: st.Path(), Cleared: &cleared}
			if rootOpts.Format == "json" {
				return formatter.Success(res)
			}
			if cleared {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared saved port in %s\n", res.Path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "No saved port in %s\n", res.Path)
			}
			return nil
		},
	}
}
