package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/orbharness/internal/scenario"
)

// placeholderPort stands in for the serial port in a plan printed without --port.
const placeholderPort = "<port>"

// BatteryOptions holds flags for the battery command.
type BatteryOptions struct {
	*RootOptions
	Battery string
	Port    string
}

// PlannedStep is one scenario as the run command would execute it.
type PlannedStep struct {
	Label     string               `json:"label"`
	Section   string               `json:"section,omitempty"`
	Expect    scenario.Expectation `json:"expect"`
	Predicted scenario.Expectation `json:"predicted"`
	Args      []string             `json:"args"`
}

// BatteryPlan is the output of the battery command.
type BatteryPlan struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Steps       []PlannedStep `json:"steps"`
}

// NewBatteryCommand creates the battery command.
func NewBatteryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatteryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "battery",
		Short: "Print a battery's scenarios without running them",
		Long: `Print every scenario of a battery with the exact device-tool arguments
the run command would use, and the outcome the local codec predicts.

Nothing is sent to the receiver. Use it to check a battery file.

Examples:
  orbharness battery
  orbharness battery --battery smoke.yaml --port /dev/ttyUSB0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatteryPlan(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Battery, "battery", "", "battery YAML file (default: built-in SBAS corrections battery)")
	cmd.Flags().StringVar(&opts.Port, "port", "", "serial port to show in the arguments")

	return cmd
}

func runBatteryPlan(opts *BatteryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	b := scenario.DefaultBattery()
	if opts.Battery != "" {
		var err error
		if b, err = scenario.LoadBattery(opts.Battery); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidBattery, "invalid battery", err)
		}
	}

	target := opts.Port
	if target == "" {
		target = placeholderPort
	}
	plan := planBattery(b, target)

	if opts.Format == "json" {
		return formatter.Success(plan)
	}
	return writePlan(cmd.OutOrStdout(), plan)
}

func planBattery(b *scenario.Battery, target string) BatteryPlan {
	plan := BatteryPlan{Name: b.Name, Description: b.Description}
	for _, sc := range b.Scenarios {
		args, _, err := sc.Args(target)
		predicted := scenario.ExpectSuccess
		if err != nil {
			predicted = scenario.ExpectFailure
		}
		plan.Steps = append(plan.Steps, PlannedStep{
			Label:     sc.Label,
			Section:   sc.Section,
			Expect:    sc.Expected(),
			Predicted: predicted,
			Args:      args,
		})
	}
	return plan
}

func writePlan(w io.Writer, plan BatteryPlan) error {
	fmt.Fprintf(w, "Battery %s (%d scenarios)\n", plan.Name, len(plan.Steps))
	if plan.Description != "" {
		fmt.Fprintf(w, "%s\n", plan.Description)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tEXPECT\tPREDICTED\tCOMMAND")
	for _, s := range plan.Steps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Label, s.Expect, s.Predicted, strings.Join(s.Args, " "))
	}
	return tw.Flush()
}
