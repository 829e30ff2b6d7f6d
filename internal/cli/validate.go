package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/orbharness/internal/codec"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Get   bool
	Input codec.Input
}

// ValidateResult is the output of a successful validate.
type ValidateResult struct {
	Verb          codec.Verb           `json:"verb"`
	Configuration *codec.Configuration `json:"configuration,omitempty"`
	Canonical     string               `json:"canonical,omitempty"`
	Payload       string               `json:"payload,omitempty"`
	Args          []string             `json:"args"`
	Warnings      []codec.Warning      `json:"warnings,omitempty"`
}

// Problem is one validation failure in JSON error details.
type Problem struct {
	Kind    codec.ErrorKind `json:"kind"`
	Field   codec.FieldName `json:"field,omitempty"`
	Value   string          `json:"value,omitempty"`
	Allowed []string        `json:"allowed,omitempty"`
	Message string          `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an sbas-corrections request without sending it",
		Long: `Validate an sbas-corrections get or set request with the local codec and
print the canonical configuration, the encoded payload and the exact
arguments the device tool would receive. Nothing is sent to the receiver.

Values are matched case-insensitively. A set takes either all four
structured fields or a raw --payload, never both.

Exit codes:
  0 - Request is valid (warnings may still be printed)
  1 - Request is invalid
  2 - Command error

Examples:
  orbharness validate --get
  orbharness validate -s waas --sis-mode operational -n precapp -d do229c
  orbharness validate --payload 02010101`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.Get, "get", false, "validate a get request instead of a set")
	flags.StringVarP(&opts.Input.Satellite, string(codec.FieldSatellite), codec.ShortFlag(codec.FieldSatellite), "",
		"satellite system ("+strings.Join(codec.Allowed(codec.FieldSatellite), "|")+")")
	flags.StringVarP(&opts.Input.SisMode, string(codec.FieldSisMode), codec.ShortFlag(codec.FieldSisMode), "",
		"signal-in-space mode ("+strings.Join(codec.Allowed(codec.FieldSisMode), "|")+")")
	flags.StringVarP(&opts.Input.NavMode, string(codec.FieldNavMode), codec.ShortFlag(codec.FieldNavMode), "",
		"navigation mode ("+strings.Join(codec.Allowed(codec.FieldNavMode), "|")+")")
	flags.StringVarP(&opts.Input.Do229Version, string(codec.FieldDo229Version), codec.ShortFlag(codec.FieldDo229Version), "",
		"DO-229 version ("+strings.Join(codec.Allowed(codec.FieldDo229Version), "|")+")")
	flags.StringVar(&opts.Input.Payload, "payload", "", "raw configuration as hex bytes, e.g. 02010101")
	flags.BoolVar(&opts.Input.ShortFlags, "short", false, "render the arguments with short flags")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	in := opts.Input
	in.Verb = codec.VerbSet
	if opts.Get {
		in.Verb = codec.VerbGet
	}

	req, err := codec.Validate(in)
	if err != nil {
		problems := codec.Problems(err)
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeInvalidInput, "invalid request", toProblems(problems))
			return WrapExitError(ExitFailure, "invalid request", err)
		}
		w := formatter.GetErrWriter()
		fmt.Fprintf(w, "Error [%s]: invalid request\n", ErrCodeInvalidInput)
		for _, p := range problems {
			fmt.Fprintf(w, "  %v\n", p)
		}
		return WrapExitError(ExitFailure, "invalid request", err)
	}

	res := ValidateResult{
		Verb:     req.Verb,
		Args:     req.Args(""),
		Warnings: req.Warnings,
	}
	switch {
	case req.Config != nil:
		res.Configuration = req.Config
		res.Canonical = req.Config.String()
		res.Payload = codec.FormatPayload(req.Config.Encode())
	case req.Payload != nil:
		res.Payload = codec.FormatPayload(req.Payload)
		if cfg, err := codec.DecodeConfiguration(req.Payload); err == nil {
			res.Canonical = cfg.String()
		}
	}

	if opts.Format == "json" {
		return formatter.Success(res)
	}
	writeValidateResult(cmd.OutOrStdout(), res)
	return nil
}

func toProblems(errs []*codec.ValidationError) []Problem {
	out := make([]Problem, len(errs))
	for i, e := range errs {
		out[i] = Problem{
			Kind:    e.Kind,
			Field:   e.Field,
			Value:   e.Value,
			Allowed: e.Allowed,
			Message: e.Error(),
		}
	}
	return out
}

func writeValidateResult(w io.Writer, res ValidateResult) {
	fmt.Fprintf(w, "verb:      %s\n", res.Verb)
	if res.Canonical != "" {
		fmt.Fprintf(w, "config:    %s\n", res.Canonical)
	}
	if res.Payload != "" {
		fmt.Fprintf(w, "payload:   %s\n", res.Payload)
	}
	fmt.Fprintf(w, "command:   %s\n", strings.Join(res.Args, " "))
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning:   %s\n", warn)
	}
}
