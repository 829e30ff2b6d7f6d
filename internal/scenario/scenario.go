package scenario

import (
	"github.com/roach88/orbharness/internal/codec"
)

// Expectation is the outcome a scenario predicts for its command.
type Expectation string

const (
	ExpectSuccess Expectation = "success" // exit status 0
	ExpectFailure Expectation = "failure" // any non-zero exit status
)

// Battery is an ordered list of scenarios run against one device.
type Battery struct {
	// Name identifies the battery in logs, summaries and history.
	Name string `yaml:"name" json:"name"`

	// Description is free text shown by `orbharness battery`.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Scenarios run in order. Later scenarios may compare against earlier
	// ones through CompareWith, so order is significant.
	Scenarios []Scenario `yaml:"scenarios" json:"scenarios"`
}

// Scenario is one device-tool invocation with its expected outcome.
//
// Field values are kept exactly as written. The codec decides whether they
// are valid; a scenario may state invalid values on purpose.
type Scenario struct {
	// Label names the scenario in markers and reports. Unique per battery.
	Label string `yaml:"label" json:"label"`

	// Section groups scenarios in the summary (e.g. "satellites", "invalid").
	Section string `yaml:"section,omitempty" json:"section,omitempty"`

	Verb         codec.Verb `yaml:"verb" json:"verb"`
	Satellite    string     `yaml:"satellite,omitempty" json:"satellite,omitempty"`
	SisMode      string     `yaml:"sis_mode,omitempty" json:"sis_mode,omitempty"`
	NavMode      string     `yaml:"nav_mode,omitempty" json:"nav_mode,omitempty"`
	Do229Version string     `yaml:"do229,omitempty" json:"do229,omitempty"`
	Payload      string     `yaml:"payload,omitempty" json:"payload,omitempty"`

	// ShortFlags renders -s, -n and -d instead of the long flags.
	ShortFlags bool `yaml:"short_flags,omitempty" json:"short_flags,omitempty"`

	// Verbatim sends the field values as written instead of their
	// canonical form, so the device tool sees the original spelling.
	Verbatim bool `yaml:"verbatim,omitempty" json:"verbatim,omitempty"`

	// Expect defaults to success when empty.
	Expect Expectation `yaml:"expect,omitempty" json:"expect,omitempty"`

	// CompareWith names an earlier scenario whose output must match this
	// one's once timestamps are removed.
	CompareWith string `yaml:"compare_with,omitempty" json:"compare_with,omitempty"`

	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Input converts the scenario into a codec input.
func (s Scenario) Input() codec.Input {
	return codec.Input{
		Verb:         s.Verb,
		Satellite:    s.Satellite,
		SisMode:      s.SisMode,
		NavMode:      s.NavMode,
		Do229Version: s.Do229Version,
		Payload:      s.Payload,
		ShortFlags:   s.ShortFlags,
	}
}

// Expected returns Expect with the default applied.
func (s Scenario) Expected() Expectation {
	if s.Expect == "" {
		return ExpectSuccess
	}
	return s.Expect
}

// Args renders the argument vector the sequencer will send to target.
// Inputs the codec rejects, and verbatim scenarios, are rendered as written.
// The returned request is nil when the codec rejected the input.
func (s Scenario) Args(target string) ([]string, *codec.Request, error) {
	in := s.Input()
	req, err := codec.Validate(in)
	if err != nil || s.Verbatim {
		return codec.RawArgs(in, target), req, err
	}
	return req.Args(target), req, nil
}
