package codec

import (
	"errors"
	"fmt"
	"strings"
)

// Verb is the sbas-corrections sub-command.
type Verb string

const (
	VerbGet Verb = "get"
	VerbSet Verb = "set"
)

// Input is an unvalidated request as a user or a scenario file states it.
// Empty strings mean "not supplied".
type Input struct {
	Verb         Verb   `json:"verb"`
	Satellite    string `json:"satellite,omitempty"`
	SisMode      string `json:"sis_mode,omitempty"`
	NavMode      string `json:"nav_mode,omitempty"`
	Do229Version string `json:"do229,omitempty"`
	Payload      string `json:"payload,omitempty"`

	// ShortFlags renders -s, -n and -d instead of the long flags.
	ShortFlags bool `json:"short_flags,omitempty"`
}

// value returns the raw input for a field.
func (in Input) value(f FieldName) string {
	switch f {
	case FieldSatellite:
		return in.Satellite
	case FieldSisMode:
		return in.SisMode
	case FieldNavMode:
		return in.NavMode
	case FieldDo229Version:
		return in.Do229Version
	}
	return ""
}

// present lists the structured fields supplied, in reporting order.
func (in Input) present() []FieldName {
	var out []FieldName
	for _, f := range Fields {
		if strings.TrimSpace(in.value(f)) != "" {
			out = append(out, f)
		}
	}
	return out
}

// Configuration is a complete, validated structured configuration.
type Configuration struct {
	Satellite    Satellite    `json:"satellite"`
	SisMode      SisMode      `json:"sis_mode"`
	NavMode      NavMode      `json:"nav_mode"`
	Do229Version Do229Version `json:"do229"`
}

// String renders the canonical form, e.g. "waas/operational/precapp/do229c".
func (c Configuration) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", c.Satellite, c.SisMode, c.NavMode, c.Do229Version)
}

// Encode returns the command payload: one byte per field in reporting order.
func (c Configuration) Encode() []byte {
	return []byte{byte(c.Satellite), byte(c.SisMode), byte(c.NavMode), byte(c.Do229Version)}
}

// DecodeConfiguration is the inverse of Encode. Unknown byte values are
// rejected with the offending field named.
func DecodeConfiguration(b []byte) (Configuration, error) {
	if len(b) != CommandWidth {
		return Configuration{}, fmt.Errorf("configuration payload is %d bytes (expected %d)", len(b), CommandWidth)
	}
	for i, f := range Fields {
		if _, ok := domainOf(f).name(b[i]); !ok {
			return Configuration{}, fmt.Errorf("%s: unknown value 0x%02X", f, b[i])
		}
	}
	return Configuration{
		Satellite:    Satellite(b[0]),
		SisMode:      SisMode(b[1]),
		NavMode:      NavMode(b[2]),
		Do229Version: Do229Version(b[3]),
	}, nil
}

// Request is a validated sbas-corrections command.
// For set, exactly one of Config and Payload is non-nil. For get, both are nil.
type Request struct {
	Verb       Verb
	Config     *Configuration
	Payload    []byte
	ShortFlags bool
	Warnings   []Warning
}

// Validate checks in and canonicalises it into a Request.
//
// Structured fields are checked in the order of Fields and every violation
// is reported; the returned error is then an errors.Join of
// *ValidationError values. A payload width mismatch is a warning, not an
// error. The outcome depends only on in.
func Validate(in Input) (*Request, error) {
	switch in.Verb {
	case VerbGet:
		return validateGet(in), nil
	case VerbSet:
		return validateSet(in)
	}
	return nil, &ValidationError{Kind: InvalidVerb, Value: string(in.Verb)}
}

func validateGet(in Input) *Request {
	req := &Request{Verb: VerbGet}
	if len(in.present()) > 0 || strings.TrimSpace(in.Payload) != "" {
		req.Warnings = append(req.Warnings, Warning{
			Kind:    IgnoredConfiguration,
			Message: "get takes no configuration; supplied values are not sent",
		})
	}
	return req
}

func validateSet(in Input) (*Request, error) {
	fields := in.present()
	hasPayload := strings.TrimSpace(in.Payload) != ""

	switch {
	case hasPayload && len(fields) > 0:
		return nil, &ValidationError{Kind: ConflictingModes, Fields: fields}
	case !hasPayload && len(fields) == 0:
		return nil, &ValidationError{Kind: MissingConfiguration}
	case hasPayload:
		return validatePayload(in)
	}
	return validateStructured(in)
}

func validatePayload(in Input) (*Request, error) {
	b, err := ParsePayload(in.Payload)
	if err != nil {
		return nil, err
	}
	req := &Request{Verb: VerbSet, Payload: b, ShortFlags: in.ShortFlags}
	if len(b) != CommandWidth {
		req.Warnings = append(req.Warnings, lengthWarning(b))
	}
	return req, nil
}

func validateStructured(in Input) (*Request, error) {
	var (
		errs   []error
		values [4]byte
	)
	for i, f := range Fields {
		raw := in.value(f)
		if strings.TrimSpace(raw) == "" {
			errs = append(errs, &ValidationError{Kind: MissingField, Field: f})
			continue
		}
		v, err := domainOf(f).parse(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		values[i] = v
	}
	if len(errs) == 1 {
		return nil, errs[0]
	}
	if len(errs) > 1 {
		return nil, errors.Join(errs...)
	}

	cfg := Configuration{
		Satellite:    Satellite(values[0]),
		SisMode:      SisMode(values[1]),
		NavMode:      NavMode(values[2]),
		Do229Version: Do229Version(values[3]),
	}
	return &Request{Verb: VerbSet, Config: &cfg, ShortFlags: in.ShortFlags}, nil
}
