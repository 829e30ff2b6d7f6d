package codec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorises validation failures.
type ErrorKind string

const (
	// ConflictingModes: a raw payload was combined with structured fields.
	ConflictingModes ErrorKind = "ConflictingModes"

	// MissingConfiguration: a set request carried neither mode.
	MissingConfiguration ErrorKind = "MissingConfiguration"

	// MissingField: a structured configuration omitted a required field.
	MissingField ErrorKind = "MissingField"

	// InvalidEnumValue: a field value is outside its domain.
	InvalidEnumValue ErrorKind = "InvalidEnumValue"

	// InvalidPayload: the raw payload is not a hex byte string.
	InvalidPayload ErrorKind = "InvalidPayload"

	// InvalidVerb: the request verb is neither get nor set.
	InvalidVerb ErrorKind = "InvalidVerb"
)

// ValidationError describes one rejected aspect of a request.
//
// Validate joins several ValidationErrors with errors.Join when more than one
// field is wrong; use Problems to list them.
type ValidationError struct {
	Kind ErrorKind

	// Field names the offending axis (MissingField, InvalidEnumValue).
	Field FieldName

	// Fields lists the structured fields found next to a payload (ConflictingModes).
	Fields []FieldName

	// Value is the raw input that was rejected.
	Value string

	// Allowed is the field's domain (InvalidEnumValue).
	Allowed []string

	// Reason carries the parser detail (InvalidPayload).
	Reason string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ConflictingModes:
		return fmt.Sprintf("%s: --payload cannot be combined with %s", e.Kind, joinFlags(e.Fields))
	case MissingConfiguration:
		return fmt.Sprintf("%s: set requires --payload or all of %s", e.Kind, joinFlags(Fields))
	case MissingField:
		return fmt.Sprintf("%s(%s): --%s is required", e.Kind, e.Field, e.Field)
	case InvalidEnumValue:
		return fmt.Sprintf("%s(%s): unknown value %q (valid: %s)", e.Kind, e.Field, e.Value, strings.Join(e.Allowed, ", "))
	case InvalidPayload:
		return fmt.Sprintf("%s: %q: %s", e.Kind, e.Value, e.Reason)
	case InvalidVerb:
		return fmt.Sprintf("%s: %q (valid: get, set)", e.Kind, e.Value)
	}
	return string(e.Kind)
}

func joinFlags(fields []FieldName) string {
	flags := make([]string, len(fields))
	for i, f := range fields {
		flags[i] = "--" + string(f)
	}
	return strings.Join(flags, ", ")
}

// Problems flattens an error returned by Validate into its ValidationErrors,
// in reporting order. Errors of other types are skipped.
func Problems(err error) []*ValidationError {
	if err == nil {
		return nil
	}
	var out []*ValidationError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, Problems(e)...)
		}
		return out
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		out = append(out, ve)
	}
	return out
}

// WarningKind categorises non-fatal findings.
type WarningKind string

const (
	// PayloadLengthMismatch: the payload width differs from CommandWidth.
	PayloadLengthMismatch WarningKind = "PayloadLengthMismatch"

	// IgnoredConfiguration: a get request carried configuration values.
	IgnoredConfiguration WarningKind = "IgnoredConfiguration"
)

// Warning is a non-fatal validation finding. The request still proceeds.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}
