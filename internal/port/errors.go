package port

import (
	"errors"
	"fmt"
)

// Remediation is appended to every resolution failure.
const Remediation = "run 'orbharness config set-port <port>' or set " + EnvPort + "=<port>"

var (
	// ErrConfigurationMissing means no override was given and no store file exists.
	ErrConfigurationMissing = errors.New("no serial port configured")

	// ErrConfigurationIncomplete means the store exists but has no serial.port.
	ErrConfigurationIncomplete = errors.New("saved configuration has no serial port")

	// ErrTargetNotFound means the resolved target is not an accessible resource.
	ErrTargetNotFound = errors.New("serial port not found")
)

// ResolveError wraps one of the sentinel errors with the context needed to
// fix it. Use errors.Is against the sentinels to classify.
type ResolveError struct {
	Err    error
	Path   string // store path, when the store was consulted
	Target Target // target, when one was resolved
	Cause  error  // underlying OS or decode error, if any
}

func (e *ResolveError) Error() string {
	msg := e.Err.Error()
	switch {
	case e.Target != "":
		msg = fmt.Sprintf("%s: %s", msg, e.Target)
	case e.Path != "":
		msg = fmt.Sprintf("%s (config file: %s)", msg, e.Path)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg + "; " + Remediation
}

func (e *ResolveError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}
