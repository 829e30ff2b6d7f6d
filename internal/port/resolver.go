// Package port resolves the serial target the device tool talks to.
//
// Resolution is a one-shot, synchronous step taken once at the start of a
// run: an explicit override wins, otherwise the persisted store is read.
// A separate AssertExists step checks that the target is a real resource.
package port

import (
	"os"
)

// EnvPort supplies the target directly, bypassing the store.
const EnvPort = "ORBFIX_PORT"

// Target is the serial endpoint path, e.g. /dev/ttyUSB0 or COM5.
type Target string

// Resolver determines the Target for a run.
type Resolver struct {
	// Override is returned verbatim when non-empty.
	Override string

	// Store is consulted when Override is empty. A nil store behaves like
	// a missing file.
	Store *Store
}

// NewResolver returns a resolver reading its override from EnvPort.
func NewResolver(store *Store) *Resolver {
	return &Resolver{Override: os.Getenv(EnvPort), Store: store}
}

// Resolve returns the target without checking that it exists.
//
// Errors wrap ErrConfigurationMissing or ErrConfigurationIncomplete.
func (r *Resolver) Resolve() (Target, error) {
	if r.Override != "" {
		return Target(r.Override), nil
	}
	if r.Store == nil {
		return "", &ResolveError{Err: ErrConfigurationMissing}
	}
	port, err := r.Store.Port()
	if err != nil {
		return "", err
	}
	return Target(port), nil
}

// AssertExists fails with ErrTargetNotFound unless t names an accessible
// system resource.
func AssertExists(t Target) error {
	if t == "" {
		return &ResolveError{Err: ErrTargetNotFound}
	}
	if _, err := os.Stat(string(t)); err != nil {
		return &ResolveError{Err: ErrTargetNotFound, Target: t, Cause: err}
	}
	return nil
}
