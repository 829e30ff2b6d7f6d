// Package scenario drives a battery of sbas-corrections invocations against
// a receiver and judges each one against its expected outcome.
//
// A battery is either the built-in DefaultBattery or a YAML file read with
// LoadBattery. The Sequencer resolves the serial port once, then runs every
// scenario in order through a runner.Runner. A scenario that fails, expected
// or not, never stops the battery: only an unresolvable port or a missing
// device tool does.
//
// Scenarios that are invalid on purpose are still sent to the device tool,
// rendered exactly as written, so the battery observes the tool's own
// rejection rather than the harness's. The codec's verdict is recorded next
// to the tool's as the outcome's prediction.
package scenario
