// Package codec validates and canonicalises SBAS corrections requests for the
// orbfix device tool.
//
// A set request carries exactly one of two configuration modes:
//
//   - a structured configuration: all four enumerated fields (satellite,
//     SIS mode, navigation mode, DO-229 version), matched case-insensitively
//   - a raw payload: a hex byte string sent to the receiver as-is
//
// A get request carries no configuration at all.
//
// The enumerated domains live in a single table (see field.go) which also
// records the byte value the receiver uses for each member. Every parse,
// error message and argument rendering goes through that table.
//
// Validation never mutates a payload. A payload whose decoded width differs
// from CommandWidth is accepted with a PayloadLengthMismatch warning; the
// device tool makes the final call on misshaped transmissions.
package codec
