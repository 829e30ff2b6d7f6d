// Package store keeps an optional SQLite history of battery runs.
//
// A run is one row in runs plus one row per scenario in outcomes, written
// together in a single transaction once the battery finishes. Nothing is
// updated afterwards. Run ids are UUIDv7, so ordering by id is ordering by
// start time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Outcome lists (argument vectors, warnings, notes) are stored as JSON
// arrays in TEXT columns.
package store
