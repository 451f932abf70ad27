// Package store provides SQLite-backed storage for recorded dispatch
// traces.
//
// The store is an append-only log of sessions and their dispatch events.
// A Store implements trace.Recorder, so a runtime can write to it directly.
//
// Ordering uses the logical seq assigned by the recording runtime, never
// wall time. Every query that returns events orders by seq ASC, id ASC
// COLLATE BINARY, so two reads of the same session are identical.
//
// Event ids are content addressed (ir.EventID): writing the same event
// twice is a no-op.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability and performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: events must belong to a known session
package store
