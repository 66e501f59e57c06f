// Package store provides SQLite-backed storage for the render log.
//
// Every render of a seed is recorded with its exported timeline document,
// the document hash and the full list of voice triggers. The log is
// append-only; replay re-renders a stored seed and checks that the document
// and triggers come out identical.
//
// # Ordering
//
//   - Renders are numbered by a logical seq, never by timestamps
//   - Listing uses ORDER BY seq ASC, id ASC COLLATE BINARY
//   - Triggers are read back ORDER BY idx ASC
//
// # Idempotency
//
// WriteRender uses ON CONFLICT(id) DO NOTHING. Writing the same render
// twice leaves the first copy, triggers included, untouched.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Metadata and trigger styles are stored as RFC 8785 canonical JSON via
// internal/ir.
package store
