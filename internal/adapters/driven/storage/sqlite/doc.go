// Package sqlite persists normalised charging stations in a SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files;
// applied versions are recorded in schema_migrations.
//
// Stations are unique per (data_source, external_id). Each row carries a
// fingerprint of its content so unchanged stations are skipped rather than
// rewritten.
//
// # Data Location
//
// The database is stored at <data dir>/stations.db.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
