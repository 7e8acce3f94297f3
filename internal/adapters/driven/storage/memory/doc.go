// Package memory provides in-memory implementations of the driven ports.
//
// The mirror doubles record every tool call and populate an fstest.MapFS on
// checkout, so services can be exercised without git or a filesystem. The
// station store applies the same created/updated/skipped rules as the SQLite
// store.
package memory
