// Package database provides SQLite-based storage for scan history.
//
// Each completed run is stored as one row in the scans table plus one
// row per orphan in the orphans table. The compare command reads this
// history to show which orphans appeared or were resolved between runs
// of the same root. The corpus itself (file contents, reference flags)
// is never persisted; it is process-scoped by design.
package database
