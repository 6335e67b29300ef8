// Package model defines the core data structures for orphan detection.
//
// The central types are ComponentRecord (one per eligible source file),
// Corpus (the set of records keyed by relative path), and ScanReport
// (the result of one full index/scan/classify run).
//
// Design decision: This package holds only data and the invariants that
// protect it (single content load, monotonic reference flags). All
// behavior that walks directories, reads files in bulk, or classifies
// records lives in the scanner package, keeping model free of I/O policy.
package model
