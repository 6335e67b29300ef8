package scanner

import "errors"

// Indexing errors.
// Only root-level problems are fatal: a root that cannot be used at all
// means the configuration is wrong. Everything below the root (unreadable
// subtrees, unreadable files) is recovered locally and logged.
var (
	// ErrRootNotFound is returned when the scan root does not exist.
	ErrRootNotFound = errors.New("scan root does not exist")

	// ErrRootNotDirectory is returned when the scan root exists but is
	// not a directory.
	ErrRootNotDirectory = errors.New("scan root is not a directory")
)
