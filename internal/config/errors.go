package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoRoot is returned when no root directory is specified.
	// The root directory is the only required argument.
	ErrNoRoot = errors.New("no root directory specified: provide a directory to scan")

	// ErrInvalidExtension is returned when the component extension does
	// not start with a dot or is empty. An empty extension would match
	// every file in the tree.
	ErrInvalidExtension = errors.New("invalid extension: must start with '.' and name a suffix (e.g. \".tsx\")")

	// ErrInvalidTestSuffix is returned when the test-file suffix does not
	// end with the component extension. The exclusion pattern must carve
	// a subset out of the selected files.
	ErrInvalidTestSuffix = errors.New("invalid test suffix: must end with the component extension (e.g. \".test.tsx\" for \".tsx\")")

	// ErrInvalidWorkers is returned when the scan worker count is not
	// positive. Zero workers would mean no scanning.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
