package config

import (
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The extension, test-suffix, and entry-point defaults mirror the layout
// conventions of the React codebases this tool grew up around: components
// live in .tsx files, their tests in .test.tsx files, and the application
// is rooted at a handful of bootstrap and router files.
const (
	// DefaultExtension is the component-file extension selected during
	// indexing. Files not ending in this suffix are ignored entirely.
	DefaultExtension = ".tsx"

	// DefaultTestSuffix is the exclusion pattern for automated-test files.
	// A file ending in this suffix is never indexed as a candidate, so a
	// component referenced only by its own tests still counts as orphaned.
	DefaultTestSuffix = ".test.tsx"

	// DefaultWorkers is the number of concurrent checking contexts during
	// the reference-scan phase. The scan is embarrassingly parallel over
	// the outer loop; 8 workers keeps disk queues reasonable on laptops
	// while still saturating typical SSDs.
	DefaultWorkers = 8

	// DefaultBatchSize is the number of roots scanned concurrently when
	// multiple root directories are given on the command line.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "orphanscan"
)

// DefaultEntryPoints returns the conventional graph roots excluded from
// orphan classification regardless of their reference count. These are
// the files nothing imports by name but that the build system or router
// loads directly.
func DefaultEntryPoints() []string {
	return []string{
		"index.tsx",
		"App.tsx",
		"main.tsx",
		"router/AppRouter.tsx",
	}
}

// Config holds all configuration options for orphanscan.
// It is populated from CLI flags and the optional project file, then
// passed through the application via dependency injection rather than
// global state.
//
// Design decision: We use a single flat struct instead of nested structs
// because the option count is small. If the configuration grows
// significantly, consider refactoring into sub-structs.
type Config struct {
	// Roots are the directories to scan. Each root produces its own
	// corpus and its own report; roots never share reference state.
	// Relative paths are resolved to absolute before walking.
	Roots []string

	// Extension is the component-file suffix selected during indexing,
	// including the leading dot (e.g. ".tsx").
	Extension string

	// TestSuffix is the test-file exclusion suffix (e.g. ".test.tsx").
	// It must itself end with Extension so that the exclusion carves a
	// subset out of the selected files rather than a disjoint set.
	TestSuffix string

	// EntryPoints are root-relative slash-normalized paths always
	// excluded from the orphan report. Membership is by exact path.
	EntryPoints []string

	// Workers is the concurrency of the reference-scan phase.
	Workers int

	// BatchSize is the number of roots scanned concurrently.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the project configuration file.
	// If empty, the tool searches for .orphanscan in the scan root,
	// the current directory, and the user's home directory.
	ConfigFilePath string

	// JSONReport enables JSON report output instead of the plain-text
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. When set, the
	// report is written to this file instead of stdout; parent
	// directories are created automatically.
	ReportFile string

	// SaveToDB indicates whether run summaries are persisted to the
	// history database for later comparison.
	SaveToDB bool

	// DBDir is the directory holding the SQLite history database.
	// Defaults to the XDG data directory.
	DBDir string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases; callers override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because most defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Extension:   DefaultExtension,
		TestSuffix:  DefaultTestSuffix,
		EntryPoints: DefaultEntryPoints(),
		Workers:     DefaultWorkers,
		BatchSize:   DefaultBatchSize,
		SaveToDB:    true,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for orphanscan.
// On Linux: ~/.local/share/orphanscan
// On macOS: ~/Library/Application Support/orphanscan
// On Windows: %LOCALAPPDATA%\orphanscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for orphanscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// EntryPointSet returns the entry points as a set for membership tests
// during classification.
func (c *Config) EntryPointSet() map[string]bool {
	set := make(map[string]bool, len(c.EntryPoints))
	for _, path := range c.EntryPoints {
		set[filepath.ToSlash(path)] = true
	}
	return set
}

// Validate checks if the configuration is valid.
// It returns a specific sentinel error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast with clear messages. This is called once
// after CLI parsing, before any walking begins. We return the first
// error found because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one root directory to scan
	if len(c.Roots) == 0 {
		return ErrNoRoot
	}

	// The extension must be a real suffix with a leading dot;
	// an empty extension would select every file in the tree
	if !strings.HasPrefix(c.Extension, ".") || len(c.Extension) < 2 {
		return ErrInvalidExtension
	}

	// The test suffix must end with the extension so the exclusion
	// removes a subset of the selected files
	if !strings.HasSuffix(c.TestSuffix, c.Extension) || c.TestSuffix == c.Extension {
		return ErrInvalidTestSuffix
	}

	// Workers must be positive; zero would mean no scanning
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	// BatchSize must be positive
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
