package scanner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/nao1215/orphanscan/internal/config"
	"github.com/nao1215/orphanscan/internal/model"
)

// Indexer walks a root directory and builds the initial corpus of
// component files. A file is eligible when its name ends with the
// configured component extension and does not end with the test-file
// suffix; its identifier is the base name with the extension stripped.
type Indexer struct {
	// extension is the component-file suffix, including the leading dot.
	extension string

	// testSuffix excludes automated-test files from indexing.
	testSuffix string

	// logger for structured logging.
	logger *slog.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithExtension sets the component-file extension.
func WithExtension(extension string) IndexerOption {
	return func(ix *Indexer) {
		ix.extension = extension
	}
}

// WithTestSuffix sets the test-file exclusion suffix.
func WithTestSuffix(suffix string) IndexerOption {
	return func(ix *Indexer) {
		ix.testSuffix = suffix
	}
}

// WithIndexerLogger sets a custom logger for the indexer.
func WithIndexerLogger(logger *slog.Logger) IndexerOption {
	return func(ix *Indexer) {
		ix.logger = logger
	}
}

// NewIndexer creates an Indexer with the default extension and test
// suffix, overridable via options.
func NewIndexer(opts ...IndexerOption) *Indexer {
	ix := &Indexer{
		extension:  config.DefaultExtension,
		testSuffix: config.DefaultTestSuffix,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(ix)
	}

	return ix
}

// Index recursively visits every file under root and returns the corpus
// of eligible component files, each with referenced = false.
//
// A root that does not exist or is not a directory is a fatal
// configuration error. An unreadable entry inside the tree is logged and
// skipped; the walk continues over siblings, so a single inaccessible
// subtree never aborts the whole index.
func (ix *Indexer) Index(root string) (*model.Corpus, error) {
	if err := validateRoot(root); err != nil {
		return nil, err
	}

	corpus := model.NewCorpus()

	err := godirwalk.Walk(root, &godirwalk.Options{
		// Ordering comes from Corpus.Paths at report time, so an
		// unsorted walk costs nothing in determinism.
		Unsorted: true,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}

			name := de.Name()
			if !strings.HasSuffix(name, ix.extension) || strings.HasSuffix(name, ix.testSuffix) {
				return nil
			}

			rel, err := filepath.Rel(root, osPathname)
			if err != nil {
				// Walk only yields paths under root; a Rel failure here
				// means the entry is unusable, so treat it like any
				// other unreadable entry.
				ix.logger.Warn("skipping entry with unresolvable path",
					"path", osPathname,
					"error", err,
				)
				return nil
			}

			identifier := strings.TrimSuffix(name, ix.extension)
			corpus.Add(model.NewComponentRecord(filepath.ToSlash(rel), identifier, osPathname))
			return nil
		},
		ErrorCallback: func(osPathname string, err error) godirwalk.ErrorAction {
			// Permission errors and broken symlinks are recovered
			// locally; the walk continues over siblings.
			ix.logger.Warn("skipping unreadable directory entry",
				"path", osPathname,
				"error", err,
			)
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	ix.logger.Debug("indexed component files",
		"root", root,
		"count", corpus.Len(),
	)

	return corpus, nil
}

// validateRoot checks that root exists and is a directory.
func validateRoot(root string) error {
	stat, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}
	if !stat.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotDirectory, root)
	}
	return nil
}
