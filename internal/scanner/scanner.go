package scanner

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/orphanscan/internal/config"
	"github.com/nao1215/orphanscan/internal/model"
)

// ReferenceScanner marks which corpus records are referenced by other
// files. For every record A (the checking context) it loads A's content
// once, then tests every other record B's identifier for substring
// containment in that content; a hit sets B's referenced flag.
//
// The scan evaluates all ordered pairs (A, B) with A != B in a single
// pass. Self-containment never counts: a file's own identifier inside
// its own content does not set its own flag.
//
// Complexity is O(N²·L) over corpus size N and average content length L.
// The outer loop is embarrassingly parallel: each checking context reads
// its own content and only writes other records' referenced flags, which
// are atomic and monotonic, so workers never conflict.
type ReferenceScanner struct {
	// workers is the number of concurrent checking contexts.
	workers int

	// logger for structured logging.
	logger *slog.Logger
}

// ReferenceScannerOption configures a ReferenceScanner.
type ReferenceScannerOption func(*ReferenceScanner)

// WithWorkers sets the number of concurrent checking contexts.
// Values below one are ignored.
func WithWorkers(n int) ReferenceScannerOption {
	return func(s *ReferenceScanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithScannerLogger sets a custom logger for the scanner.
func WithScannerLogger(logger *slog.Logger) ReferenceScannerOption {
	return func(s *ReferenceScanner) {
		s.logger = logger
	}
}

// NewReferenceScanner creates a ReferenceScanner with the default worker
// count, overridable via options.
func NewReferenceScanner(opts ...ReferenceScannerOption) *ReferenceScanner {
	s := &ReferenceScanner{
		workers: config.DefaultWorkers,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Scan marks referenced records across the whole corpus and returns the
// sorted relative paths of files whose content could not be read.
//
// A content-read failure is never fatal: the affected file contributes
// zero outgoing references for this run, but its own referenced flag is
// unaffected and may still be set by another checking context. The only
// error Scan returns is context cancellation.
func (s *ReferenceScanner) Scan(ctx context.Context, corpus *model.Corpus) ([]string, error) {
	records := corpus.Records()

	var mu sync.Mutex
	skipped := make([]string, 0)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, checking := range records {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			content, err := checking.Content()
			if err != nil {
				s.logger.Warn("skipping unreadable file during scan",
					"path", checking.RelativePath,
					"error", err,
				)
				mu.Lock()
				skipped = append(skipped, checking.RelativePath)
				mu.Unlock()
				return nil
			}

			for _, other := range records {
				if other == checking {
					continue
				}
				// Re-checking an already-marked record is wasted work;
				// the atomic load is far cheaper than the containment
				// test on long content.
				if other.Referenced() {
					continue
				}
				if strings.Contains(content, other.Identifier) {
					other.MarkReferenced()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(skipped)

	s.logger.Debug("reference scan complete",
		"records", len(records),
		"skipped", len(skipped),
	)

	return skipped, nil
}
