package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/orphanscan/internal/config"
	"github.com/nao1215/orphanscan/internal/model"
	"github.com/nao1215/orphanscan/internal/scanner"
)

// IndexStep builds the corpus of eligible component files by walking the
// report's root directory. It is always the first step: later steps read
// the corpus it stores on the report.
type IndexStep struct {
	// indexer performs the directory walk and file selection.
	indexer *scanner.Indexer
}

// NewIndexStep creates an index step using the given extension and
// test-suffix exclusion.
func NewIndexStep(cfg *config.Config, logger *slog.Logger) *IndexStep {
	return &IndexStep{
		indexer: scanner.NewIndexer(
			scanner.WithExtension(cfg.Extension),
			scanner.WithTestSuffix(cfg.TestSuffix),
			scanner.WithIndexerLogger(logger),
		),
	}
}

// Name returns the step name.
func (s *IndexStep) Name() string {
	return "index"
}

// Do walks the root and stores the corpus on the report.
// A root that cannot be indexed at all is a critical failure: nothing
// downstream can run without a corpus.
func (s *IndexStep) Do(_ context.Context, report *model.ScanReport) error {
	corpus, err := s.indexer.Index(report.Root)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	report.Corpus = corpus
	report.ComponentCount = corpus.Len()
	return nil
}

// ReferenceScanStep runs the pairwise containment scan over the corpus,
// flipping referenced flags in place.
type ReferenceScanStep struct {
	// scanner performs the parallel containment scan.
	scanner *scanner.ReferenceScanner
}

// NewReferenceScanStep creates a scan step with the given concurrency.
func NewReferenceScanStep(workers int, logger *slog.Logger) *ReferenceScanStep {
	return &ReferenceScanStep{
		scanner: scanner.NewReferenceScanner(
			scanner.WithWorkers(workers),
			scanner.WithScannerLogger(logger),
		),
	}
}

// Name returns the step name.
func (s *ReferenceScanStep) Name() string {
	return "reference_scan"
}

// Do scans the corpus and records which files could not be read.
// Content-read failures are recoverable and never fail the step; the
// only critical error is context cancellation.
func (s *ReferenceScanStep) Do(ctx context.Context, report *model.ScanReport) error {
	if report.Corpus == nil {
		return ErrNoCorpus
	}

	skipped, err := s.scanner.Scan(ctx, report.Corpus)
	if err != nil {
		return fmt.Errorf("reference scan failed: %w", err)
	}

	report.SkippedFiles = skipped
	return nil
}

// ClassifyStep filters the fully-scanned corpus down to orphans and
// fills in the report's result fields.
type ClassifyStep struct {
	// entryPoints are the configured graph roots, kept in list form for
	// the report and converted to a set for classification.
	entryPoints []string
}

// NewClassifyStep creates a classify step with the given entry points.
func NewClassifyStep(entryPoints []string) *ClassifyStep {
	return &ClassifyStep{entryPoints: entryPoints}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do classifies the corpus and writes the sorted orphan list, the
// referenced count, and the applied entry points onto the report.
func (s *ClassifyStep) Do(_ context.Context, report *model.ScanReport) error {
	if report.Corpus == nil {
		return ErrNoCorpus
	}

	set := make(map[string]bool, len(s.entryPoints))
	for _, path := range s.entryPoints {
		set[path] = true
	}

	report.Orphans = scanner.NewClassifier(set).Classify(report.Corpus)
	report.EntryPoints = s.entryPoints

	referenced := 0
	for _, record := range report.Corpus.Records() {
		if record.Referenced() {
			referenced++
		}
	}
	report.ReferencedCount = referenced

	report.Summary = model.NewSummary(report)
	return nil
}

// ReportSaver persists a completed scan report.
// The database package provides the production implementation.
type ReportSaver interface {
	SaveScanReport(ctx context.Context, report *model.ScanReport) (int64, error)
}

// PersistStep saves the run summary to the history database.
// It is appended only when persistence is enabled, and pipelines that
// include it should run with continue-on-error so a storage failure
// never discards an already-computed report.
type PersistStep struct {
	// saver receives the completed report.
	saver ReportSaver

	// logger for structured logging.
	logger *slog.Logger
}

// NewPersistStep creates a persist step writing to the given saver.
func NewPersistStep(saver ReportSaver, logger *slog.Logger) *PersistStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStep{saver: saver, logger: logger}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do saves the report summary.
func (s *PersistStep) Do(ctx context.Context, report *model.ScanReport) error {
	id, err := s.saver.SaveScanReport(ctx, report)
	if err != nil {
		return fmt.Errorf("persist failed: %w", err)
	}

	s.logger.Debug("scan report saved",
		"scan_id", id,
		"root", report.Root,
	)
	return nil
}
