package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/orphanscan/internal/model"
)

// BatchProcessor handles concurrent scanning of multiple root
// directories. It uses errgroup to manage goroutines and respect the
// concurrency limit.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because:
//  1. It keeps the Pipeline focused on single-root execution
//  2. Roots never share reference state, so each gets a fresh pipeline
//  3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each root.
	// A factory ensures corpus state never leaks between roots.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of roots scanned at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed scan reports in argument order.
	// Access is synchronized via mutex.
	results []*model.ScanReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent root scans.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each root to create a fresh
// pipeline instance, so per-root state cannot leak between scans.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
		results:         make([]*model.ScanReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch scans multiple roots concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a hand-rolled
// worker pool because errgroup handles the concurrency correctly with
// less machinery. Each root gets its own goroutine, but only
// 'concurrency' goroutines run simultaneously.
//
// Returns all reports in argument order, even for roots that failed;
// a failed root's report carries the error message. The error return
// indicates cancellation.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, roots []string) ([]*model.ScanReport, error) {
	bp.logger.Info("starting batch scan",
		"total_roots", len(roots),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.ScanReport, len(roots))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, root := range roots {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("scanning root",
				"root", root,
				"index", i+1,
				"total", len(roots),
			)

			report := model.NewScanReport(root)

			p := bp.pipelineFactory()
			scanStart := time.Now()
			err := p.Execute(ctx, report)
			report.Elapsed = time.Since(scanStart)

			// Store result regardless of error: the report carries the
			// failure message if the scan did not complete.
			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("root scan failed",
					"root", root,
					"error", err,
				)
				// Other roots still get scanned; the failure lives in
				// the report.
				return nil
			}

			bp.logger.Info("root scan completed",
				"root", root,
				"orphans", len(report.Orphans),
			)

			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch scan complete",
		"total_roots", len(roots),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}
