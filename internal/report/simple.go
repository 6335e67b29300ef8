package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/orphanscan/internal/model"
)

// SimpleWriter outputs the plain-text orphan report.
// The body is one header line naming the resolved root followed by the
// sorted orphan paths, one per line, each prefixed with "- ". Scripts
// that post-process the output depend on exactly this shape, so the
// footer stats go below the list rather than interleaved.
type SimpleWriter struct {
	baseWriter

	// showStats controls whether the summary footer is printed.
	showStats bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithStats enables the summary footer with component counts and
// skipped files.
func WithStats(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showStats = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showStats:  true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in plain text.
// It generates a Summary from the ScanReport if not already present.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	summary := report.Summary
	if summary == nil {
		summary = model.NewSummary(report)
	}

	return w.WriteSummary(summary)
}

// WriteSummary outputs the summary in plain text.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Potential orphaned components under %s:\n", summary.Root)
	for _, orphan := range summary.Orphans {
		fmt.Fprintf(&sb, "- %s\n", orphan)
	}

	if summary.OrphanCount == 0 {
		sb.WriteString("(none)\n")
	}

	if w.showStats {
		w.writeStats(&sb, summary)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeStats writes the summary footer.
func (w *SimpleWriter) writeStats(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Components scanned: %d (referenced: %d, orphaned: %d)\n",
		summary.ComponentCount, summary.ReferencedCount, summary.OrphanCount)

	if summary.SkippedCount > 0 {
		fmt.Fprintf(sb, "Unreadable files skipped: %d\n", summary.SkippedCount)
	}

	if summary.Elapsed > 0 {
		fmt.Fprintf(sb, "Elapsed: %s\n", summary.Elapsed.Round(time.Millisecond))
	}

	if summary.Error != "" {
		fmt.Fprintf(sb, "Scan error: %s\n", summary.Error)
	}
}
