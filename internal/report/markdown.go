package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/orphanscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing, e.g. pasting
// the orphan list into a cleanup tracking issue.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation which provides:
//  1. Type-safe markdown generation
//  2. Support for tables, lists, and code blocks
//  3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	summary := report.Summary
	if summary == nil {
		summary = model.NewSummary(report)
	}

	return w.WriteSummary(summary)
}

// WriteSummary outputs the summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeDistribution(md, summary)
	w.writeOrphans(md, summary)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	md.H1("Orphaned Component Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Scan Root", "`" + summary.Root + "`"},
			{"Scan Date", summary.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Components", strconv.Itoa(summary.ComponentCount)},
			{"Elapsed", summary.Elapsed.Round(time.Millisecond).String()},
			{"Status", w.getStatusText(summary)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on summary state.
func (w *MarkdownWriter) getStatusText(summary *model.Summary) string {
	if summary.Error != "" {
		return "❌ Error - " + summary.Error
	}
	if summary.SkippedCount > 0 {
		return "⚠️ Complete (unreadable files skipped)"
	}
	return "✅ Complete"
}

// writeDistribution writes the referenced/orphaned breakdown with a
// mermaid pie chart.
func (w *MarkdownWriter) writeDistribution(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Reference Distribution")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Category", "Count"},
		Rows: [][]string{
			{"Referenced", strconv.Itoa(summary.ReferencedCount)},
			{"Orphaned", strconv.Itoa(summary.OrphanCount)},
			{"Skipped (unreadable)", strconv.Itoa(summary.SkippedCount)},
			{"**Total**", "**" + strconv.Itoa(summary.ComponentCount) + "**"},
		},
	})

	if summary.ComponentCount > 0 {
		w.writePieChart(md, summary)
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of the reference distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Component Reference Distribution"),
		piechart.WithShowData(true),
	)

	if summary.ReferencedCount > 0 {
		chart.LabelAndIntValue("Referenced", uint64(summary.ReferencedCount))
	}
	if summary.OrphanCount > 0 {
		chart.LabelAndIntValue("Orphaned", uint64(summary.OrphanCount))
	}
	if other := summary.ComponentCount - summary.ReferencedCount - summary.OrphanCount; other > 0 {
		// Entry points and skipped files: neither referenced nor orphaned.
		chart.LabelAndIntValue("Excluded", uint64(other))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
}

// writeOrphans writes the orphan list with an alert reflecting the result.
func (w *MarkdownWriter) writeOrphans(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Orphans")
	md.PlainText("")

	switch {
	case summary.OrphanCount == 0:
		md.Tip("No orphaned components detected.")
	case summary.OrphanCount > 20:
		md.Warningf(
			"%d orphaned component(s) detected. Matching is substring-based; verify before deleting.",
			summary.OrphanCount,
		)
	default:
		md.Notef(
			"%d orphaned component(s) detected. Matching is substring-based; verify before deleting.",
			summary.OrphanCount,
		)
	}
	md.PlainText("")

	if summary.OrphanCount > 0 {
		md.BulletList(summary.Orphans...)
		md.PlainText("")
	}
}
