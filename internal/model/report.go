package model

import "time"

// ScanReport is the result of one full index/scan/classify run over a
// single root directory.
//
// Design decision: We use one struct for the whole run rather than
// separate per-phase results because the phases form a strict pipeline:
// each step fills in its own fields and later steps read them. This also
// makes the report the natural unit for serialization and history storage.
type ScanReport struct {
	// Root is the resolved absolute path of the scanned directory.
	Root string `json:"root"`

	// DateScanned is the timestamp when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// ComponentCount is the number of eligible files indexed.
	ComponentCount int `json:"component_count"`

	// ReferencedCount is the number of records whose identifier was
	// found inside at least one other file's content.
	ReferencedCount int `json:"referenced_count"`

	// Orphans is the sorted list of relative paths with no detected
	// incoming reference that are not entry points. This is the sole
	// output artifact of the core.
	Orphans []string `json:"orphans"`

	// EntryPoints lists the configured entry-point paths that were
	// excluded from orphan classification during this run.
	EntryPoints []string `json:"entry_points,omitempty"`

	// SkippedFiles lists relative paths whose content could not be read
	// during scanning. Those files contributed no outgoing references,
	// though their own referenced flag may still have been set by others.
	SkippedFiles []string `json:"skipped_files,omitempty"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`

	// PerformedSteps tracks which pipeline steps executed, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// ErrorMessage holds the failure description if a step failed.
	ErrorMessage string `json:"error_message,omitempty"`

	// Corpus is the indexed component set, populated by the index step
	// and consumed by the scan and classify steps.
	// Excluded from JSON: it carries full file contents.
	Corpus *Corpus `json:"-"`

	// Summary is the condensed view used by report writers.
	Summary *Summary `json:"summary,omitempty"`
}

// NewScanReport creates a report for the given resolved root.
func NewScanReport(root string) *ScanReport {
	return &ScanReport{
		Root:        root,
		DateScanned: time.Now(),
	}
}

// Summary is a condensed, human-oriented view of a scan report.
// It drops the corpus and keeps only the numbers and lists a reader
// needs to act on the result.
type Summary struct {
	// Root is the resolved absolute path of the scanned directory.
	Root string `json:"root"`

	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// ComponentCount is the number of eligible files indexed.
	ComponentCount int `json:"component_count"`

	// ReferencedCount is the number of records marked referenced.
	ReferencedCount int `json:"referenced_count"`

	// OrphanCount is len(Orphans), stored for serialized consumers.
	OrphanCount int `json:"orphan_count"`

	// Orphans is the sorted orphan path list.
	Orphans []string `json:"orphans"`

	// SkippedCount is the number of files whose content failed to read.
	SkippedCount int `json:"skipped_count"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`

	// Error contains the failure message if the run did not complete.
	Error string `json:"error,omitempty"`
}

// NewSummary condenses a full scan report.
func NewSummary(report *ScanReport) *Summary {
	return &Summary{
		Root:            report.Root,
		DateScanned:     report.DateScanned,
		ComponentCount:  report.ComponentCount,
		ReferencedCount: report.ReferencedCount,
		OrphanCount:     len(report.Orphans),
		Orphans:         report.Orphans,
		SkippedCount:    len(report.SkippedFiles),
		Elapsed:         report.Elapsed,
		Error:           report.ErrorMessage,
	}
}
