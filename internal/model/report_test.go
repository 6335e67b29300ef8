package model

import (
	"testing"
	"time"
)

// TestNewScanReport tests report initialization.
func TestNewScanReport(t *testing.T) {
	t.Parallel()

	report := NewScanReport("/src/client")

	if report.Root != "/src/client" {
		t.Errorf("expected root '/src/client', got %q", report.Root)
	}
	if report.DateScanned.IsZero() {
		t.Error("expected DateScanned to be set")
	}
	if report.Orphans != nil {
		t.Error("expected no orphans before classification")
	}
}

// TestNewSummary tests condensing a full report.
func TestNewSummary(t *testing.T) {
	t.Parallel()

	report := &ScanReport{
		Root:            "/src/client",
		DateScanned:     time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		ComponentCount:  12,
		ReferencedCount: 9,
		Orphans:         []string{"a/Unused.tsx", "b/Dead.tsx"},
		SkippedFiles:    []string{"c/Locked.tsx"},
		Elapsed:         3 * time.Second,
		ErrorMessage:    "",
	}

	summary := NewSummary(report)

	t.Run("copies counts", func(t *testing.T) {
		t.Parallel()
		if summary.ComponentCount != 12 {
			t.Errorf("expected ComponentCount 12, got %d", summary.ComponentCount)
		}
		if summary.ReferencedCount != 9 {
			t.Errorf("expected ReferencedCount 9, got %d", summary.ReferencedCount)
		}
		if summary.SkippedCount != 1 {
			t.Errorf("expected SkippedCount 1, got %d", summary.SkippedCount)
		}
	})

	t.Run("derives orphan count", func(t *testing.T) {
		t.Parallel()
		if summary.OrphanCount != 2 {
			t.Errorf("expected OrphanCount 2, got %d", summary.OrphanCount)
		}
		if len(summary.Orphans) != 2 {
			t.Errorf("expected 2 orphans, got %d", len(summary.Orphans))
		}
	})

	t.Run("copies run metadata", func(t *testing.T) {
		t.Parallel()
		if summary.Root != "/src/client" {
			t.Errorf("expected root '/src/client', got %q", summary.Root)
		}
		if summary.Elapsed != 3*time.Second {
			t.Errorf("expected elapsed 3s, got %v", summary.Elapsed)
		}
		if summary.Error != "" {
			t.Errorf("expected empty error, got %q", summary.Error)
		}
	})
}
