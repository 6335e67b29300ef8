package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/orphanscan/internal/config"
	"github.com/nao1215/orphanscan/internal/database"
)

// Trend direction labels for the orphan-count delta between two runs.
const (
	trendWorsened  = "worsened"
	trendImproved  = "improved"
	trendUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares scan results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [directory]",
		Short: "Compare scan results with historical data",
		Long: `Compare displays differences between the current and previous scan results.

This command retrieves historical scan data from the database and shows:
- New orphans that appeared since the last scan
- Resolved orphans that are no longer reported
- The change in total orphan count

The comparison requires at least two recorded scans for the specified
directory. Use 'orphanscan scan' to perform scans and save results.

Examples:
  # Compare the latest two scans of a directory
  orphanscan compare ./src

  # List all scan history for a directory
  orphanscan compare --list ./src

  # Compare with a specific historical scan by ID
  orphanscan compare --with-scan-id 5 ./src

  # Compare with the first scan since a specific date
  orphanscan compare --since "2026-01-01" ./src

  # Output comparison in JSON format
  orphanscan compare --json ./src

  # List all scanned directories in the database
  orphanscan compare --list-roots`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the specified directory")
	cmd.Flags().BoolP("list-roots", "L", false,
		"List all scanned directories in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-roots flag first (requires database but no directory)
	listRoots, err := cmd.Flags().GetBool("list-roots")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database so validation
	// failures never hold a database lock
	var root string
	if !listRoots {
		if len(args) == 0 {
			return errors.New("directory is required (use --list-roots to see scanned directories)")
		}

		// History rows store the resolved absolute path
		root, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve directory: %w", err)
		}
	}

	// Open database in the XDG data directory; compare never creates it
	db, err := database.Open(config.XDGDataDir(), database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Best effort cleanup

	ctx := context.Background()

	if listRoots {
		return listScannedRoots(ctx, db, cmd.OutOrStdout())
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listScanHistory(ctx, db, root, cmd.OutOrStdout())
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	withScanID, err := cmd.Flags().GetInt64("with-scan-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	return runComparison(ctx, db, root, withScanID, sinceDate, jsonOutput, cmd.OutOrStdout())
}

// listScannedRoots lists all directories that have scan records in the database.
func listScannedRoots(ctx context.Context, db *database.ScanDB, out io.Writer) error {
	roots, err := db.ListScannedRoots(ctx)
	if err != nil {
		return fmt.Errorf("failed to list roots: %w", err)
	}

	if len(roots) == 0 {
		fmt.Fprintln(out, "No scanned directories found in the database.")
		fmt.Fprintln(out, "\nUse 'orphanscan scan <directory>' to scan a source tree.")
		return nil
	}

	fmt.Fprintf(out, "Scanned directories (%d):\n\n", len(roots))
	for _, root := range roots {
		fmt.Fprintf(out, "  %s\n", root)
	}
	fmt.Fprintln(out, "\nUse 'orphanscan compare --list <directory>' to see scan history for a directory.")

	return nil
}

// listScanHistory lists all scan records for a specific directory.
func listScanHistory(ctx context.Context, db *database.ScanDB, root string, out io.Writer) error {
	records, err := db.GetScanHistory(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintf(out, "No scan history found for %s\n", root)
		fmt.Fprintln(out, "\nUse 'orphanscan scan' to scan this directory.")
		return nil
	}

	fmt.Fprintf(out, "Scan history for %s (%d scans):\n\n", root, len(records))
	fmt.Fprintf(out, "  %-6s  %-20s  %-11s  %-11s  %s\n", "ID", "Date", "Components", "Referenced", "Orphans")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 62))

	for _, r := range records {
		fmt.Fprintf(out, "  %-6d  %-20s  %-11d  %-11d  %d\n",
			r.ID,
			r.ScannedAt.Local().Format("2006-01-02 15:04:05"),
			r.ComponentCount,
			r.ReferencedCount,
			r.OrphanCount,
		)
	}

	fmt.Fprintln(out, "\nUse 'orphanscan compare <directory>' to compare the latest two scans.")
	fmt.Fprintln(out, "Use 'orphanscan compare --with-scan-id <id> <directory>' to compare with a specific scan.")

	return nil
}

// runComparison performs the actual comparison between scan runs.
func runComparison(ctx context.Context, db *database.ScanDB, root string, withScanID int64, sinceDate string, jsonOutput bool, out io.Writer) error {
	records, err := db.GetScanHistory(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(records) == 0 {
		return fmt.Errorf("no scan history found for %s", root)
	}

	if len(records) < 2 && withScanID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(records))
	}

	// The latest run is always the current side of the comparison
	currentID := records[0].ID
	var previousID int64

	switch {
	case withScanID > 0:
		previous, err := db.GetScan(ctx, withScanID)
		if err != nil {
			return fmt.Errorf("failed to get scan with ID %d: %w", withScanID, err)
		}
		if previous.Root != root {
			return fmt.Errorf("scan ID %d belongs to %s, not %s", withScanID, previous.Root, root)
		}
		previousID = previous.ID
	case sinceDate != "":
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Records are newest first, so iterate backwards to find the
		// oldest run at or after the given date
		for i := len(records) - 1; i >= 0; i-- {
			if !records[i].ScannedAt.Before(parsedDate) {
				previousID = records[i].ID
				break
			}
		}
		if previousID == 0 {
			return fmt.Errorf("no scans found since %s", sinceDate)
		}
		if previousID == currentID {
			return fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison", sinceDate)
		}
	default:
		previousID = records[1].ID
	}

	diff, err := db.CompareScans(ctx, currentID, previousID)
	if err != nil {
		return fmt.Errorf("failed to compare scans: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(diff)
	}
	return outputDiffText(diff, out)
}

// outputDiffText outputs the comparison result in human-readable text format.
func outputDiffText(diff *database.ScanDiff, out io.Writer) error {
	fmt.Fprintf(out, "Scan Comparison: %s\n", diff.Current.Root)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nStatus: %s\n", formatTrend(trendDirection(diff)))

	fmt.Fprintf(out, "\nPrevious scan: %s (ID %d)\n",
		diff.Previous.ScannedAt.Local().Format("2006-01-02 15:04:05"), diff.Previous.ID)
	fmt.Fprintf(out, "Current scan:  %s (ID %d)\n",
		diff.Current.ScannedAt.Local().Format("2006-01-02 15:04:05"), diff.Current.ID)

	fmt.Fprintln(out, "\nSummary:")
	fmt.Fprintf(out, "  %-12s  %-10s  %-10s  %-10s\n", "Metric", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 48))
	fmt.Fprintf(out, "  %-12s  %-10d  %-10d  %-10s\n", "Components",
		diff.Previous.ComponentCount, diff.Current.ComponentCount,
		formatDelta(diff.Current.ComponentCount-diff.Previous.ComponentCount))
	fmt.Fprintf(out, "  %-12s  %-10d  %-10d  %-10s\n", "Referenced",
		diff.Previous.ReferencedCount, diff.Current.ReferencedCount,
		formatDelta(diff.Current.ReferencedCount-diff.Previous.ReferencedCount))
	fmt.Fprintf(out, "  %-12s  %-10d  %-10d  %-10s\n", "Orphans",
		diff.Previous.OrphanCount, diff.Current.OrphanCount,
		formatDelta(diff.Current.OrphanCount-diff.Previous.OrphanCount))

	if len(diff.NewOrphans) > 0 {
		fmt.Fprintf(out, "\nNew orphans (%d):\n", len(diff.NewOrphans))
		for _, path := range diff.NewOrphans {
			fmt.Fprintf(out, "  [+] %s\n", path)
		}
	}

	if len(diff.ResolvedOrphans) > 0 {
		fmt.Fprintf(out, "\nResolved orphans (%d):\n", len(diff.ResolvedOrphans))
		for _, path := range diff.ResolvedOrphans {
			fmt.Fprintf(out, "  [-] %s\n", path)
		}
	}

	if diff.UnchangedCount > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d orphans\n", diff.UnchangedCount)
	}

	return nil
}

// trendDirection classifies the orphan-count change between two runs.
func trendDirection(diff *database.ScanDiff) string {
	switch {
	case diff.Current.OrphanCount < diff.Previous.OrphanCount:
		return trendImproved
	case diff.Current.OrphanCount > diff.Previous.OrphanCount:
		return trendWorsened
	default:
		return trendUnchanged
	}
}

// formatTrend formats the trend direction for display.
func formatTrend(direction string) string {
	switch direction {
	case trendImproved:
		return "IMPROVED (fewer orphans)"
	case trendWorsened:
		return "WORSENED (more orphans)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
