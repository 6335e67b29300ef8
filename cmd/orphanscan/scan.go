package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/orphanscan/internal/config"
	"github.com/nao1215/orphanscan/internal/database"
	"github.com/nao1215/orphanscan/internal/log"
	"github.com/nao1215/orphanscan/internal/model"
	"github.com/nao1215/orphanscan/internal/pipeline"
	"github.com/nao1215/orphanscan/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [directory...]",
		Short: "Scan a source tree for orphaned component files",
		Long: `Scan indexes component files under each directory, checks which
component names appear inside other component files, and reports
the files with no incoming reference.

Each directory is scanned in isolation: references never cross roots.

Examples:
  # Scan the current directory
  orphanscan scan .

  # Scan a specific source tree
  orphanscan scan ./src

  # Scan multiple trees concurrently
  orphanscan scan ./web/src ./admin/src ./mobile/src

  # Scan .jsx components instead of .tsx
  orphanscan scan --ext .jsx --test-suffix .test.jsx ./src

  # Treat additional files as entry points
  orphanscan scan --entry-point setupTests.tsx --entry-point vite.config.tsx ./src

  # Output JSON report to a file
  orphanscan scan --json -o report.json ./src

Configuration file (.orphanscan) example:
  extension: .tsx
  testSuffix: .test.tsx
  entryPoints:
    - index.tsx
    - App.tsx
    - router/AppRouter.tsx
  workers: 8`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// File selection flags
	cmd.Flags().StringP("ext", "e", config.DefaultExtension,
		"Component file extension, including the leading dot")
	cmd.Flags().StringP("test-suffix", "t", config.DefaultTestSuffix,
		"Test file suffix excluded from indexing")
	cmd.Flags().StringArrayP("entry-point", "E", nil,
		"Root-relative path excluded from the orphan report (repeatable; replaces the defaults)")

	// Concurrency flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent workers during the reference scan")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of directories scanned concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .orphanscan in the scan root, current, or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not record this run in the history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags and the optional project file
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
// Precedence is defaults < configuration file < flags: the file is
// applied first and flags override only when explicitly set.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Scan roots come from positional arguments. Resolve to absolute
	// paths so reports and history rows are stable regardless of where
	// the command ran. Validate rejects an empty root list.
	cfg.Roots = make([]string, 0, len(args))
	for _, root := range args {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root %q: %w", root, err)
		}
		cfg.Roots = append(cfg.Roots, abs)
	}

	// Load project settings from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file is found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath, cfg.Roots)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Flags override file values only when the user set them.
	if cmd.Flags().Changed("ext") {
		cfg.Extension, err = cmd.Flags().GetString("ext")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("test-suffix") {
		cfg.TestSuffix, err = cmd.Flags().GetString("test-suffix")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("entry-point") {
		cfg.EntryPoints, err = cmd.Flags().GetStringArray("entry-point")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers, err = cmd.Flags().GetInt("workers")
		if err != nil {
			return nil, err
		}
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// runScan executes the scan over all configured roots.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"roots", cfg.Roots,
		"extension", cfg.Extension,
		"workers", cfg.Workers,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.ScanDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close() //nolint:errcheck // Best effort cleanup
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Resolve the report destination once so multiple roots share one
	// output file instead of overwriting each other.
	out, closeOut, err := openReportOutput(cfg)
	if err != nil {
		return err
	}
	defer closeOut()

	if len(cfg.Roots) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, db, out, logger)
	}

	return runSequentialScan(ctx, cfg, db, out, logger)
}

// runSequentialScan scans roots one at a time.
func runSequentialScan(ctx context.Context, cfg *config.Config, db *database.ScanDB, out io.Writer, logger *slog.Logger) error {
	var errs []error
	for _, root := range cfg.Roots {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p := newPipelineForRoot(cfg, db, logger)
		scanReport := model.NewScanReport(root)

		startTime := time.Now()
		err := p.Execute(ctx, scanReport)
		scanReport.Elapsed = time.Since(startTime)

		if err != nil {
			logger.Error("scan failed", "root", root, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", root, err))
			continue
		}

		if err := outputReport(cfg, out, scanReport); err != nil {
			logger.Error("report failed", "root", root, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", root, err))
		}
	}

	return errors.Join(errs...)
}

// runBatchScan scans multiple roots concurrently using BatchProcessor.
// Reports are written in argument order after all roots finish so
// concurrent scans never interleave output.
func runBatchScan(ctx context.Context, cfg *config.Config, db *database.ScanDB, out io.Writer, logger *slog.Logger) error {
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return newPipelineForRoot(cfg, db, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, err := bp.ProcessBatch(ctx, cfg.Roots)
	if err != nil {
		return err
	}

	var errs []error
	for _, scanReport := range reports {
		if scanReport == nil {
			continue
		}
		if scanReport.ErrorMessage != "" && scanReport.Corpus == nil {
			// The root never got indexed; there is nothing to report.
			errs = append(errs, fmt.Errorf("%s: %s", scanReport.Root, scanReport.ErrorMessage))
			continue
		}
		if err := outputReport(cfg, out, scanReport); err != nil {
			logger.Error("report failed", "root", scanReport.Root, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", scanReport.Root, err))
		}
	}

	return errors.Join(errs...)
}

// newPipelineForRoot creates a fresh pipeline for one root.
// Each root gets its own pipeline so corpus state never leaks between
// scans. The persist step is appended only when history saving is on.
func newPipelineForRoot(cfg *config.Config, db *database.ScanDB, logger *slog.Logger) *pipeline.Pipeline {
	p := pipeline.New(
		pipeline.WithLogger(logger),
	)
	p.AddSteps(
		pipeline.NewIndexStep(cfg, logger),
		pipeline.NewReferenceScanStep(cfg.Workers, logger),
		pipeline.NewClassifyStep(cfg.EntryPoints),
	)
	if db != nil {
		p.AddStep(pipeline.NewPersistStep(db, logger))
	}
	return p
}

// openReportOutput resolves the report destination.
// Returns stdout when no output file is configured; otherwise creates
// the file (and its parent directories) and returns a close function.
func openReportOutput(cfg *config.Config) (io.Writer, func(), error) {
	if cfg.ReportFile == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil //nolint:errcheck // Best effort close
}

// outputReport writes the scan report in the requested format.
func outputReport(cfg *config.Config, out io.Writer, scanReport *model.ScanReport) error {
	// Rebuild the summary so it reflects the final elapsed time.
	scanReport.Summary = model.NewSummary(scanReport)

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(out)
	default:
		writer = report.NewSimpleWriter(out, report.WithStats(true))
	}

	_, err := writer.Write(scanReport)
	return err
}
