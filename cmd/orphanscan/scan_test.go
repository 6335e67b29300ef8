package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/orphanscan/internal/config"
	"github.com/nao1215/orphanscan/internal/database"
	"github.com/nao1215/orphanscan/internal/model"
)

// newTestLogger returns a quiet logger for command tests.
func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// writeComponent writes a component file under root, creating parent
// directories as needed.
func writeComponent(t *testing.T, root, relPath, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", relPath, err)
	}
}

// TestNewScanCmd tests the scan command creation.
func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "scan [directory...]" {
			t.Errorf("expected use 'scan [directory...]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has ext flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("ext")
		if flag == nil {
			t.Fatal("expected ext flag")
		}
		if flag.Shorthand != "e" {
			t.Errorf("expected shorthand 'e', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultExtension {
			t.Errorf("expected default %q, got %q", config.DefaultExtension, flag.DefValue)
		}
	})

	t.Run("has test-suffix flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("test-suffix")
		if flag == nil {
			t.Fatal("expected test-suffix flag")
		}
		if flag.Shorthand != "t" {
			t.Errorf("expected shorthand 't', got %q", flag.Shorthand)
		}
	})

	t.Run("has entry-point flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("entry-point")
		if flag == nil {
			t.Fatal("expected entry-point flag")
		}
		if flag.Shorthand != "E" {
			t.Errorf("expected shorthand 'E', got %q", flag.Shorthand)
		}
	})

	t.Run("has workers flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("workers")
		if flag == nil {
			t.Fatal("expected workers flag")
		}
		if flag.Shorthand != "w" {
			t.Errorf("expected shorthand 'w', got %q", flag.Shorthand)
		}
	})

	t.Run("has batch flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
	})

	t.Run("has no-save flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("no-save")
		if flag == nil {
			t.Fatal("expected no-save flag")
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewScanCmd()
		if getVerboseFlag(cmd) {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		_ = root.PersistentFlags().Set("verbose", "true")

		scanCmd, _, err := root.Find([]string{"scan"})
		if err != nil {
			t.Fatalf("failed to find scan command: %v", err)
		}

		if !getVerboseFlag(scanCmd) {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewScanCmd()
		dir := t.TempDir()
		cfg, err := buildConfig(cmd, []string{dir})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if len(cfg.Roots) != 1 {
			t.Fatalf("expected 1 root, got %d", len(cfg.Roots))
		}
		if !filepath.IsAbs(cfg.Roots[0]) {
			t.Errorf("expected absolute root, got %q", cfg.Roots[0])
		}
		if cfg.Extension != config.DefaultExtension {
			t.Errorf("expected extension %q, got %q", config.DefaultExtension, cfg.Extension)
		}
		if cfg.Workers != config.DefaultWorkers {
			t.Errorf("expected workers %d, got %d", config.DefaultWorkers, cfg.Workers)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true by default")
		}
	})

	t.Run("fails validation without arguments", func(t *testing.T) {
		cmd := NewScanCmd()
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Roots) != 0 {
			t.Errorf("expected no roots, got %v", cfg.Roots)
		}
		if !errors.Is(cfg.Validate(), config.ErrNoRoot) {
			t.Errorf("expected ErrNoRoot from Validate(), got %v", cfg.Validate())
		}
	})

	t.Run("builds config with custom extension", func(t *testing.T) {
		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"--ext", ".jsx", "--test-suffix", ".test.jsx"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		cfg, err := buildConfig(cmd, []string{t.TempDir()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Extension != ".jsx" {
			t.Errorf("expected extension '.jsx', got %q", cfg.Extension)
		}
		if cfg.TestSuffix != ".test.jsx" {
			t.Errorf("expected test suffix '.test.jsx', got %q", cfg.TestSuffix)
		}
	})

	t.Run("builds config with custom entry points", func(t *testing.T) {
		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"--entry-point", "setup.tsx", "--entry-point", "boot.tsx"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		cfg, err := buildConfig(cmd, []string{t.TempDir()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.EntryPoints) != 2 || cfg.EntryPoints[0] != "setup.tsx" || cfg.EntryPoints[1] != "boot.tsx" {
			t.Errorf("expected entry points [setup.tsx boot.tsx], got %v", cfg.EntryPoints)
		}
	})

	t.Run("builds config with no-save flag", func(t *testing.T) {
		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"--no-save"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		cfg, err := buildConfig(cmd, []string{t.TempDir()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false with --no-save")
		}
	})

	t.Run("loads project config from scan root", func(t *testing.T) {
		root := t.TempDir()
		content := []byte("extension: .jsx\ntestSuffix: .spec.jsx\nworkers: 3\n")
		if err := os.WriteFile(filepath.Join(root, ".orphanscan"), content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewScanCmd()
		cfg, err := buildConfig(cmd, []string{root})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Extension != ".jsx" {
			t.Errorf("expected extension '.jsx' from file, got %q", cfg.Extension)
		}
		if cfg.Workers != 3 {
			t.Errorf("expected workers 3 from file, got %d", cfg.Workers)
		}
	})

	t.Run("flags override project config", func(t *testing.T) {
		root := t.TempDir()
		content := []byte("workers: 3\n")
		if err := os.WriteFile(filepath.Join(root, ".orphanscan"), content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"--workers", "16"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		cfg, err := buildConfig(cmd, []string{root})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Workers != 16 {
			t.Errorf("expected flag to override file workers, got %d", cfg.Workers)
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		if _, err := buildConfig(cmd, []string{t.TempDir()}); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("returns error for invalid config file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "invalid.yaml")
		if err := os.WriteFile(configPath, []byte("{invalid yaml"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"--config", configPath}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		if _, err := buildConfig(cmd, []string{t.TempDir()}); err == nil {
			t.Error("expected error for invalid config file")
		}
	})
}

// TestOpenReportOutput tests report destination resolution.
func TestOpenReportOutput(t *testing.T) {
	t.Parallel()

	t.Run("returns stdout when no file configured", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{}
		out, closeOut, err := openReportOutput(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer closeOut()

		if out != os.Stdout {
			t.Error("expected stdout writer")
		}
	})

	t.Run("creates nested output directories", func(t *testing.T) {
		t.Parallel()
		outputPath := filepath.Join(t.TempDir(), "sub", "nested", "report.txt")
		cfg := &config.Config{ReportFile: outputPath}

		out, closeOut, err := openReportOutput(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := out.Write([]byte("hello\n")); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		closeOut()

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read output file: %v", err)
		}
		if string(content) != "hello\n" {
			t.Errorf("unexpected content %q", content)
		}
	})
}

// TestOutputReport tests the report output formats.
func TestOutputReport(t *testing.T) {
	t.Parallel()

	newReport := func() *model.ScanReport {
		report := model.NewScanReport("/src/app")
		report.ComponentCount = 3
		report.ReferencedCount = 2
		report.Orphans = []string{"components/Ghost.tsx"}
		return report
	}

	t.Run("outputs simple format by default", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		cfg := &config.Config{}

		if err := outputReport(cfg, &buf, newReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Potential orphaned components under /src/app:") {
			t.Errorf("expected header in output, got %q", output)
		}
		if !strings.Contains(output, "- components/Ghost.tsx") {
			t.Errorf("expected orphan line in output, got %q", output)
		}
	})

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		cfg := &config.Config{JSONReport: true}

		if err := outputReport(cfg, &buf, newReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.ScanReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("expected valid JSON, got error: %v", err)
		}
		if decoded.Root != "/src/app" {
			t.Errorf("expected root '/src/app', got %q", decoded.Root)
		}
	})

	t.Run("outputs Markdown", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		cfg := &config.Config{MarkdownReport: true}

		if err := outputReport(cfg, &buf, newReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "# Orphaned Component Report") {
			t.Errorf("expected Markdown header, got %q", buf.String())
		}
	})

	t.Run("refreshes the summary", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		report := newReport()
		report.Summary = nil

		if err := outputReport(&config.Config{}, &buf, report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Summary == nil {
			t.Error("expected summary to be rebuilt")
		}
	})
}

// TestRunScanSingleRoot tests a full scan run over a real directory tree.
func TestRunScanSingleRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeComponent(t, root, "index.tsx", `import App from "./App";`)
	writeComponent(t, root, "App.tsx", `import { Button } from "./components/Button";`)
	writeComponent(t, root, "components/Button.tsx", `export const Button = () => null;`)
	writeComponent(t, root, "components/Ghost.tsx", `export const Ghost = () => null;`)
	writeComponent(t, root, "components/Button.test.tsx", `import { Ghost } from "./Ghost";`)

	outputPath := filepath.Join(t.TempDir(), "report.txt")
	cfg := config.NewConfig()
	cfg.Roots = []string{root}
	cfg.SaveToDB = false
	cfg.ReportFile = outputPath

	if err := runScan(context.Background(), cfg, newTestLogger()); err != nil {
		t.Fatalf("runScan() error = %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	output := string(content)

	if !strings.Contains(output, "Potential orphaned components under "+root+":") {
		t.Errorf("expected report header for %s, got %q", root, output)
	}
	// Ghost is referenced only by a test file, which is excluded from the
	// corpus, so it must appear as an orphan.
	if !strings.Contains(output, "- components/Ghost.tsx") {
		t.Errorf("expected Ghost.tsx to be reported, got %q", output)
	}
	if strings.Contains(output, "- components/Button.tsx") {
		t.Errorf("expected Button.tsx to not be reported, got %q", output)
	}
	if strings.Contains(output, "- App.tsx") {
		t.Errorf("expected entry point App.tsx to not be reported, got %q", output)
	}
}

// TestRunScanBatch tests concurrent scanning of multiple roots.
func TestRunScanBatch(t *testing.T) {
	t.Parallel()

	rootA := t.TempDir()
	writeComponent(t, rootA, "OrphanA.tsx", `export const OrphanA = 1;`)

	rootB := t.TempDir()
	writeComponent(t, rootB, "OrphanB.tsx", `export const OrphanB = 1;`)

	outputPath := filepath.Join(t.TempDir(), "report.txt")
	cfg := config.NewConfig()
	cfg.Roots = []string{rootA, rootB}
	cfg.BatchSize = 2
	cfg.SaveToDB = false
	cfg.ReportFile = outputPath

	if err := runScan(context.Background(), cfg, newTestLogger()); err != nil {
		t.Fatalf("runScan() error = %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	output := string(content)

	idxA := strings.Index(output, "- OrphanA.tsx")
	idxB := strings.Index(output, "- OrphanB.tsx")
	if idxA < 0 || idxB < 0 {
		t.Fatalf("expected both orphans in output, got %q", output)
	}
	// Reports appear in argument order even under concurrent scanning.
	if idxA > idxB {
		t.Error("expected rootA report before rootB report")
	}
}

// TestRunScanPersistsHistory tests that runs are recorded in the database.
func TestRunScanPersistsHistory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeComponent(t, root, "Lonely.tsx", `export const Lonely = 1;`)

	dbDir := t.TempDir()
	outputPath := filepath.Join(t.TempDir(), "report.txt")
	cfg := config.NewConfig()
	cfg.Roots = []string{root}
	cfg.SaveToDB = true
	cfg.DBDir = dbDir
	cfg.ReportFile = outputPath

	if err := runScan(context.Background(), cfg, newTestLogger()); err != nil {
		t.Fatalf("runScan() error = %v", err)
	}

	db, err := database.Open(dbDir, database.Options{EnableWAL: true})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	history, err := db.GetScanHistory(context.Background(), root)
	if err != nil {
		t.Fatalf("GetScanHistory() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(history))
	}
	if history[0].OrphanCount != 1 {
		t.Errorf("expected 1 orphan recorded, got %d", history[0].OrphanCount)
	}
}

// TestRunScanNonexistentRoot tests that a missing directory fails the run.
func TestRunScanNonexistentRoot(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Roots = []string{filepath.Join(t.TempDir(), "does-not-exist")}
	cfg.SaveToDB = false

	if err := runScan(context.Background(), cfg, newTestLogger()); err == nil {
		t.Error("expected error for nonexistent root")
	}
}

// TestRunScanCancelledContext tests that a cancelled context stops the run.
func TestRunScanCancelledContext(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeComponent(t, root, "A.tsx", `export const A = 1;`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.NewConfig()
	cfg.Roots = []string{root}
	cfg.SaveToDB = false

	if err := runScan(ctx, cfg, newTestLogger()); err == nil {
		t.Error("expected error for cancelled context")
	}
}

// TestRunScanCmdConflictingFormats tests scan with both --json and --markdown.
func TestRunScanCmdConflictingFormats(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"scan", "--json", "--markdown", t.TempDir()})

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for conflicting report formats")
	}
	if !strings.Contains(err.Error(), "conflicting report formats") {
		t.Errorf("expected 'conflicting report formats' error, got: %v", err)
	}
}
