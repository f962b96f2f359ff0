package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/a11yscan/contrastscan/internal/config"
	"github.com/a11yscan/contrastscan/internal/database"
	"github.com/a11yscan/contrastscan/internal/log"
	"github.com/a11yscan/contrastscan/internal/model"
	"github.com/a11yscan/contrastscan/internal/pipeline"
	"github.com/a11yscan/contrastscan/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [document.json...]",
		Short: "Audit document exports for WCAG contrast failures",
		Long: `Scan audits design document exports for WCAG 2.1 contrast failures.

It walks the document's scene graph, resolves the effective background
behind each text and UI element, and checks the contrast ratio against
the WCAG AA thresholds (4.5:1 for normal text, 3:1 for large text and
UI components). Failing elements are grouped by color pair so one fix
covers every affected node.

Examples:
  # Audit a single document export
  contrastscan scan landing-page.json

  # Audit several documents concurrently
  contrastscan scan page1.json page2.json page3.json

  # Restrict the audit to two subtrees
  contrastscan scan --selection 1:2,1:14 landing-page.json

  # Audit against a dark page background
  contrastscan scan --page-background "#1E1E1E" landing-page.json

  # Output JSON report to a file
  contrastscan scan --json -o reports/landing.json landing-page.json

  # Use a custom configuration file
  contrastscan scan -c myconfig.yaml landing-page.json

Configuration file (.contrastscan) example:
  defaults:
    maxVisits: 10000
  documents:
    landing-page.json:
      pageBackground: "#1E1E1E"
      selection:
        - "1:2"`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Audit behavior flags
	cmd.Flags().StringSliceP("selection", "s", nil,
		"Restrict the audit to these node identifiers (comma-separated)")
	cmd.Flags().StringP("page-background", "p", "",
		"Fallback page background hex color (e.g., #1E1E1E)")
	cmd.Flags().Int("max-visits", config.DefaultMaxVisits,
		"Maximum number of nodes visited per scan")
	cmd.Flags().Int("max-candidates", config.DefaultMaxCandidates,
		"Maximum number of elements audited per scan")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent document scans")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .contrastscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not record this scan in the history database")
	cmd.Flags().String("db-dir", "",
		"Directory for the history database (default: XDG data directory)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
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
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Selection, err = cmd.Flags().GetStringSlice("selection")
	if err != nil {
		return nil, err
	}

	cfg.PageBackground, err = cmd.Flags().GetString("page-background")
	if err != nil {
		return nil, err
	}

	cfg.MaxVisits, err = cmd.Flags().GetInt("max-visits")
	if err != nil {
		return nil, err
	}

	cfg.MaxCandidates, err = cmd.Flags().GetInt("max-candidates")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-document settings from the config file.
	// If the user explicitly specified a config file path, error if not
	// found. If no path was specified, silently run with defaults.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.File, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.OutputPath, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.NoHistory, err = cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}

	cfg.DatabaseDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the document export files.
	cfg.DocumentPaths = args

	return cfg, nil
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"documents", cfg.DocumentPaths,
		"batchSize", cfg.BatchSize,
		"saveHistory", !cfg.NoHistory,
	)

	// Open the history database unless the operator opted out.
	var db *database.HistoryDB
	if !cfg.NoHistory {
		var err error
		db, err = database.Open(cfg.DataDir(), database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		logger.Info("history database opened", "dir", cfg.DataDir())
	}

	// Use batch processor for parallel scanning if multiple documents.
	if len(cfg.DocumentPaths) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, db, logger)
	}

	return runSequentialScan(ctx, cfg, db, logger)
}

// runSequentialScan scans documents one at a time.
func runSequentialScan(ctx context.Context, cfg *config.Config, db *database.HistoryDB, logger *slog.Logger) error {
	for _, path := range cfg.DocumentPaths {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p := createPipelineForDocument(cfg, db, path, logger)
		auditReport := model.NewAuditReport(path)

		fmt.Fprintf(os.Stderr, "Scanning %s...\n", path)
		startTime := time.Now()

		if err := p.Execute(ctx, auditReport); err != nil {
			logger.Error("scan failed", "document", path, "error", err)
			fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n", path, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Fprintf(os.Stderr, "Scan completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, auditReport); err != nil {
			logger.Error("report failed", "document", path, "error", err)
		}
	}

	return nil
}

// runBatchScan scans multiple documents concurrently using BatchProcessor.
func runBatchScan(ctx context.Context, cfg *config.Config, db *database.HistoryDB, logger *slog.Logger) error {
	fmt.Fprintf(os.Stderr, "Starting batch scan of %d documents (concurrency: %d)...\n\n",
		len(cfg.DocumentPaths), cfg.BatchSize)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func(documentPath string) *pipeline.Pipeline {
			return createPipelineForDocument(cfg, db, documentPath, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output.
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.DocumentPaths, func(auditReport *model.AuditReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(os.Stderr, "[%d/%d] Scan completed: %s\n", index+1, len(cfg.DocumentPaths), auditReport.DocumentPath)

		if err := outputReport(cfg, auditReport); err != nil {
			logger.Error("report failed", "document", auditReport.DocumentPath, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Fprintf(os.Stderr, "\nBatch scan completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// createPipelineForDocument creates a pipeline with the merged
// per-document settings.
func createPipelineForDocument(cfg *config.Config, db *database.HistoryDB, documentPath string, logger *slog.Logger) *pipeline.Pipeline {
	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)

	settings := cfg.DocumentSettings(documentPath)
	p.AddStep(pipeline.NewAuditStep(settings, pipeline.WithAuditLogger(logger)))

	if db != nil {
		p.AddStep(pipeline.NewPersistStep(db, pipeline.WithPersistLogger(logger)))
	}

	return p
}

// outputReport outputs the audit report in the requested format.
func outputReport(cfg *config.Config, auditReport *model.AuditReport) error {
	// Determine output destination
	var output *os.File
	if cfg.OutputPath != "" {
		dir := filepath.Dir(cfg.OutputPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	if _, err := writer.Write(auditReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
