package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nao1215/crmscan/internal/config"
	"github.com/nao1215/crmscan/internal/csvio"
	"github.com/nao1215/crmscan/internal/explain"
	crmlog "github.com/nao1215/crmscan/internal/log"
	"github.com/nao1215/crmscan/internal/model"
	"github.com/nao1215/crmscan/internal/pipeline"
	"github.com/nao1215/crmscan/internal/report"
)

// sampleSource is the pseudo input name for the embedded sample export.
const sampleSource = "sample"

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [csv-file...]",
		Short: "Check CRM CSV exports for data-quality issues",
		Long: `Scan runs the deterministic quality checks over one or more CSV files.

Each file is validated structurally, then every record is checked for:
- Missing values in required columns
- Malformed emails, phone numbers, dates, and monetary amounts
- Suspiciously short text values
- Exact and near duplicate records on the identifying columns

Examples:
  # Analyze a single export
  crmscan scan leads.csv

  # Analyze the embedded sample export
  crmscan scan --sample

  # Analyze several exports concurrently
  crmscan scan leads.csv contacts.csv deals.csv -b 4

  # Use a named profile from the .crmscan config file
  crmscan scan -p salesforce leads.csv

  # Require specific columns and tighten the near-duplicate threshold
  crmscan scan --required Email,Company_Name --threshold 0.9 leads.csv

  # Output JSON and ask for an AI explanation of the findings
  crmscan scan --json --explain leads.csv

Configuration file (.crmscan) example:
  defaults:
    requiredColumns: [Email, Company_Name]
    threshold: 0.85
  profiles:
    salesforce:
      requiredColumns: [Email, Account Name, Amount]
      columnTypes:
        Amount: monetary
        Close Date: date
      identifyingColumns: [Email, Account Name]`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Detection behavior flags
	cmd.Flags().Float64("threshold", 0,
		"Near-duplicate similarity threshold in (0, 1] (default from config)")
	cmd.Flags().Int("max-rows", 0,
		"Maximum number of data rows accepted per table (default from config)")
	cmd.Flags().StringSlice("required", nil,
		"Comma-separated required columns (empty cells there are issues)")
	cmd.Flags().StringSlice("identify", nil,
		"Comma-separated identifying columns for duplicate detection")

	// Input selection flags
	cmd.Flags().Bool("sample", false,
		"Analyze the embedded sample CRM export instead of a file")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent analyses when scanning multiple files")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .crmscan in current or home directory)")
	cmd.Flags().StringP("profile", "p", "",
		"Named profile from the configuration file to apply")

	// Explanation flags
	cmd.Flags().BoolP("explain", "e", false,
		"Ask an external language model to explain the detected issues")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags and the optional config file
	cfg, err := buildScanConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with cell-value masking
	logger := crmlog.NewSecureLogger(os.Stderr, cfg.Verbose)
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

// applyConfigFile resolves the --config and --profile flags, loads the
// configuration file when one is found, and overlays the file defaults and
// the named profile onto cfg.
//
// If the user explicitly specified a config file path, a missing file is an
// error; otherwise the search silently falls through to built-in defaults.
func applyConfigFile(cmd *cobra.Command, cfg *config.Config) error {
	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	cfg.Profile, err = cmd.Flags().GetString("profile")
	if err != nil {
		return err
	}

	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Profiles, err = config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// A named profile must exist; a typo must not silently analyze with
	// defaults.
	if cfg.Profile != "" {
		if cfg.Profiles == nil {
			return fmt.Errorf("profile %q requested but no configuration file found", cfg.Profile)
		}
		if _, ok := cfg.Profiles.Profiles[cfg.Profile]; !ok {
			return fmt.Errorf("unknown profile %q in %s", cfg.Profile, configPath)
		}
	}

	// Apply file defaults and the named profile before flag overrides
	if cfg.Profiles != nil {
		cfg.ApplyProfile(cfg.Profiles.GetProfile(cfg.Profile))
	}

	return nil
}

// buildScanConfig creates a Config from cobra command flags.
// Profile settings from the config file are applied first; flags the user
// set explicitly win over them.
func buildScanConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	if err = applyConfigFile(cmd, cfg); err != nil {
		return nil, err
	}

	// Flags the user set explicitly override profile settings
	if cmd.Flags().Changed("threshold") {
		cfg.Threshold, err = cmd.Flags().GetFloat64("threshold")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("max-rows") {
		cfg.MaxRows, err = cmd.Flags().GetInt("max-rows")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("required") {
		cfg.RequiredColumns, err = cmd.Flags().GetStringSlice("required")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("identify") {
		cfg.IdentifyingColumns, err = cmd.Flags().GetStringSlice("identify")
		if err != nil {
			return nil, err
		}
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.Explain, err = cmd.Flags().GetBool("explain")
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

	// Get positional arguments (CSV files)
	cfg.Inputs = args

	// The embedded sample joins the input list under its pseudo name
	sample, err := cmd.Flags().GetBool("sample")
	if err != nil {
		return nil, err
	}
	if sample {
		cfg.Inputs = append(cfg.Inputs, sampleSource)
	}

	return cfg, nil
}

// runScan executes the analysis over all configured inputs.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"inputs", len(cfg.Inputs),
		"batchSize", cfg.BatchSize,
		"explain", cfg.Explain,
	)

	generator := buildGenerator(ctx, cfg, logger)

	// The embedded sample is seeded from memory, not read from disk, so
	// it always runs through the sequential path.
	var files []string
	var withSample bool
	for _, input := range cfg.Inputs {
		if input == sampleSource {
			withSample = true
			continue
		}
		files = append(files, input)
	}

	var firstErr error
	if withSample {
		header, rows := sampleHeaderAndRows()
		a := pipeline.NewAnalysisFromData(sampleSource, header, rows)
		if err := analyzeOne(ctx, cfg, logger, generator, a); err != nil {
			firstErr = err
		}
	}

	// Use batch processor for parallel analysis if multiple files
	if len(files) > 1 && cfg.BatchSize > 1 {
		if err := runBatchScan(ctx, cfg, files, logger, generator); err != nil && firstErr == nil {
			firstErr = err
		}
		return firstErr
	}

	// Single file or sequential analysis
	if err := runSequentialScan(ctx, cfg, files, logger, generator); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// sampleHeaderAndRows parses the embedded sample export.
// The sample is compiled into the binary, so a parse failure is a build
// defect; it surfaces as an empty table rejected by validation.
func sampleHeaderAndRows() (header []string, rows [][]string) {
	header, rows, err := csvio.ReadAll(csvio.SampleReader())
	if err != nil {
		return nil, nil
	}
	return header, rows
}

// buildGenerator creates the explanation generator when --explain is set.
// A missing API key or unknown provider disables the explanation instead
// of failing the run: the deterministic report never depends on it.
func buildGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) pipeline.ExplanationGenerator {
	if !cfg.Explain {
		return nil
	}

	generator, err := explain.New(ctx, cfg.ExplainProvider, cfg.ExplainModel, "")
	if err != nil {
		logger.Warn("explanation disabled", "error", err)
		fmt.Fprintf(os.Stderr, "AI explanation unavailable: %v\n", err)
		return nil
	}

	// Show a spinner during the provider call when stderr is a terminal
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return &spinnerGenerator{generator: generator}
	}
	return generator
}

// spinnerGenerator wraps an ExplanationGenerator with a terminal spinner
// so interactive users can tell the tool is waiting on the provider, not
// hanging. Detection is already finished when the spinner appears.
type spinnerGenerator struct {
	generator pipeline.ExplanationGenerator
}

// Generate runs the wrapped generator with a spinner on stderr.
func (g *spinnerGenerator) Generate(ctx context.Context, report *model.QualityReport) (string, error) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " generating explanation..."
	s.Start()
	defer s.Stop()

	return g.generator.Generate(ctx, report)
}

// newPipeline creates a detection pipeline for the configuration.
// The explanation step is appended only when a generator is available.
func newPipeline(cfg *config.Config, logger *slog.Logger, generator pipeline.ExplanationGenerator) *pipeline.Pipeline {
	p := pipeline.DefaultPipeline(
		[]pipeline.Option{pipeline.WithLogger(logger)},
		pipeline.OptionsFromConfig(cfg)...,
	)

	if generator != nil {
		p.AddStep(pipeline.NewExplainStep(generator,
			pipeline.WithExplainTimeout(cfg.ExplainTimeout),
			pipeline.WithExplainLogger(logger),
		))
	}

	return p
}

// analyzeOne runs the pipeline over a single prepared analysis and
// outputs its report.
func analyzeOne(ctx context.Context, cfg *config.Config, logger *slog.Logger, generator pipeline.ExplanationGenerator, a *pipeline.Analysis) error {
	p := newPipeline(cfg, logger, generator)

	if err := p.Execute(ctx, a); err != nil {
		logger.Error("analysis failed", "source", a.Source, "error", err)
		fmt.Fprintf(os.Stderr, "Analysis error for %s: %v\n", a.Source, err)
		return err
	}

	if err := outputReport(cfg, a); err != nil {
		logger.Error("report output failed", "source", a.Source, "error", err)
		return err
	}

	return nil
}

// runSequentialScan analyzes files one at a time.
func runSequentialScan(ctx context.Context, cfg *config.Config, files []string, logger *slog.Logger, generator pipeline.ExplanationGenerator) error {
	var firstErr error
	for _, file := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		a := pipeline.NewAnalysis(file)
		if err := analyzeOne(ctx, cfg, logger, generator, a); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// runBatchScan analyzes multiple files concurrently using BatchProcessor.
func runBatchScan(ctx context.Context, cfg *config.Config, files []string, logger *slog.Logger, generator pipeline.ExplanationGenerator) error {
	fmt.Fprintf(os.Stderr, "Analyzing %d files (concurrency: %d)...\n\n",
		len(files), cfg.BatchSize)

	startTime := time.Now()

	// Create batch processor with pipeline factory
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return newPipeline(cfg, logger, generator)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	var firstErr error
	err := bp.ProcessBatchWithCallback(ctx, files, func(a *pipeline.Analysis, index int) {
		mu.Lock()
		defer mu.Unlock()

		if a.Err != nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] Analysis failed: %s: %v\n", index+1, len(files), a.Source, a.Err)
			if firstErr == nil {
				firstErr = a.Err
			}
			return
		}

		fmt.Fprintf(os.Stderr, "[%d/%d] Analysis completed: %s (%s)\n", index+1, len(files), a.Source, severityLine(a.Report))

		if err := outputReport(cfg, a); err != nil {
			logger.Error("report output failed", "source", a.Source, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	})

	elapsed := time.Since(startTime)
	fmt.Fprintf(os.Stderr, "\nBatch analysis completed in %s\n", elapsed.Round(time.Millisecond))

	if err != nil {
		return err
	}
	return firstErr
}

// outputReport outputs the quality report in the requested format.
func outputReport(cfg *config.Config, a *pipeline.Analysis) error {
	envelope := report.NewEnvelope(a.Report, getVersion(), a.Source)
	envelope.Explanation = a.Explanation

	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with owner-only permissions.
		// Reports quote offending cell values, which are customer data.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
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
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.WriteEnvelope(envelope)
	return err
}

// severityLine formats a one-line severity count summary for stderr
// progress output.
func severityLine(r *model.QualityReport) string {
	if r == nil {
		return "no report"
	}
	parts := []string{
		fmt.Sprintf("high=%d", r.CountBySeverity(model.SeverityHigh)),
		fmt.Sprintf("medium=%d", r.CountBySeverity(model.SeverityMedium)),
		fmt.Sprintf("low=%d", r.CountBySeverity(model.SeverityLow)),
	}
	return strings.Join(parts, " ")
}
