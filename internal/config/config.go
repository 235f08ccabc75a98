package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/crmscan/internal/dedupe"
	"github.com/nao1215/crmscan/internal/detect"
	"github.com/nao1215/crmscan/internal/model"
	"github.com/nao1215/crmscan/internal/schema"
)

// Default configuration values.
// Analysis limits (row cap, similarity threshold, text length) live in the
// packages that enforce them; NewConfig mirrors those so flag help, config
// files, and detector behavior never disagree. The constants here are the
// ones only the CLI layer cares about.
const (
	// DefaultBatchSize of 10 concurrent analyses balances throughput with
	// resource usage. Analysis is CPU and memory bound, so higher values
	// mostly raise peak memory when the inputs are large tables.
	DefaultBatchSize = 10

	// DefaultExplainProvider selects Groq because its free tier makes the
	// explanation feature usable without a paid API key.
	DefaultExplainProvider = "groq"

	// DefaultExplainTimeout bounds a single explanation request. The report
	// is already complete when the request starts, so a slow provider can
	// delay output by at most this long before the tool gives up on prose.
	DefaultExplainTimeout = 30 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "crmscan"
)

// Config holds all configuration options for crmscan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., DetectConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Inputs is the list of CSV files to analyze.
	// Must contain at least one path, or "-" for standard input.
	Inputs []string

	// RequiredColumns lists columns every record must fill. An empty cell
	// in one of these columns is reported as a missing value; empty cells
	// elsewhere are skipped silently.
	RequiredColumns []string

	// ColumnTypes maps column names to type names ("email", "phone",
	// "monetary", "date", "text"). Columns not listed here get their type
	// inferred from the column name, or are treated as unknown when
	// inference finds nothing.
	ColumnTypes map[string]string

	// IdentifyingColumns lists the columns whose values form the row
	// signature for duplicate detection. When empty, identifying columns
	// are inferred from the header; if that also finds nothing, whole rows
	// are compared.
	IdentifyingColumns []string

	// Threshold is the similarity at or above which two rows count as near
	// duplicates. Must be greater than 0 and at most 1.
	Threshold float64

	// MaxRows is the maximum number of data rows accepted per table.
	// Larger tables are rejected before any cell inspection.
	MaxRows int

	// MaxColumns is the maximum number of columns accepted per table.
	MaxColumns int

	// MinTextLength is the minimum rune count for free-text cells.
	// Shorter non-empty values are reported as suspiciously short.
	MinTextLength int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent analyses when processing
	// multiple files. Higher values increase throughput at the cost of
	// peak memory.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .crmscan in the current directory,
	// config.yaml in the XDG config directory, and .crmscan in the user's
	// home directory.
	ConfigFilePath string

	// Profile names the profile from the configuration file to apply.
	// If empty, only the file's defaults section is applied.
	Profile string

	// Profiles holds named analysis profiles loaded from the config file.
	// This is populated by LoadConfigFile and merged before flag overrides.
	Profiles *File

	// JSONReport enables JSON report output instead of human-readable format.
	// When true, outputs the canonical report JSON.
	// When false, outputs human-readable simple report (default).
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable
	// format. When true, outputs GitHub Flavored Markdown with tables, alerts,
	// and pie charts. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Explain enables the explanation step: after detection, an external
	// language model is asked to describe why the issues matter. The
	// detection result never depends on this.
	Explain bool

	// ExplainProvider selects the explanation backend: "groq", "openai",
	// "anthropic", or "gemini".
	ExplainProvider string

	// ExplainModel overrides the provider's default model name.
	ExplainModel string

	// ExplainTimeout bounds a single explanation request.
	ExplainTimeout time.Duration
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., threshold, row cap).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Threshold:       dedupe.DefaultThreshold,
		MaxRows:         schema.DefaultMaxRows,
		MaxColumns:      schema.DefaultMaxColumns,
		MinTextLength:   detect.DefaultMinTextLength,
		BatchSize:       DefaultBatchSize,
		ExplainProvider: DefaultExplainProvider,
		ExplainTimeout:  DefaultExplainTimeout,
	}
}

// XDGConfigDir returns the XDG config directory for crmscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/crmscan
// On macOS: ~/Library/Application Support/crmscan
// On Windows: %APPDATA%\crmscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any analysis begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one input to analyze
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}

	// Threshold must stay in (0, 1]; 1 means exact match only
	if c.Threshold <= 0 || c.Threshold > 1 {
		return ErrInvalidThreshold
	}

	// Limits must be positive; zero would reject every table
	if c.MaxRows <= 0 {
		return ErrInvalidMaxRows
	}
	if c.MaxColumns <= 0 {
		return ErrInvalidMaxColumns
	}
	if c.MinTextLength <= 0 {
		return ErrInvalidMinTextLength
	}

	// BatchSize must be positive; zero would mean no analysis
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// ExplainTimeout must be positive when the explanation step can run
	if c.ExplainTimeout <= 0 {
		return ErrInvalidExplainTimeout
	}

	// Column type names must be ones the detector understands
	for name, typeName := range c.ColumnTypes {
		if _, err := model.ParseColumnType(typeName); err != nil {
			return fmt.Errorf("%w: column %q declared as %q", ErrUnknownColumnType, name, typeName)
		}
	}

	return nil
}

// ModelColumnTypes converts the configured type names into model column
// types. Call Validate first; here unknown names silently fall back to
// the unknown type. Returns nil when no types are configured so callers
// can distinguish "not configured" from "configured empty".
func (c *Config) ModelColumnTypes() map[string]model.ColumnType {
	if len(c.ColumnTypes) == 0 {
		return nil
	}

	types := make(map[string]model.ColumnType, len(c.ColumnTypes))
	for name, typeName := range c.ColumnTypes {
		columnType, err := model.ParseColumnType(typeName)
		if err != nil {
			columnType = model.ColumnTypeUnknown
		}
		types[name] = columnType
	}
	return types
}
