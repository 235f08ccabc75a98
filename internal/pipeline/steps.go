package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/crmscan/internal/config"
	"github.com/nao1215/crmscan/internal/csvio"
	"github.com/nao1215/crmscan/internal/dedupe"
	"github.com/nao1215/crmscan/internal/detect"
	"github.com/nao1215/crmscan/internal/model"
	"github.com/nao1215/crmscan/internal/report"
	"github.com/nao1215/crmscan/internal/schema"
)

// ErrTableNotValidated is returned when a detection step runs before the
// validate step has produced a table. It indicates a misassembled pipeline
// rather than bad input data.
var ErrTableNotValidated = errors.New("pipeline: table not validated")

// ReadStep parses the CSV input named by the analysis source.
//
// Design decision: Reading is a separate step because:
// 1. Hosts that already hold parsed rows (HTTP uploads) can seed the
//    analysis and the step steps aside
// 2. Read failures are per-input and belong in the analysis record
// 3. It keeps file system access out of the detection steps
type ReadStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// ReadStepOption configures a ReadStep.
type ReadStepOption func(*ReadStep)

// WithReadLogger sets a custom logger for the read step.
func WithReadLogger(logger *slog.Logger) ReadStepOption {
	return func(s *ReadStep) {
		s.logger = logger
	}
}

// NewReadStep creates a new CSV reading step.
func NewReadStep(opts ...ReadStepOption) *ReadStep {
	s := &ReadStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ReadStep) Name() string {
	return "read"
}

// Do executes the read step.
func (s *ReadStep) Do(_ context.Context, a *Analysis) error {
	// Skip when a host seeded the rows directly
	if a.Header != nil || a.Rows != nil {
		s.logger.Debug("skipping read, input already loaded", "source", a.Source)
		return nil
	}

	header, rows, err := csvio.ReadFile(a.Source)
	if err != nil {
		return err
	}

	a.Header = header
	a.Rows = rows
	s.logger.Debug("read csv input",
		"source", a.Source,
		"rows", len(rows),
		"columns", len(header),
	)

	return nil
}

// ValidateStep checks the table structure before any cell inspection.
//
// Design decision: Validation is a separate step because:
// 1. Structural errors abort the run; later steps assume a well-formed table
// 2. Its limits (row and column caps, required columns) are configured
//    independently of the cell rules
// 3. It is the only step that turns raw rows into the immutable table
type ValidateStep struct {
	// requiredColumns must all be present in the header.
	requiredColumns []string

	// maxRows and maxColumns bound the accepted table size.
	maxRows    int
	maxColumns int

	// logger for structured logging.
	logger *slog.Logger
}

// ValidateStepOption configures a ValidateStep.
type ValidateStepOption func(*ValidateStep)

// WithValidateRequiredColumns sets the columns that must exist in the header.
func WithValidateRequiredColumns(columns []string) ValidateStepOption {
	return func(s *ValidateStep) {
		s.requiredColumns = columns
	}
}

// WithValidateMaxRows sets the maximum number of data rows accepted.
func WithValidateMaxRows(n int) ValidateStepOption {
	return func(s *ValidateStep) {
		if n > 0 {
			s.maxRows = n
		}
	}
}

// WithValidateMaxColumns sets the maximum number of columns accepted.
func WithValidateMaxColumns(n int) ValidateStepOption {
	return func(s *ValidateStep) {
		if n > 0 {
			s.maxColumns = n
		}
	}
}

// WithValidateLogger sets a custom logger for the validate step.
func WithValidateLogger(logger *slog.Logger) ValidateStepOption {
	return func(s *ValidateStep) {
		s.logger = logger
	}
}

// NewValidateStep creates a new schema validation step.
func NewValidateStep(opts ...ValidateStepOption) *ValidateStep {
	s := &ValidateStep{
		maxRows:    schema.DefaultMaxRows,
		maxColumns: schema.DefaultMaxColumns,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ValidateStep) Name() string {
	return "validate"
}

// Do executes the validation step.
func (s *ValidateStep) Do(_ context.Context, a *Analysis) error {
	validator := schema.NewValidator(
		schema.WithRequiredColumns(s.requiredColumns),
		schema.WithMaxRows(s.maxRows),
		schema.WithMaxColumns(s.maxColumns),
	)

	table, err := validator.Validate(a.Header, a.Rows)
	if err != nil {
		return err
	}

	a.Table = table
	s.logger.Debug("table validated",
		"source", a.Source,
		"rows", table.RowCount(),
		"columns", table.ColumnCount(),
	)

	return nil
}

// FieldIssueStep runs the per-cell quality rules over the validated table.
//
// Design decision: Field issue detection is a separate step because:
// 1. Column typing can be explicit or inferred, decided per run
// 2. Its output order (row-major, column order) is a contract the
//    assembler relies on
// 3. It can be tuned (minimum text length) without touching duplicates
type FieldIssueStep struct {
	// columnTypes binds column names to rule sets. When nil, types are
	// inferred from column names at execution time.
	columnTypes map[string]model.ColumnType

	// requiredColumns are columns whose cells must not be empty.
	requiredColumns []string

	// minTextLength is the minimum rune count for free-text cells.
	minTextLength int

	// logger for structured logging.
	logger *slog.Logger
}

// FieldIssueStepOption configures a FieldIssueStep.
type FieldIssueStepOption func(*FieldIssueStep)

// WithFieldColumnTypes sets explicit column types, disabling name-based
// inference.
func WithFieldColumnTypes(types map[string]model.ColumnType) FieldIssueStepOption {
	return func(s *FieldIssueStep) {
		s.columnTypes = types
	}
}

// WithFieldRequiredColumns sets the columns whose cells must not be empty.
func WithFieldRequiredColumns(columns []string) FieldIssueStepOption {
	return func(s *FieldIssueStep) {
		s.requiredColumns = columns
	}
}

// WithFieldMinTextLength sets the minimum rune count for free-text cells.
func WithFieldMinTextLength(n int) FieldIssueStepOption {
	return func(s *FieldIssueStep) {
		if n > 0 {
			s.minTextLength = n
		}
	}
}

// WithFieldLogger sets a custom logger for the field issue step.
func WithFieldLogger(logger *slog.Logger) FieldIssueStepOption {
	return func(s *FieldIssueStep) {
		s.logger = logger
	}
}

// NewFieldIssueStep creates a new field issue detection step.
func NewFieldIssueStep(opts ...FieldIssueStepOption) *FieldIssueStep {
	s := &FieldIssueStep{
		minTextLength: detect.DefaultMinTextLength,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *FieldIssueStep) Name() string {
	return "field_issues"
}

// Do executes the field issue detection step.
func (s *FieldIssueStep) Do(_ context.Context, a *Analysis) error {
	if a.Table == nil {
		return ErrTableNotValidated
	}

	columnTypes := s.columnTypes
	if columnTypes == nil {
		columnTypes = detect.InferColumnTypes(a.Table.Columns())
	}

	detector := detect.NewDetector(
		detect.WithColumnTypes(columnTypes),
		detect.WithRequiredColumns(s.requiredColumns),
		detect.WithMinTextLength(s.minTextLength),
	)

	a.FieldIssues = detector.Detect(a.Table)
	s.logger.Debug("field issues detected",
		"source", a.Source,
		"count", len(a.FieldIssues),
	)

	return nil
}

// DuplicateStep finds exact and near duplicate records in the validated
// table.
//
// Design decision: Duplicate detection is a separate step because:
// 1. It operates on whole records while the field step inspects cells
// 2. Identifying columns can be explicit or inferred, decided per run
// 3. Its quadratic near pass dominates runtime and may warrant skipping
type DuplicateStep struct {
	// identifyingColumns form the row signature. When nil, they are
	// inferred from column names at execution time.
	identifyingColumns []string

	// threshold is the similarity at or above which two rows count as
	// near duplicates.
	threshold float64

	// logger for structured logging.
	logger *slog.Logger
}

// DuplicateStepOption configures a DuplicateStep.
type DuplicateStepOption func(*DuplicateStep)

// WithDuplicateIdentifyingColumns sets explicit identifying columns,
// disabling name-based inference.
func WithDuplicateIdentifyingColumns(columns []string) DuplicateStepOption {
	return func(s *DuplicateStep) {
		s.identifyingColumns = columns
	}
}

// WithDuplicateThreshold sets the near-duplicate similarity threshold.
// Values outside (0, 1] are ignored.
func WithDuplicateThreshold(threshold float64) DuplicateStepOption {
	return func(s *DuplicateStep) {
		if threshold > 0 && threshold <= 1 {
			s.threshold = threshold
		}
	}
}

// WithDuplicateLogger sets a custom logger for the duplicate step.
func WithDuplicateLogger(logger *slog.Logger) DuplicateStepOption {
	return func(s *DuplicateStep) {
		s.logger = logger
	}
}

// NewDuplicateStep creates a new duplicate detection step.
func NewDuplicateStep(opts ...DuplicateStepOption) *DuplicateStep {
	s := &DuplicateStep{
		threshold: dedupe.DefaultThreshold,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *DuplicateStep) Name() string {
	return "duplicates"
}

// Do executes the duplicate detection step.
func (s *DuplicateStep) Do(_ context.Context, a *Analysis) error {
	if a.Table == nil {
		return ErrTableNotValidated
	}

	identifying := s.identifyingColumns
	if identifying == nil {
		identifying = detect.InferIdentifyingColumns(a.Table.Columns())
	}

	detector := dedupe.NewDetector(
		dedupe.WithIdentifyingColumns(identifying),
		dedupe.WithThreshold(s.threshold),
	)

	a.DuplicateGroups, a.DuplicateIssues = detector.Detect(a.Table)
	s.logger.Debug("duplicates detected",
		"source", a.Source,
		"groups", len(a.DuplicateGroups),
		"issues", len(a.DuplicateIssues),
	)

	return nil
}

// AssembleStep merges detection results into the final quality report.
//
// Design decision: Assembly is its own step because:
// 1. It is the single place where issue ordering is fixed
// 2. Steps before it stay independent of each other's output shape
// 3. Post-processing (explanation) keys off the assembled report
type AssembleStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// AssembleStepOption configures an AssembleStep.
type AssembleStepOption func(*AssembleStep)

// WithAssembleLogger sets a custom logger for the assemble step.
func WithAssembleLogger(logger *slog.Logger) AssembleStepOption {
	return func(s *AssembleStep) {
		s.logger = logger
	}
}

// NewAssembleStep creates a new report assembly step.
func NewAssembleStep(opts ...AssembleStepOption) *AssembleStep {
	s := &AssembleStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *AssembleStep) Name() string {
	return "assemble"
}

// Do executes the assembly step.
func (s *AssembleStep) Do(_ context.Context, a *Analysis) error {
	if a.Table == nil {
		return ErrTableNotValidated
	}

	a.Report = report.Assemble(a.Table, a.FieldIssues, a.DuplicateGroups, a.DuplicateIssues)
	s.logger.Debug("report assembled",
		"source", a.Source,
		"total_issues", a.Report.TotalIssues(),
		"overall_severity", a.Report.OverallSeverity.String(),
	)

	return nil
}

// ExplanationGenerator produces prose describing why detected issues
// matter. Implementations live in the explain package; the interface is
// declared here so the pipeline does not depend on any provider SDK.
type ExplanationGenerator interface {
	// Generate returns an explanation for the report.
	Generate(ctx context.Context, report *model.QualityReport) (string, error)
}

// ExplainStep asks an external language model to explain the detected
// issues in business terms. Detection is already complete when this step
// runs; a failed or slow generation never invalidates the report.
//
// Design decision: The step swallows generation errors because:
// 1. The report is correct and complete without prose
// 2. Provider outages and rate limits are routine, not exceptional
// 3. A timeout here must not abort the rest of a batch run
type ExplainStep struct {
	// generator produces the explanation text.
	generator ExplanationGenerator

	// timeout bounds a single generation request.
	timeout time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// ExplainStepOption configures an ExplainStep.
type ExplainStepOption func(*ExplainStep)

// WithExplainTimeout bounds a single generation request.
// Non-positive values are ignored.
func WithExplainTimeout(d time.Duration) ExplainStepOption {
	return func(s *ExplainStep) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithExplainLogger sets a custom logger for the explain step.
func WithExplainLogger(logger *slog.Logger) ExplainStepOption {
	return func(s *ExplainStep) {
		s.logger = logger
	}
}

// NewExplainStep creates a new explanation step backed by the given
// generator.
func NewExplainStep(generator ExplanationGenerator, opts ...ExplainStepOption) *ExplainStep {
	s := &ExplainStep{
		generator: generator,
		timeout:   config.DefaultExplainTimeout,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ExplainStep) Name() string {
	return "explain"
}

// Do executes the explanation step.
func (s *ExplainStep) Do(ctx context.Context, a *Analysis) error {
	if a.Report == nil {
		s.logger.Debug("skipping explanation, no report assembled", "source", a.Source)
		return nil
	}
	if s.generator == nil {
		s.logger.Debug("skipping explanation, no generator configured", "source", a.Source)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.generator.Generate(ctx, a.Report)
	if err != nil {
		// Non-fatal: the report stands without prose
		s.logger.Warn("explanation generation failed",
			"source", a.Source,
			"error", err,
		)
		return nil
	}

	a.Explanation = text
	s.logger.Debug("explanation generated",
		"source", a.Source,
		"length", len(text),
	)

	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// RequiredColumns lists columns every record must fill.
	RequiredColumns []string

	// ColumnTypes maps column names to their cell rule sets. When nil,
	// types are inferred from column names.
	ColumnTypes map[string]model.ColumnType

	// IdentifyingColumns lists the columns that form row signatures for
	// duplicate detection. When nil, they are inferred from column names.
	IdentifyingColumns []string

	// Threshold is the near-duplicate similarity threshold.
	Threshold float64

	// MaxRows is the maximum number of data rows accepted.
	MaxRows int

	// MaxColumns is the maximum number of columns accepted.
	MaxColumns int

	// MinTextLength is the minimum rune count for free-text cells.
	MinTextLength int
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineRequiredColumns sets the required columns for the pipeline.
func WithPipelineRequiredColumns(columns []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.RequiredColumns = columns
	}
}

// WithPipelineColumnTypes sets explicit column types for the pipeline.
func WithPipelineColumnTypes(types map[string]model.ColumnType) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ColumnTypes = types
	}
}

// WithPipelineIdentifyingColumns sets explicit identifying columns for
// duplicate detection.
func WithPipelineIdentifyingColumns(columns []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.IdentifyingColumns = columns
	}
}

// WithPipelineThreshold sets the near-duplicate similarity threshold.
func WithPipelineThreshold(threshold float64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Threshold = threshold
	}
}

// WithPipelineMaxRows sets the maximum number of data rows accepted.
func WithPipelineMaxRows(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxRows = n
	}
}

// WithPipelineMaxColumns sets the maximum number of columns accepted.
func WithPipelineMaxColumns(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxColumns = n
	}
}

// WithPipelineMinTextLength sets the minimum rune count for free-text cells.
func WithPipelineMinTextLength(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MinTextLength = n
	}
}

// OptionsFromConfig converts a resolved configuration into pipeline config
// options. Unset fields are skipped so the pipeline's own defaults cover
// whatever the configuration leaves blank. Both hosts (the CLI and the
// HTTP server) build their pipelines through this, so a flag and a query
// parameter naming the same setting cannot drift apart.
func OptionsFromConfig(cfg *config.Config) []DefaultPipelineOption {
	if cfg == nil {
		return nil
	}

	var opts []DefaultPipelineOption
	if len(cfg.RequiredColumns) > 0 {
		opts = append(opts, WithPipelineRequiredColumns(cfg.RequiredColumns))
	}
	if types := cfg.ModelColumnTypes(); types != nil {
		opts = append(opts, WithPipelineColumnTypes(types))
	}
	if len(cfg.IdentifyingColumns) > 0 {
		opts = append(opts, WithPipelineIdentifyingColumns(cfg.IdentifyingColumns))
	}
	if cfg.Threshold > 0 {
		opts = append(opts, WithPipelineThreshold(cfg.Threshold))
	}
	if cfg.MaxRows > 0 {
		opts = append(opts, WithPipelineMaxRows(cfg.MaxRows))
	}
	if cfg.MaxColumns > 0 {
		opts = append(opts, WithPipelineMaxColumns(cfg.MaxColumns))
	}
	if cfg.MinTextLength > 0 {
		opts = append(opts, WithPipelineMinTextLength(cfg.MinTextLength))
	}
	return opts
}

// DefaultPipeline creates a pipeline with all detection steps configured.
// This is the standard pipeline for analyzing one CSV input.
//
// Design decision: We provide a default pipeline because:
// 1. Most callers want the full check sequence
// 2. Reduces boilerplate in the CLI and the HTTP host
// 3. Ensures consistent step ordering
//
// The first parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineThreshold, etc).
// The explanation step is not part of the default pipeline; hosts append
// it with AddStep when a generator is configured.
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		Threshold:     dedupe.DefaultThreshold,
		MaxRows:       schema.DefaultMaxRows,
		MaxColumns:    schema.DefaultMaxColumns,
		MinTextLength: detect.DefaultMinTextLength,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	validateOpts := []ValidateStepOption{
		WithValidateMaxRows(cfg.MaxRows),
		WithValidateMaxColumns(cfg.MaxColumns),
	}
	if len(cfg.RequiredColumns) > 0 {
		validateOpts = append(validateOpts, WithValidateRequiredColumns(cfg.RequiredColumns))
	}

	fieldOpts := []FieldIssueStepOption{
		WithFieldMinTextLength(cfg.MinTextLength),
	}
	if cfg.ColumnTypes != nil {
		fieldOpts = append(fieldOpts, WithFieldColumnTypes(cfg.ColumnTypes))
	}
	if len(cfg.RequiredColumns) > 0 {
		fieldOpts = append(fieldOpts, WithFieldRequiredColumns(cfg.RequiredColumns))
	}

	duplicateOpts := []DuplicateStepOption{
		WithDuplicateThreshold(cfg.Threshold),
	}
	if cfg.IdentifyingColumns != nil {
		duplicateOpts = append(duplicateOpts, WithDuplicateIdentifyingColumns(cfg.IdentifyingColumns))
	}

	// Add steps in logical order
	p.AddSteps(
		NewReadStep(),
		NewValidateStep(validateOpts...),
		NewFieldIssueStep(fieldOpts...),
		NewDuplicateStep(duplicateOpts...),
		NewAssembleStep(),
	)

	return p
}
