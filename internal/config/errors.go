package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoInput is returned when no CSV file is specified.
	// This error occurs when neither a positional argument nor --sample
	// provides an input.
	ErrNoInput = errors.New("no input specified: provide a csv file or use --sample")

	// ErrInvalidThreshold is returned when the near-duplicate similarity
	// threshold is outside (0, 1]. A threshold of 1 means exact signature
	// matches only; values above 1 can never fire.
	ErrInvalidThreshold = errors.New("invalid similarity threshold: must be greater than 0 and at most 1")

	// ErrInvalidMaxRows is returned when the row limit is not positive.
	// A limit of zero would reject every table with data.
	ErrInvalidMaxRows = errors.New("invalid max rows: must be positive")

	// ErrInvalidMaxColumns is returned when the column limit is not positive.
	ErrInvalidMaxColumns = errors.New("invalid max columns: must be positive")

	// ErrInvalidMinTextLength is returned when the short-text threshold is
	// not positive. Use 1 to flag only empty-looking values.
	ErrInvalidMinTextLength = errors.New("invalid minimum text length: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent analyses, effectively
	// stopping the run.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidExplainTimeout is returned when the explanation timeout is
	// not positive. A zero timeout would cancel every request immediately.
	ErrInvalidExplainTimeout = errors.New("invalid explanation timeout: must be positive")

	// ErrUnknownColumnType is returned when a configured column type name
	// is not one the detector understands.
	ErrUnknownColumnType = errors.New("unknown column type")
)
