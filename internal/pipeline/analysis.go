package pipeline

import "github.com/nao1215/crmscan/internal/model"

// Analysis carries one table through the pipeline steps. Each step fills in
// the fields it is responsible for and reads what earlier steps produced.
//
// Design decision: The carrier is separate from model.QualityReport because:
// 1. The report is a stable output contract; run state (raw rows, errors,
//    step bookkeeping) must not leak into its JSON
// 2. Steps need intermediate products (parsed rows, the validated table)
//    that the final report deliberately omits
// 3. Batch processing needs per-input error state alongside results
type Analysis struct {
	// Source names the input, usually a file path. Used for logging and
	// report headers.
	Source string

	// Header and Rows hold the parsed CSV before validation. Seeded by the
	// read step, or directly by hosts that already hold the data.
	Header []string
	Rows   [][]string

	// Table is the validated table. Set by the validate step.
	Table *model.Table

	// FieldIssues holds per-cell issues in row-major, column order.
	// Set by the field issue step.
	FieldIssues []model.Issue

	// DuplicateGroups and DuplicateIssues hold record-level duplicate
	// results. Set by the duplicate step.
	DuplicateGroups []model.DuplicateGroup
	DuplicateIssues []model.Issue

	// Report is the assembled result. Set by the assemble step.
	Report *model.QualityReport

	// Explanation is generated prose describing why the detected issues
	// matter. Optional; the report stands without it.
	Explanation string

	// Err holds the first step failure. ErrMessage mirrors it in plain
	// text for serialization.
	Err        error
	ErrMessage string

	// PerformedSteps names the steps that completed, in execution order.
	PerformedSteps []string

	// TimedOut reports whether the run was cancelled before all steps
	// completed.
	TimedOut bool
}

// NewAnalysis creates an Analysis for the named input.
func NewAnalysis(source string) *Analysis {
	return &Analysis{Source: source}
}

// NewAnalysisFromData creates an Analysis over already-parsed rows.
// Hosts that receive CSV content instead of a path (HTTP uploads, stdin)
// use this and omit the read step.
func NewAnalysisFromData(source string, header []string, rows [][]string) *Analysis {
	return &Analysis{
		Source: source,
		Header: header,
		Rows:   rows,
	}
}
