package report

import (
	"github.com/nao1215/crmscan/internal/model"
	"github.com/nao1215/crmscan/internal/score"
)

// Assemble merges the detector outputs into one QualityReport.
//
// The merge is purely mechanical: field issues come first in their
// original row-major order, duplicate issues follow in the order the
// duplicate detector emitted them, and the aggregate fields are derived
// from that combined list. The total issue count always equals the sum
// of the two inputs.
func Assemble(table *model.Table, fieldIssues []model.Issue, groups []model.DuplicateGroup, duplicateIssues []model.Issue) *model.QualityReport {
	issues := make([]model.Issue, 0, len(fieldIssues)+len(duplicateIssues))
	issues = append(issues, fieldIssues...)
	issues = append(issues, duplicateIssues...)

	if groups == nil {
		groups = []model.DuplicateGroup{}
	}

	return &model.QualityReport{
		TableRowCount:    table.RowCount(),
		TableColumnCount: table.ColumnCount(),
		Issues:           issues,
		DuplicateGroups:  groups,
		ColumnSummary:    score.ColumnSummary(issues),
		OverallSeverity:  score.OverallSeverity(issues),
	}
}

// Envelope wraps a QualityReport with host-level context for output.
//
// Design decision: We wrap the report rather than widening QualityReport
// because the report body is a stable contract with downstream
// consumers; source names, tool versions, and optional narrative are
// output concerns and must not leak into it.
type Envelope struct {
	// Source names the analyzed input, such as a file path or "sample".
	Source string `json:"source,omitempty"`

	// Version is the crmscan version that produced the report.
	Version string `json:"version,omitempty"`

	// Report is the deterministic quality report.
	Report *model.QualityReport `json:"report"`

	// Explanation is optional narrative from the explanation
	// collaborator. It is best-effort enrichment: an empty value means
	// the collaborator was disabled or unavailable, and the report
	// stands on its own either way.
	Explanation string `json:"explanation,omitempty"`
}

// NewEnvelope creates an Envelope around a report.
func NewEnvelope(report *model.QualityReport, version, source string) *Envelope {
	return &Envelope{
		Source:  source,
		Version: version,
		Report:  report,
	}
}
