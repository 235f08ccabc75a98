package model

// QualityReport is the assembled result of one analysis run.
//
// The report is built once per run, is immutable afterwards, and has no
// persistence: its lifecycle is request-scoped. It deliberately contains no
// timestamps or run identifiers so that analyzing the same table twice
// yields byte-identical JSON.
//
// Design decision: We keep the report a plain aggregate with stable JSON
// field names rather than embedding presentation state because downstream
// consumers (report writers, the explanation generator, HTTP hosts) each
// render it differently and must agree on one canonical shape.
type QualityReport struct {
	// TableRowCount is the number of data rows analyzed.
	TableRowCount int `json:"table_row_count"`

	// TableColumnCount is the number of columns in the table schema.
	TableColumnCount int `json:"table_column_count"`

	// Issues lists every detected defect: field issues first in row-major,
	// column order, then exact-duplicate issues by ascending row, then
	// near-duplicate issues by ascending row.
	Issues []Issue `json:"issues"`

	// DuplicateGroups lists exact groups first, then near groups, each
	// ordered by smallest member row.
	DuplicateGroups []DuplicateGroup `json:"duplicate_groups"`

	// ColumnSummary counts issues per column. Record-level issues
	// (duplicates) are aggregated under the RecordLevelColumn bucket.
	ColumnSummary map[string]int `json:"column_summary"`

	// OverallSeverity is the maximum severity across all issues, or
	// SeverityLow when Issues is empty.
	OverallSeverity Severity `json:"overall_severity"`
}

// TotalIssues returns the number of detected issues.
func (r *QualityReport) TotalIssues() int {
	return len(r.Issues)
}

// HasIssues reports whether any issue was detected.
func (r *QualityReport) HasIssues() bool {
	return len(r.Issues) > 0
}

// IssuesBySeverity returns the issues carrying the given severity, in
// report order.
func (r *QualityReport) IssuesBySeverity(severity Severity) []Issue {
	var issues []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			issues = append(issues, issue)
		}
	}
	return issues
}

// CountBySeverity returns the number of issues carrying the given severity.
func (r *QualityReport) CountBySeverity(severity Severity) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			count++
		}
	}
	return count
}
