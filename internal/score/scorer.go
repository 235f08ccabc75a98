package score

import (
	"sort"

	"github.com/nao1215/crmscan/internal/model"
)

// ColumnSummary counts issues per column. Record-level issues, which
// belong to no single column, are aggregated under the synthetic
// record-level bucket. An empty issue list yields an empty, non-nil
// map so the report field always marshals as an object.
func ColumnSummary(issues []model.Issue) map[string]int {
	summary := make(map[string]int)
	for _, issue := range issues {
		summary[issue.SummaryColumn()]++
	}
	return summary
}

// OverallSeverity returns the maximum severity across all issues, or
// Low when there are none.
func OverallSeverity(issues []model.Issue) model.Severity {
	overall := model.SeverityLow
	for _, issue := range issues {
		if issue.Severity > overall {
			overall = issue.Severity
		}
	}
	return overall
}

// RecordSeverities returns each affected record's effective severity,
// the maximum severity of its own issues. Records without issues do
// not appear.
func RecordSeverities(issues []model.Issue) map[int]model.Severity {
	severities := make(map[int]model.Severity)
	for _, issue := range issues {
		if current, ok := severities[issue.RowIndex]; !ok || issue.Severity > current {
			severities[issue.RowIndex] = issue.Severity
		}
	}
	return severities
}

// RecordScore is one record's aggregate standing, used to rank cleanup
// work.
type RecordScore struct {
	// RowIndex is the zero-based data row.
	RowIndex int
	// Severity is the maximum severity among the record's issues.
	Severity model.Severity
	// IssueCount is how many issues the record carries.
	IssueCount int
}

// RankRecords orders affected records by cleanup priority: severity
// descending, then issue count descending, then row index ascending so
// the order is total and stable.
func RankRecords(issues []model.Issue) []RecordScore {
	counts := make(map[int]int)
	severities := RecordSeverities(issues)
	for _, issue := range issues {
		counts[issue.RowIndex]++
	}

	scores := make([]RecordScore, 0, len(severities))
	for row, severity := range severities {
		scores = append(scores, RecordScore{
			RowIndex:   row,
			Severity:   severity,
			IssueCount: counts[row],
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Severity != scores[j].Severity {
			return scores[i].Severity > scores[j].Severity
		}
		if scores[i].IssueCount != scores[j].IssueCount {
			return scores[i].IssueCount > scores[j].IssueCount
		}
		return scores[i].RowIndex < scores[j].RowIndex
	})
	return scores
}

// CountBySeverity tallies issues by severity level.
func CountBySeverity(issues []model.Issue) map[model.Severity]int {
	counts := make(map[model.Severity]int)
	for _, issue := range issues {
		counts[issue.Severity]++
	}
	return counts
}
