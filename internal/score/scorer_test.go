package score

import (
	"testing"

	"github.com/nao1215/crmscan/internal/model"
)

func sampleIssues() []model.Issue {
	return []model.Issue{
		model.NewIssue(0, "Email", model.KindInvalidFormat, "bad email"),
		model.NewIssue(0, "Company_Name", model.KindShortText, "too short"),
		model.NewIssue(1, "Deal_Amount", model.KindInvalidRange, "negative amount"),
		model.NewIssue(2, "Email", model.KindMissingValue, "missing value"),
		model.NewRecordIssue(0, model.KindDuplicateExact, "exact duplicate"),
		model.NewRecordIssue(3, model.KindDuplicateNear, "near duplicate"),
	}
}

// TestColumnSummary tests per-column counting with the record-level
// bucket for duplicate issues.
func TestColumnSummary(t *testing.T) {
	t.Parallel()

	summary := ColumnSummary(sampleIssues())

	testCases := []struct {
		column   string
		expected int
	}{
		{column: "Email", expected: 2},
		{column: "Company_Name", expected: 1},
		{column: "Deal_Amount", expected: 1},
		{column: model.RecordLevelColumn, expected: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.column, func(t *testing.T) {
			t.Parallel()
			if got := summary[tc.column]; got != tc.expected {
				t.Errorf("summary[%q] = %d, expected %d", tc.column, got, tc.expected)
			}
		})
	}

	if len(summary) != 4 {
		t.Errorf("got %d summary entries, expected %d", len(summary), 4)
	}
}

// TestColumnSummaryEmpty tests that no issues yields an empty, non-nil
// map.
func TestColumnSummaryEmpty(t *testing.T) {
	t.Parallel()

	summary := ColumnSummary(nil)
	if summary == nil {
		t.Fatal("summary should not be nil")
	}
	if len(summary) != 0 {
		t.Errorf("got %d entries, expected 0", len(summary))
	}
}

// TestOverallSeverity tests max aggregation and the empty default.
func TestOverallSeverity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		issues   []model.Issue
		expected model.Severity
	}{
		{
			name:     "no issues defaults to low",
			issues:   nil,
			expected: model.SeverityLow,
		},
		{
			name: "low only",
			issues: []model.Issue{
				model.NewIssue(0, "Notes", model.KindShortText, "too short"),
			},
			expected: model.SeverityLow,
		},
		{
			name: "medium beats low",
			issues: []model.Issue{
				model.NewIssue(0, "Notes", model.KindShortText, "too short"),
				model.NewIssue(1, "Email", model.KindInvalidFormat, "bad email"),
			},
			expected: model.SeverityMedium,
		},
		{
			name:     "high wins",
			issues:   sampleIssues(),
			expected: model.SeverityHigh,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := OverallSeverity(tc.issues); got != tc.expected {
				t.Errorf("got %v, expected %v", got, tc.expected)
			}
		})
	}
}

// TestRecordSeverities tests per-record max severity.
func TestRecordSeverities(t *testing.T) {
	t.Parallel()

	severities := RecordSeverities(sampleIssues())

	testCases := []struct {
		rowIndex int
		expected model.Severity
	}{
		{rowIndex: 0, expected: model.SeverityHigh},   // exact duplicate escalates
		{rowIndex: 1, expected: model.SeverityHigh},   // invalid range
		{rowIndex: 2, expected: model.SeverityMedium}, // missing value
		{rowIndex: 3, expected: model.SeverityMedium}, // near duplicate
	}

	if len(severities) != len(testCases) {
		t.Fatalf("got %d records, expected %d", len(severities), len(testCases))
	}
	for _, tc := range testCases {
		if got := severities[tc.rowIndex]; got != tc.expected {
			t.Errorf("severities[%d] = %v, expected %v", tc.rowIndex, got, tc.expected)
		}
	}
}

// TestRankRecords tests the cleanup priority ordering.
func TestRankRecords(t *testing.T) {
	t.Parallel()

	scores := RankRecords(sampleIssues())

	// Row 0: High with 3 issues. Row 1: High with 1. Rows 2 and 3:
	// Medium with 1, ordered by row.
	expected := []RecordScore{
		{RowIndex: 0, Severity: model.SeverityHigh, IssueCount: 3},
		{RowIndex: 1, Severity: model.SeverityHigh, IssueCount: 1},
		{RowIndex: 2, Severity: model.SeverityMedium, IssueCount: 1},
		{RowIndex: 3, Severity: model.SeverityMedium, IssueCount: 1},
	}

	if len(scores) != len(expected) {
		t.Fatalf("got %d scores, expected %d: %+v", len(scores), len(expected), scores)
	}
	for i, want := range expected {
		if scores[i] != want {
			t.Errorf("scores[%d] = %+v, expected %+v", i, scores[i], want)
		}
	}
}

// TestCountBySeverity tests the severity tally used by report writers.
func TestCountBySeverity(t *testing.T) {
	t.Parallel()

	counts := CountBySeverity(sampleIssues())
	if counts[model.SeverityHigh] != 2 {
		t.Errorf("High = %d, expected %d", counts[model.SeverityHigh], 2)
	}
	if counts[model.SeverityMedium] != 3 {
		t.Errorf("Medium = %d, expected %d", counts[model.SeverityMedium], 3)
	}
	if counts[model.SeverityLow] != 1 {
		t.Errorf("Low = %d, expected %d", counts[model.SeverityLow], 1)
	}
}
