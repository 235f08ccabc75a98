package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nao1215/crmscan/internal/model"
	"github.com/nao1215/crmscan/internal/score"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with severity indicators
// and clear section formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with cleanup recommendations.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the bare report in human-readable format.
func (w *SimpleWriter) Write(report *model.QualityReport) (int, error) {
	return w.WriteEnvelope(&Envelope{Report: report})
}

// WriteEnvelope outputs the report with its host-level context.
func (w *SimpleWriter) WriteEnvelope(envelope *Envelope) (int, error) {
	report := envelope.Report
	var sb strings.Builder

	w.writeHeader(&sb, envelope)
	w.writeSummary(&sb, report)
	w.writeColumnSummary(&sb, report)
	w.writeDuplicateGroups(&sb, report)
	w.writeIssues(&sb, report)
	w.writeExplanation(&sb, envelope)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with table information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, envelope *Envelope) {
	report := envelope.Report

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     CRM DATA QUALITY REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if envelope.Source != "" {
		sb.WriteString(fmt.Sprintf("Source:           %s\n", envelope.Source))
	}
	sb.WriteString(fmt.Sprintf("Rows Analyzed:    %d\n", report.TableRowCount))
	sb.WriteString(fmt.Sprintf("Columns:          %d\n", report.TableColumnCount))
	sb.WriteString(fmt.Sprintf("Overall Severity: %s\n", report.OverallSeverity))
	sb.WriteString("\n")
}

// writeSummary writes the severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.QualityReport) {
	counts := score.CountBySeverity(report.Issues)

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SEVERITY SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  HIGH:   %d\n", counts[model.SeverityHigh]))
	sb.WriteString(fmt.Sprintf("  MEDIUM: %d\n", counts[model.SeverityMedium]))
	sb.WriteString(fmt.Sprintf("  LOW:    %d\n", counts[model.SeverityLow]))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:  %d issues\n", report.TotalIssues()))
	sb.WriteString("\n")
}

// writeColumnSummary writes per-column issue counts, alphabetically
// with the record-level bucket last so output is stable.
func (w *SimpleWriter) writeColumnSummary(sb *strings.Builder, report *model.QualityReport) {
	if len(report.ColumnSummary) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ISSUES BY COLUMN\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.ColumnSummary) == 0 {
		sb.WriteString("  No issues in any column\n\n")
		return
	}

	for _, column := range sortedSummaryColumns(report.ColumnSummary) {
		sb.WriteString(fmt.Sprintf("  %-30s %d\n", column, report.ColumnSummary[column]))
	}
	sb.WriteString("\n")
}

// writeDuplicateGroups writes the duplicate groups section.
func (w *SimpleWriter) writeDuplicateGroups(sb *strings.Builder, report *model.QualityReport) {
	if len(report.DuplicateGroups) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DUPLICATE GROUPS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.DuplicateGroups) == 0 {
		sb.WriteString("  No duplicate records found\n\n")
		return
	}

	for _, group := range report.DuplicateGroups {
		sb.WriteString(fmt.Sprintf("  [%s] rows %s (similarity %.2f)\n",
			group.Kind, joinRows(group.RowIndices), group.Similarity))
	}
	sb.WriteString("\n")
}

// writeIssues writes all issues grouped by severity, highest first.
func (w *SimpleWriter) writeIssues(sb *strings.Builder, report *model.QualityReport) {
	if !report.HasIssues() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ISSUES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	severities := []model.Severity{
		model.SeverityHigh,
		model.SeverityMedium,
		model.SeverityLow,
	}

	for _, severity := range severities {
		issues := report.IssuesBySeverity(severity)
		if len(issues) == 0 && !w.showEmpty {
			continue
		}
		w.writeIssuesForSeverity(sb, severity, issues)
	}
}

// writeIssuesForSeverity writes issues of a specific severity level.
func (w *SimpleWriter) writeIssuesForSeverity(sb *strings.Builder, severity model.Severity, issues []model.Issue) {
	indicator := w.getSeverityIndicator(severity)
	sb.WriteString(fmt.Sprintf("[%s] %s\n", indicator, severity.String()))

	if len(issues) == 0 {
		sb.WriteString("  No issues\n\n")
		return
	}

	for _, issue := range issues {
		if issue.IsRecordLevel() {
			sb.WriteString(fmt.Sprintf("  * row %d: %s (%s)\n", issue.RowIndex, issue.Detail, issue.Kind))
		} else {
			sb.WriteString(fmt.Sprintf("  * row %d, column %s: %s (%s)\n",
				issue.RowIndex, issue.Column, issue.Detail, issue.Kind))
		}
		if w.verbose {
			info := model.KindInfoFor(issue.Kind)
			if info.Recommendation != "" {
				sb.WriteString(fmt.Sprintf("    Recommendation: %s\n", info.Recommendation))
			}
		}
	}
	sb.WriteString("\n")
}

// getSeverityIndicator returns a visual indicator for the severity level.
func (w *SimpleWriter) getSeverityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	default:
		return "?"
	}
}

// writeExplanation writes the optional narrative section.
func (w *SimpleWriter) writeExplanation(sb *strings.Builder, envelope *Envelope) {
	if envelope.Explanation == "" {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("WHY THESE ISSUES MATTER\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
	sb.WriteString(envelope.Explanation)
	sb.WriteString("\n\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by crmscan\n")
	sb.WriteString("https://github.com/nao1215/crmscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// sortedSummaryColumns orders column summary keys alphabetically with
// the synthetic record-level bucket forced to the end.
func sortedSummaryColumns(summary map[string]int) []string {
	columns := make([]string, 0, len(summary))
	hasRecordLevel := false
	for column := range summary {
		if column == model.RecordLevelColumn {
			hasRecordLevel = true
			continue
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)
	if hasRecordLevel {
		columns = append(columns, model.RecordLevelColumn)
	}
	return columns
}

// joinRows formats row indices as a comma-separated list.
func joinRows(rows []int) string {
	parts := make([]string, len(rows))
	for i, row := range rows {
		parts[i] = fmt.Sprintf("%d", row)
	}
	return strings.Join(parts, ", ")
}
