package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/crmscan/internal/model"
	"github.com/nao1215/crmscan/internal/score"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the bare report in Markdown format.
func (w *MarkdownWriter) Write(report *model.QualityReport) (int, error) {
	return w.WriteEnvelope(&Envelope{Report: report})
}

// WriteEnvelope outputs the report with its host-level context.
func (w *MarkdownWriter) WriteEnvelope(envelope *Envelope) (int, error) {
	md := markdown.NewMarkdown(w.output)
	report := envelope.Report

	w.writeHeader(md, envelope)
	w.writeSummary(md, report)
	w.writeColumnSummary(md, report)
	w.writeDuplicateGroups(md, report)
	w.writeIssues(md, report)
	w.writeTopRecords(md, report)
	w.writeExplanation(md, envelope)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with table information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, envelope *Envelope) {
	report := envelope.Report

	md.H1("CRM Data Quality Report")
	md.PlainText("")

	rows := [][]string{
		{"Rows Analyzed", strconv.Itoa(report.TableRowCount)},
		{"Columns", strconv.Itoa(report.TableColumnCount)},
		{"Total Issues", strconv.Itoa(report.TotalIssues())},
		{"Overall Severity", report.OverallSeverity.String()},
	}
	if envelope.Source != "" {
		rows = append([][]string{{"Source", "`" + envelope.Source + "`"}}, rows...)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.QualityReport) {
	counts := score.CountBySeverity(report.Issues)

	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 High", strconv.Itoa(counts[model.SeverityHigh])},
			{"🟡 Medium", strconv.Itoa(counts[model.SeverityMedium])},
			{"🔵 Low", strconv.Itoa(counts[model.SeverityLow])},
			{"**Total**", "**" + strconv.Itoa(report.TotalIssues()) + "**"},
		},
	})
	md.PlainText("")

	if report.HasIssues() {
		w.writePieChart(md, counts)
	}

	w.writeAlert(md, report, counts)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.Severity]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Severity Distribution"),
		piechart.WithShowData(true),
	)

	if counts[model.SeverityHigh] > 0 {
		chart.LabelAndIntValue("High", uint64(counts[model.SeverityHigh]))
	}
	if counts[model.SeverityMedium] > 0 {
		chart.LabelAndIntValue("Medium", uint64(counts[model.SeverityMedium]))
	}
	if counts[model.SeverityLow] > 0 {
		chart.LabelAndIntValue("Low", uint64(counts[model.SeverityLow]))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.QualityReport, counts map[model.Severity]int) {
	switch {
	case counts[model.SeverityHigh] > 0:
		md.Warningf(
			"High severity issues detected. %d issue(s) can break automation or corrupt analytics and should be cleaned first.",
			counts[model.SeverityHigh],
		)
	case counts[model.SeverityMedium] > 0:
		md.Importantf(
			"Medium severity issues found. %d issue(s) may degrade outreach and reporting quality.",
			counts[model.SeverityMedium],
		)
	case report.HasIssues():
		md.Note("Only low severity issues detected.")
	default:
		md.Tip("No data quality issues detected. The table is ready for automation.")
	}
	md.PlainText("")
}

// writeColumnSummary writes per-column issue counts.
func (w *MarkdownWriter) writeColumnSummary(md *markdown.Markdown, report *model.QualityReport) {
	md.H2("Issues by Column")
	md.PlainText("")

	if len(report.ColumnSummary) == 0 {
		md.PlainText("No issues in any column.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.ColumnSummary))
	for _, column := range sortedSummaryColumns(report.ColumnSummary) {
		rows = append(rows, []string{column, strconv.Itoa(report.ColumnSummary[column])})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Column", "Issues"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDuplicateGroups writes the duplicate groups section.
func (w *MarkdownWriter) writeDuplicateGroups(md *markdown.Markdown, report *model.QualityReport) {
	md.H2("Duplicate Groups")
	md.PlainText("")

	if len(report.DuplicateGroups) == 0 {
		md.PlainText("No duplicate records found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.DuplicateGroups))
	for i, group := range report.DuplicateGroups {
		rows[i] = []string{
			group.Kind.String(),
			joinRows(group.RowIndices),
			fmt.Sprintf("%.2f", group.Similarity),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Rows", "Similarity"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeIssues writes all issues grouped by severity.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, report *model.QualityReport) {
	md.H2("Issues")
	md.PlainText("")

	if !report.HasIssues() {
		md.PlainText("No issues detected.")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityHigh, "### 🔴 High"},
		{model.SeverityMedium, "### 🟡 Medium"},
		{model.SeverityLow, "### 🔵 Low"},
	}

	for _, sev := range severities {
		issues := report.IssuesBySeverity(sev.level)
		if len(issues) == 0 {
			continue
		}

		md.PlainText(sev.header)
		md.PlainText("")
		w.writeIssuesTable(md, issues)
	}

	w.writeKindDetails(md, report)
}

// writeIssuesTable writes a table of issues with details.
func (w *MarkdownWriter) writeIssuesTable(md *markdown.Markdown, issues []model.Issue) {
	rows := make([][]string, len(issues))
	for i, issue := range issues {
		column := issue.Column
		if column == "" {
			column = "-"
		}
		rows[i] = []string{
			strconv.Itoa(issue.RowIndex),
			column,
			issue.Kind.String(),
			truncateString(issue.Detail, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Row", "Column", "Kind", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeKindDetails writes collapsible business-impact notes for every
// issue kind present in the report.
func (w *MarkdownWriter) writeKindDetails(md *markdown.Markdown, report *model.QualityReport) {
	seen := make(map[model.IssueKind]bool)
	for _, issue := range report.Issues {
		if seen[issue.Kind] {
			continue
		}
		seen[issue.Kind] = true

		info := model.KindInfoFor(issue.Kind)
		if info.Impact == "" {
			continue
		}
		md.Details(issue.Kind.String(), info.Impact+" "+info.Recommendation)
	}
	md.PlainText("")
}

// writeTopRecords writes the records most in need of cleanup.
func (w *MarkdownWriter) writeTopRecords(md *markdown.Markdown, report *model.QualityReport) {
	scores := score.RankRecords(report.Issues)
	if len(scores) == 0 {
		return
	}
	if len(scores) > 10 {
		scores = scores[:10]
	}

	md.H2("Records Needing Attention")
	md.PlainText("")

	rows := make([][]string, len(scores))
	for i, s := range scores {
		rows[i] = []string{
			strconv.Itoa(s.RowIndex),
			s.Severity.String(),
			strconv.Itoa(s.IssueCount),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Row", "Severity", "Issues"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeExplanation writes the optional narrative section.
func (w *MarkdownWriter) writeExplanation(md *markdown.Markdown, envelope *Envelope) {
	if envelope.Explanation == "" {
		return
	}

	md.H2("Why These Issues Matter")
	md.PlainText("")
	md.PlainText(envelope.Explanation)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [crmscan](https://github.com/nao1215/crmscan)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
