package explain

import (
	"fmt"
	"strings"

	"github.com/nao1215/crmscan/internal/model"
)

// SystemPrompt frames the provider's role. It pins the narrative to the
// issues the deterministic detectors already found and forbids the model
// from acting as anything but an advisor.
const SystemPrompt = `You are an assistant helping explain CRM data quality issues to business users.

Given a list of data quality issues found in a CRM dataset, explain:
1. Why each type of issue matters for business operations
2. What downstream risks these issues could cause (automation failures, bad analytics, customer impact)
3. Suggested priority order for cleanup

Keep your response:
- Business-focused (not technical jargon)
- Concise but comprehensive
- Actionable
- Do NOT use any emojis

CRITICAL: You are ONLY explaining and advising. You are NOT modifying any data.`

// maxSampleDetails caps how many per-cell details a single issue group
// contributes to the prompt. Large tables can carry thousands of issues
// in one column; the group count tells the model the scale, the samples
// show it the shape.
const maxSampleDetails = 3

// issueGroup aggregates issues sharing a kind and column for the prompt.
type issueGroup struct {
	kind    model.IssueKind
	column  string
	count   int
	samples []string
}

// groupIssues buckets issues by kind and column in first-seen order.
// The input order is deterministic, so the prompt is too.
func groupIssues(issues []model.Issue) []*issueGroup {
	index := make(map[string]*issueGroup)
	groups := make([]*issueGroup, 0)

	for _, issue := range issues {
		key := issue.Kind.String() + "\x00" + issue.SummaryColumn()
		group, ok := index[key]
		if !ok {
			group = &issueGroup{kind: issue.Kind, column: issue.SummaryColumn()}
			index[key] = group
			groups = append(groups, group)
		}
		group.count++
		if len(group.samples) < maxSampleDetails {
			group.samples = append(group.samples, issue.Detail)
		}
	}

	return groups
}

// BuildPrompt renders the user prompt for a quality report.
// It returns an empty string when the report carries no issues.
//
// The prompt lists one numbered line per kind-and-column group rather
// than one per cell, so prompt size grows with the variety of problems
// instead of the size of the table.
func BuildPrompt(report *model.QualityReport) string {
	if report == nil || !report.HasIssues() {
		return ""
	}

	var b strings.Builder
	b.WriteString("Analyze these CRM data quality issues and provide business-focused explanations:\n\n")
	fmt.Fprintf(&b, "Data quality issues found in a table of %d rows and %d columns:\n",
		report.TableRowCount, report.TableColumnCount)

	for i, group := range groupIssues(report.Issues) {
		fmt.Fprintf(&b, "%d. %s", i+1, kindLabel(group.kind))
		if group.column == model.RecordLevelColumn {
			b.WriteString(" across records")
		} else {
			fmt.Fprintf(&b, " in '%s'", group.column)
		}
		if group.count > 1 {
			fmt.Fprintf(&b, " (%d rows)", group.count)
		}
		b.WriteString(": ")
		b.WriteString(strings.Join(group.samples, "; "))
		if group.count > len(group.samples) {
			fmt.Fprintf(&b, "; and %d more", group.count-len(group.samples))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nProvide:\n")
	b.WriteString("1. Business impact explanation for each issue type\n")
	b.WriteString("2. Downstream risks if not addressed\n")
	b.WriteString("3. Recommended cleanup priority order\n\n")
	b.WriteString("Do NOT use any emojis in your response.\n")

	return b.String()
}

// kindLabel renders an issue kind the way a business user reads it.
func kindLabel(kind model.IssueKind) string {
	switch kind {
	case model.KindMissingValue:
		return "Missing Value"
	case model.KindInvalidFormat:
		return "Invalid Format"
	case model.KindInvalidRange:
		return "Invalid Range"
	case model.KindDuplicateExact:
		return "Exact Duplicate"
	case model.KindDuplicateNear:
		return "Near Duplicate"
	case model.KindShortText:
		return "Short Text"
	default:
		return kind.String()
	}
}
