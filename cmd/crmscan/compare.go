package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/crmscan/internal/config"
	crmlog "github.com/nao1215/crmscan/internal/log"
	"github.com/nao1215/crmscan/internal/model"
	"github.com/nao1215/crmscan/internal/pipeline"
)

// Constants for quality direction between two analyses.
const (
	directionImproved  = "improved"
	directionWorsened  = "worsened"
	directionUnchanged = "unchanged"
)

// Severity weights for the direction verdict. A resolved high-severity
// issue outweighs two new low-severity ones.
const (
	weightHigh   = 3
	weightMedium = 2
	weightLow    = 1
)

// NewCompareCmd creates the compare command.
// It analyzes two CSV files with identical settings and reports the
// quality delta between them.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <before.csv> <after.csv>",
		Short: "Compare the data quality of two CSV exports",
		Long: `Compare analyzes two CSV files with the same configuration and shows
how data quality changed between them.

Both files run through the full detection pipeline independently; nothing
is stored. The delta covers issue counts per severity, duplicate groups,
and a direction verdict (improved, worsened, or unchanged) weighted by
severity.

Typical use is checking a cleaned export against the original:

Examples:
  # Compare an export before and after cleanup
  crmscan compare leads_raw.csv leads_cleaned.csv

  # Use a named profile for both analyses
  crmscan compare -p salesforce before.csv after.csv

  # Output the delta as JSON
  crmscan compare --json before.csv after.csv`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .crmscan in current or home directory)")
	cmd.Flags().StringP("profile", "p", "",
		"Named profile from the configuration file to apply")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCompareConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := crmlog.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx := context.Background()

	before, err := analyzeForCompare(ctx, cfg, logger, args[0])
	if err != nil {
		return err
	}

	after, err := analyzeForCompare(ctx, cfg, logger, args[1])
	if err != nil {
		return err
	}

	delta := newQualityDelta(before, after)

	switch {
	case cfg.JSONReport:
		return delta.writeJSON(os.Stdout)
	case cfg.MarkdownReport:
		return delta.writeMarkdown(os.Stdout)
	default:
		return delta.writeText(os.Stdout)
	}
}

// buildCompareConfig creates a Config from the compare command's flags.
// Both files are analyzed with exactly this configuration so their deltas
// are attributable to the data, not the settings.
func buildCompareConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	if err := applyConfigFile(cmd, cfg); err != nil {
		return nil, err
	}

	var err error
	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.Inputs = args
	return cfg, nil
}

// analyzeForCompare runs the detection pipeline over one file without the
// explanation step and without printing a report.
func analyzeForCompare(ctx context.Context, cfg *config.Config, logger *slog.Logger, file string) (*pipeline.Analysis, error) {
	a := pipeline.NewAnalysis(file)
	p := newPipeline(cfg, logger, nil)

	if err := p.Execute(ctx, a); err != nil {
		return nil, fmt.Errorf("analysis of %s failed: %w", file, err)
	}

	return a, nil
}

// fileQuality summarizes one analysis for the delta.
type fileQuality struct {
	// Source is the analyzed file path.
	Source string `json:"source"`

	// Rows is the number of data rows in the table.
	Rows int `json:"rows"`

	// TotalIssues is the number of detected issues.
	TotalIssues int `json:"total_issues"`

	// High, Medium, and Low are the issue counts per severity.
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`

	// DuplicateGroups is the number of detected duplicate groups.
	DuplicateGroups int `json:"duplicate_groups"`

	// OverallSeverity is the report's overall severity.
	OverallSeverity string `json:"overall_severity"`
}

// newFileQuality summarizes a completed analysis.
func newFileQuality(a *pipeline.Analysis) fileQuality {
	r := a.Report
	return fileQuality{
		Source:          a.Source,
		Rows:            r.TableRowCount,
		TotalIssues:     r.TotalIssues(),
		High:            r.CountBySeverity(model.SeverityHigh),
		Medium:          r.CountBySeverity(model.SeverityMedium),
		Low:             r.CountBySeverity(model.SeverityLow),
		DuplicateGroups: len(r.DuplicateGroups),
		OverallSeverity: r.OverallSeverity.String(),
	}
}

// weighted returns the severity-weighted issue score.
func (q fileQuality) weighted() int {
	return q.High*weightHigh + q.Medium*weightMedium + q.Low*weightLow
}

// qualityDelta is the comparison result between two analyses.
type qualityDelta struct {
	// Before and After summarize the two analyses in argument order.
	Before fileQuality `json:"before"`
	After  fileQuality `json:"after"`

	// Direction is the verdict: improved, worsened, or unchanged.
	Direction string `json:"direction"`

	// WeightedChange is the after-minus-before severity-weighted score.
	// Negative values mean quality improved.
	WeightedChange int `json:"weighted_change"`
}

// newQualityDelta compares two completed analyses.
func newQualityDelta(before, after *pipeline.Analysis) *qualityDelta {
	d := &qualityDelta{
		Before: newFileQuality(before),
		After:  newFileQuality(after),
	}

	d.WeightedChange = d.After.weighted() - d.Before.weighted()
	switch {
	case d.WeightedChange < 0:
		d.Direction = directionImproved
	case d.WeightedChange > 0:
		d.Direction = directionWorsened
	default:
		d.Direction = directionUnchanged
	}

	return d
}

// writeJSON outputs the delta as indented JSON.
func (d *qualityDelta) writeJSON(output *os.File) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(d)
}

// writeMarkdown outputs the delta as a Markdown document.
func (d *qualityDelta) writeMarkdown(output *os.File) error {
	md := markdown.NewMarkdown(output)

	md.H1("CRM Data Quality Comparison")
	md.PlainText("")

	rows := [][]string{
		{"File", d.Before.Source, d.After.Source},
		{"Rows", strconv.Itoa(d.Before.Rows), strconv.Itoa(d.After.Rows)},
		{"Total issues", strconv.Itoa(d.Before.TotalIssues), strconv.Itoa(d.After.TotalIssues)},
		{"High", strconv.Itoa(d.Before.High), strconv.Itoa(d.After.High)},
		{"Medium", strconv.Itoa(d.Before.Medium), strconv.Itoa(d.After.Medium)},
		{"Low", strconv.Itoa(d.Before.Low), strconv.Itoa(d.After.Low)},
		{"Duplicate groups", strconv.Itoa(d.Before.DuplicateGroups), strconv.Itoa(d.After.DuplicateGroups)},
		{"Overall severity", d.Before.OverallSeverity, d.After.OverallSeverity},
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Before", "After"},
		Rows:   rows,
	})

	md.H2("Verdict")
	md.PlainTextf("Data quality **%s** (weighted change: %+d).", d.Direction, d.WeightedChange)

	return md.Build()
}

// writeText outputs the delta as a plain-text table.
func (d *qualityDelta) writeText(output *os.File) error {
	fmt.Fprintf(output, "Data quality comparison\n")
	fmt.Fprintf(output, "  before: %s (%d rows)\n", d.Before.Source, d.Before.Rows)
	fmt.Fprintf(output, "  after:  %s (%d rows)\n\n", d.After.Source, d.After.Rows)

	fmt.Fprintf(output, "  %-18s %10s %10s %10s\n", "", "before", "after", "change")
	writeCountLine(output, "total issues", d.Before.TotalIssues, d.After.TotalIssues)
	writeCountLine(output, "high", d.Before.High, d.After.High)
	writeCountLine(output, "medium", d.Before.Medium, d.After.Medium)
	writeCountLine(output, "low", d.Before.Low, d.After.Low)
	writeCountLine(output, "duplicate groups", d.Before.DuplicateGroups, d.After.DuplicateGroups)

	fmt.Fprintf(output, "\nVerdict: %s (weighted change: %+d)\n", d.Direction, d.WeightedChange)
	return nil
}

// writeCountLine prints one before/after/change row of the text table.
func writeCountLine(output *os.File, label string, before, after int) {
	fmt.Fprintf(output, "  %-18s %10d %10d %+10d\n", label, before, after, after-before)
}
