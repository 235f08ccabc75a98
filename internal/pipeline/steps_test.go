package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/crmscan/internal/config"
	"github.com/nao1215/crmscan/internal/csvio"
	"github.com/nao1215/crmscan/internal/model"
)

// newTestAnalysis builds an analysis whose table is already validated.
func newTestAnalysis(t *testing.T, header []string, rows [][]string) *Analysis {
	t.Helper()

	table, err := model.NewTable(header, rows)
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}

	a := NewAnalysisFromData("test.csv", header, rows)
	a.Table = table
	return a
}

// mockGenerator is a test helper that implements ExplanationGenerator.
type mockGenerator struct {
	generateFunc func(ctx context.Context, report *model.QualityReport) (string, error)
}

// Generate implements ExplanationGenerator.Generate.
func (m *mockGenerator) Generate(ctx context.Context, report *model.QualityReport) (string, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, report)
	}
	return "", nil
}

// TestReadStep tests the CSV reading step.
func TestReadStep(t *testing.T) {
	t.Parallel()

	t.Run("reads csv file into the analysis", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "leads.csv")
		content := "Email,Phone\njohn@acme.com,555-123-4567\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test csv: %v", err)
		}

		a := NewAnalysis(path)
		step := NewReadStep()

		if err := step.Do(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(a.Header) != 2 {
			t.Errorf("expected 2 header columns, got %d", len(a.Header))
		}
		if len(a.Rows) != 1 {
			t.Errorf("expected 1 row, got %d", len(a.Rows))
		}
	})

	t.Run("skips when rows are already loaded", func(t *testing.T) {
		t.Parallel()

		header := []string{"Email"}
		rows := [][]string{{"a@b.com"}}
		a := NewAnalysisFromData("/nonexistent/leads.csv", header, rows)

		step := NewReadStep()
		if err := step.Do(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(a.Rows) != 1 {
			t.Errorf("expected seeded rows to survive, got %d rows", len(a.Rows))
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		t.Parallel()

		a := NewAnalysis("/nonexistent/leads.csv")
		step := NewReadStep()

		if err := step.Do(context.Background(), a); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("step name is read", func(t *testing.T) {
		t.Parallel()

		if got := NewReadStep().Name(); got != "read" {
			t.Errorf("expected name 'read', got %q", got)
		}
	})
}

// TestValidateStep tests the schema validation step.
func TestValidateStep(t *testing.T) {
	t.Parallel()

	t.Run("builds the table for valid input", func(t *testing.T) {
		t.Parallel()

		a := NewAnalysisFromData("leads.csv",
			[]string{"Email", "Phone"},
			[][]string{{"john@acme.com", "555-123-4567"}},
		)

		step := NewValidateStep()
		if err := step.Do(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Table == nil {
			t.Fatal("expected table to be set")
		}
		if a.Table.RowCount() != 1 {
			t.Errorf("expected 1 row, got %d", a.Table.RowCount())
		}
	})

	t.Run("rejects empty table", func(t *testing.T) {
		t.Parallel()

		a := NewAnalysisFromData("leads.csv", []string{"Email"}, nil)

		step := NewValidateStep()
		err := step.Do(context.Background(), a)
		if err == nil {
			t.Fatal("expected error for empty table")
		}

		se, ok := model.AsStructural(err)
		if !ok {
			t.Fatalf("expected structural error, got %v", err)
		}
		if se.Kind != model.StructuralEmptyTable {
			t.Errorf("expected EmptyTable, got %s", se.Kind)
		}
	})

	t.Run("rejects missing required columns", func(t *testing.T) {
		t.Parallel()

		a := NewAnalysisFromData("leads.csv",
			[]string{"Email"},
			[][]string{{"john@acme.com"}},
		)

		step := NewValidateStep(WithValidateRequiredColumns([]string{"Lead_ID"}))
		err := step.Do(context.Background(), a)
		if err == nil {
			t.Fatal("expected error for missing required column")
		}

		se, ok := model.AsStructural(err)
		if !ok {
			t.Fatalf("expected structural error, got %v", err)
		}
		if se.Kind != model.StructuralMissingRequiredColumns {
			t.Errorf("expected MissingRequiredColumns, got %s", se.Kind)
		}
	})

	t.Run("rejects tables above the row limit", func(t *testing.T) {
		t.Parallel()

		a := NewAnalysisFromData("leads.csv",
			[]string{"Email"},
			[][]string{{"a@b.com"}, {"c@d.com"}},
		)

		step := NewValidateStep(WithValidateMaxRows(1))
		err := step.Do(context.Background(), a)
		if err == nil {
			t.Fatal("expected error for too many rows")
		}

		se, ok := model.AsStructural(err)
		if !ok {
			t.Fatalf("expected structural error, got %v", err)
		}
		if se.Kind != model.StructuralTooManyRows {
			t.Errorf("expected TooManyRows, got %s", se.Kind)
		}
	})

	t.Run("step name is validate", func(t *testing.T) {
		t.Parallel()

		if got := NewValidateStep().Name(); got != "validate" {
			t.Errorf("expected name 'validate', got %q", got)
		}
	})
}

// TestFieldIssueStep tests the per-cell rule step.
func TestFieldIssueStep(t *testing.T) {
	t.Parallel()

	t.Run("infers column types from names", func(t *testing.T) {
		t.Parallel()

		a := newTestAnalysis(t,
			[]string{"Email", "Deal_Amount"},
			[][]string{{"bad-email", "-50"}},
		)

		step := NewFieldIssueStep()
		if err := step.Do(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(a.FieldIssues) != 2 {
			t.Fatalf("expected 2 issues, got %d: %v", len(a.FieldIssues), a.FieldIssues)
		}
		if a.FieldIssues[0].Column != "Email" || a.FieldIssues[0].Kind != model.KindInvalidFormat {
			t.Errorf("unexpected first issue: %+v", a.FieldIssues[0])
		}
		if a.FieldIssues[1].Column != "Deal_Amount" || a.FieldIssues[1].Kind != model.KindInvalidRange {
			t.Errorf("unexpected second issue: %+v", a.FieldIssues[1])
		}
	})

	t.Run("uses explicit column types when configured", func(t *testing.T) {
		t.Parallel()

		a := newTestAnalysis(t,
			[]string{"Contact", "Code"},
			[][]string{{"not-an-email", "X"}},
		)

		step := NewFieldIssueStep(WithFieldColumnTypes(map[string]model.ColumnType{
			"Contact": model.ColumnTypeEmail,
		}))
		if err := step.Do(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(a.FieldIssues) != 2 {
			t.Fatalf("expected 2 issues, got %d: %v", len(a.FieldIssues), a.FieldIssues)
		}
		if a.FieldIssues[0].Column != "Contact" || a.FieldIssues[0].Kind != model.KindInvalidFormat {
			t.Errorf("unexpected first issue: %+v", a.FieldIssues[0])
		}
		if a.FieldIssues[1].Column != "Code" || a.FieldIssues[1].Kind != model.KindShortText {
			t.Errorf("unexpected second issue: %+v", a.FieldIssues[1])
		}
	})

	t.Run("reports missing values in required columns", func(t *testing.T) {
		t.Parallel()

		a := newTestAnalysis(t,
			[]string{"Email", "Notes"},
			[][]string{{"", "hello there"}},
		)

		step := NewFieldIssueStep(WithFieldRequiredColumns([]string{"Email"}))
		if err := step.Do(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(a.FieldIssues) != 1 {
			t.Fatalf("expected 1 issue, got %d: %v", len(a.FieldIssues), a.FieldIssues)
		}
		if a.FieldIssues[0].Kind != model.KindMissingValue {
			t.Errorf("expected MissingValue, got %s", a.FieldIssues[0].Kind)
		}
	})

	t.Run("requires a validated table", func(t *testing.T) {
		t.Parallel()

		a := NewAnalysis("leads.csv")
		step := NewFieldIssueStep()

		err := step.Do(context.Background(), a)
		if !errors.Is(err, ErrTableNotValidated) {
			t.Errorf("expected ErrTableNotValidated, got %v", err)
		}
	})

	t.Run("step name is field_issues", func(t *testing.T) {
		t.Parallel()

		if got := NewFieldIssueStep().Name(); got != "field_issues" {
			t.Errorf("expected name 'field_issues', got %q", got)
		}
	})
}

// TestDuplicateStep tests the duplicate detection step.
func TestDuplicateStep(t *testing.T) {
	t.Parallel()

	t.Run("groups case-folded exact duplicates with inferred columns", func(t *testing.T) {
		t.Parallel()

		a := newTestAnalysis(t,
			[]string{"Company_Name", "Email"},
			[][]string{
				{"Acme Corp", "john@acme.com"},
				{"TechStart", "sarah@techstart.com"},
				{"ACME CORP", "JOHN@ACME.COM"},
			},
		)

		step := NewDuplicateStep()
		if err := step.Do(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(a.DuplicateGroups) != 1 {
			t.Fatalf("expected 1 group, got %d: %v", len(a.DuplicateGroups), a.DuplicateGroups)
		}
		group := a.DuplicateGroups[0]
		if group.Kind != model.KindDuplicateExact {
			t.Errorf("expected exact group, got %s", group.Kind)
		}
		if len(group.RowIndices) != 2 || group.RowIndices[0] != 0 || group.RowIndices[1] != 2 {
			t.Errorf("expected rows [0 2], got %v", group.RowIndices)
		}
		if len(a.DuplicateIssues) != 2 {
			t.Errorf("expected 2 duplicate issues, got %d", len(a.DuplicateIssues))
		}
	})

	t.Run("explicit identifying columns narrow the signature", func(t *testing.T) {
		t.Parallel()

		header := []string{"Company_Name", "Email"}
		rows := [][]string{
			{"Acme Corp", "john@acme.com"},
			{"Acme Holdings", "john@acme.com"},
		}

		// Inferred columns include the company name, so the rows differ
		inferred := newTestAnalysis(t, header, rows)
		if err := NewDuplicateStep().Do(context.Background(), inferred); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(inferred.DuplicateGroups) != 0 {
			t.Errorf("expected no groups with inferred columns, got %v", inferred.DuplicateGroups)
		}

		// Narrowing to the email column makes the rows identical
		narrowed := newTestAnalysis(t, header, rows)
		step := NewDuplicateStep(WithDuplicateIdentifyingColumns([]string{"Email"}))
		if err := step.Do(context.Background(), narrowed); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(narrowed.DuplicateGroups) != 1 {
			t.Fatalf("expected 1 group with narrowed columns, got %d", len(narrowed.DuplicateGroups))
		}
		if narrowed.DuplicateGroups[0].Kind != model.KindDuplicateExact {
			t.Errorf("expected exact group, got %s", narrowed.DuplicateGroups[0].Kind)
		}
	})

	t.Run("requires a validated table", func(t *testing.T) {
		t.Parallel()

		a := NewAnalysis("leads.csv")
		step := NewDuplicateStep()

		err := step.Do(context.Background(), a)
		if !errors.Is(err, ErrTableNotValidated) {
			t.Errorf("expected ErrTableNotValidated, got %v", err)
		}
	})

	t.Run("step name is duplicates", func(t *testing.T) {
		t.Parallel()

		if got := NewDuplicateStep().Name(); got != "duplicates" {
			t.Errorf("expected name 'duplicates', got %q", got)
		}
	})
}

// TestAssembleStep tests the report assembly step.
func TestAssembleStep(t *testing.T) {
	t.Parallel()

	t.Run("assembles detection results into a report", func(t *testing.T) {
		t.Parallel()

		a := newTestAnalysis(t,
			[]string{"Email", "Phone"},
			[][]string{
				{"john@acme.com", "555-123-4567"},
				{"john@acme.com", "555-123-4567"},
			},
		)
		a.FieldIssues = []model.Issue{
			model.NewIssue(0, "Email", model.KindInvalidFormat, "bad format"),
		}
		a.DuplicateGroups = []model.DuplicateGroup{
			{Kind: model.KindDuplicateExact, RowIndices: []int{0, 1}, Similarity: 1},
		}
		a.DuplicateIssues = []model.Issue{
			model.NewRecordIssue(0, model.KindDuplicateExact, "exact duplicate"),
			model.NewRecordIssue(1, model.KindDuplicateExact, "exact duplicate"),
		}

		step := NewAssembleStep()
		if err := step.Do(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if a.Report == nil {
			t.Fatal("expected report to be set")
		}
		if a.Report.TotalIssues() != 3 {
			t.Errorf("expected 3 issues, got %d", a.Report.TotalIssues())
		}
		if a.Report.TableRowCount != 2 {
			t.Errorf("expected 2 rows, got %d", a.Report.TableRowCount)
		}
		if a.Report.OverallSeverity != model.SeverityHigh {
			t.Errorf("expected High severity, got %s", a.Report.OverallSeverity)
		}
		// Field issues come before duplicate issues
		if a.Report.Issues[0].Kind != model.KindInvalidFormat {
			t.Errorf("expected field issue first, got %s", a.Report.Issues[0].Kind)
		}
		if a.Report.Issues[1].Kind != model.KindDuplicateExact {
			t.Errorf("expected duplicate issue second, got %s", a.Report.Issues[1].Kind)
		}
	})

	t.Run("requires a validated table", func(t *testing.T) {
		t.Parallel()

		a := NewAnalysis("leads.csv")
		step := NewAssembleStep()

		err := step.Do(context.Background(), a)
		if !errors.Is(err, ErrTableNotValidated) {
			t.Errorf("expected ErrTableNotValidated, got %v", err)
		}
	})

	t.Run("step name is assemble", func(t *testing.T) {
		t.Parallel()

		if got := NewAssembleStep().Name(); got != "assemble" {
			t.Errorf("expected name 'assemble', got %q", got)
		}
	})
}

// TestExplainStep tests the explanation step.
func TestExplainStep(t *testing.T) {
	t.Parallel()

	t.Run("stores the generated explanation", func(t *testing.T) {
		t.Parallel()

		var received *model.QualityReport
		generator := &mockGenerator{
			generateFunc: func(_ context.Context, report *model.QualityReport) (string, error) {
				received = report
				return "Two records are exact duplicates.", nil
			},
		}

		a := NewAnalysis("leads.csv")
		a.Report = &model.QualityReport{TableRowCount: 2}

		step := NewExplainStep(generator)
		if err := step.Do(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Explanation != "Two records are exact duplicates." {
			t.Errorf("unexpected explanation: %q", a.Explanation)
		}
		if received != a.Report {
			t.Error("expected generator to receive the assembled report")
		}
	})

	t.Run("generation failure leaves the report standing", func(t *testing.T) {
		t.Parallel()

		generator := &mockGenerator{
			generateFunc: func(_ context.Context, _ *model.QualityReport) (string, error) {
				return "", errors.New("rate limited")
			},
		}

		a := NewAnalysis("leads.csv")
		a.Report = &model.QualityReport{}

		step := NewExplainStep(generator)
		if err := step.Do(context.Background(), a); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
		if a.Explanation != "" {
			t.Errorf("expected empty explanation, got %q", a.Explanation)
		}
	})

	t.Run("bounds the generation with a timeout", func(t *testing.T) {
		t.Parallel()

		generator := &mockGenerator{
			generateFunc: func(ctx context.Context, _ *model.QualityReport) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			},
		}

		a := NewAnalysis("leads.csv")
		a.Report = &model.QualityReport{}

		step := NewExplainStep(generator, WithExplainTimeout(10*time.Millisecond))
		if err := step.Do(context.Background(), a); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
		if a.Explanation != "" {
			t.Errorf("expected empty explanation, got %q", a.Explanation)
		}
	})

	t.Run("skips when no report was assembled", func(t *testing.T) {
		t.Parallel()

		called := false
		generator := &mockGenerator{
			generateFunc: func(_ context.Context, _ *model.QualityReport) (string, error) {
				called = true
				return "text", nil
			},
		}

		a := NewAnalysis("leads.csv")
		step := NewExplainStep(generator)

		if err := step.Do(context.Background(), a); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
		if called {
			t.Error("generator should not have been called")
		}
	})

	t.Run("skips when no generator is configured", func(t *testing.T) {
		t.Parallel()

		a := NewAnalysis("leads.csv")
		a.Report = &model.QualityReport{}

		step := NewExplainStep(nil)
		if err := step.Do(context.Background(), a); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("step name is explain", func(t *testing.T) {
		t.Parallel()

		if got := NewExplainStep(nil).Name(); got != "explain" {
			t.Errorf("expected name 'explain', got %q", got)
		}
	})
}

// TestDefaultPipelineConfig tests the DefaultPipelineConfig option functions.
func TestDefaultPipelineConfig(t *testing.T) {
	t.Parallel()

	t.Run("WithPipelineRequiredColumns sets required columns", func(t *testing.T) {
		t.Parallel()

		cfg := &DefaultPipelineConfig{}
		opt := WithPipelineRequiredColumns([]string{"Email", "Phone"})
		opt(cfg)

		if len(cfg.RequiredColumns) != 2 {
			t.Errorf("expected 2 required columns, got %d", len(cfg.RequiredColumns))
		}
	})

	t.Run("WithPipelineColumnTypes sets column types", func(t *testing.T) {
		t.Parallel()

		cfg := &DefaultPipelineConfig{}
		opt := WithPipelineColumnTypes(map[string]model.ColumnType{
			"Email": model.ColumnTypeEmail,
		})
		opt(cfg)

		if cfg.ColumnTypes["Email"] != model.ColumnTypeEmail {
			t.Errorf("expected Email type, got %v", cfg.ColumnTypes)
		}
	})

	t.Run("WithPipelineIdentifyingColumns sets identifying columns", func(t *testing.T) {
		t.Parallel()

		cfg := &DefaultPipelineConfig{}
		opt := WithPipelineIdentifyingColumns([]string{"Email"})
		opt(cfg)

		if len(cfg.IdentifyingColumns) != 1 || cfg.IdentifyingColumns[0] != "Email" {
			t.Errorf("unexpected identifying columns: %v", cfg.IdentifyingColumns)
		}
	})

	t.Run("WithPipelineThreshold sets threshold", func(t *testing.T) {
		t.Parallel()

		cfg := &DefaultPipelineConfig{}
		opt := WithPipelineThreshold(0.9)
		opt(cfg)

		if cfg.Threshold != 0.9 {
			t.Errorf("expected threshold 0.9, got %v", cfg.Threshold)
		}
	})

	t.Run("WithPipelineMaxRows sets max rows", func(t *testing.T) {
		t.Parallel()

		cfg := &DefaultPipelineConfig{}
		opt := WithPipelineMaxRows(500)
		opt(cfg)

		if cfg.MaxRows != 500 {
			t.Errorf("expected max rows 500, got %d", cfg.MaxRows)
		}
	})

	t.Run("WithPipelineMaxColumns sets max columns", func(t *testing.T) {
		t.Parallel()

		cfg := &DefaultPipelineConfig{}
		opt := WithPipelineMaxColumns(30)
		opt(cfg)

		if cfg.MaxColumns != 30 {
			t.Errorf("expected max columns 30, got %d", cfg.MaxColumns)
		}
	})

	t.Run("WithPipelineMinTextLength sets min text length", func(t *testing.T) {
		t.Parallel()

		cfg := &DefaultPipelineConfig{}
		opt := WithPipelineMinTextLength(3)
		opt(cfg)

		if cfg.MinTextLength != 3 {
			t.Errorf("expected min text length 3, got %d", cfg.MinTextLength)
		}
	})
}

// TestOptionsFromConfig tests conversion from a resolved configuration
// into pipeline config options.
func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("nil config yields no options", func(t *testing.T) {
		t.Parallel()

		if opts := OptionsFromConfig(nil); opts != nil {
			t.Errorf("expected nil options, got %d", len(opts))
		}
	})

	t.Run("defaults yield only the always-set limits", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		opts := OptionsFromConfig(cfg)

		// Threshold, MaxRows, MaxColumns, MinTextLength are non-zero in
		// a default config; the column settings are not.
		if len(opts) != 4 {
			t.Fatalf("expected 4 options, got %d", len(opts))
		}

		pipelineCfg := &DefaultPipelineConfig{}
		for _, opt := range opts {
			opt(pipelineCfg)
		}

		if pipelineCfg.Threshold != cfg.Threshold {
			t.Errorf("expected threshold %v, got %v", cfg.Threshold, pipelineCfg.Threshold)
		}
		if pipelineCfg.MaxRows != cfg.MaxRows {
			t.Errorf("expected max rows %d, got %d", cfg.MaxRows, pipelineCfg.MaxRows)
		}
		if len(pipelineCfg.RequiredColumns) != 0 {
			t.Errorf("expected no required columns, got %v", pipelineCfg.RequiredColumns)
		}
		if pipelineCfg.ColumnTypes != nil {
			t.Errorf("expected no column types, got %v", pipelineCfg.ColumnTypes)
		}
	})

	t.Run("column settings carry through", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.RequiredColumns = []string{"Email"}
		cfg.ColumnTypes = map[string]string{"Email": "email"}
		cfg.IdentifyingColumns = []string{"Email", "Phone"}

		pipelineCfg := &DefaultPipelineConfig{}
		for _, opt := range OptionsFromConfig(cfg) {
			opt(pipelineCfg)
		}

		if len(pipelineCfg.RequiredColumns) != 1 || pipelineCfg.RequiredColumns[0] != "Email" {
			t.Errorf("unexpected required columns: %v", pipelineCfg.RequiredColumns)
		}
		if pipelineCfg.ColumnTypes["Email"] != model.ColumnTypeEmail {
			t.Errorf("expected Email mapped to email type, got %v", pipelineCfg.ColumnTypes)
		}
		if len(pipelineCfg.IdentifyingColumns) != 2 {
			t.Errorf("unexpected identifying columns: %v", pipelineCfg.IdentifyingColumns)
		}
	})
}

// TestDefaultPipeline tests the assembled default pipeline.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("contains the detection steps in order", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(nil)

		expected := []string{"read", "validate", "field_issues", "duplicates", "assemble"}
		names := p.StepNames()
		if len(names) != len(expected) {
			t.Fatalf("expected %d steps, got %d: %v", len(expected), len(names), names)
		}
		for i, name := range names {
			if name != expected[i] {
				t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
			}
		}
	})

	t.Run("analyzes the bundled sample end to end", func(t *testing.T) {
		t.Parallel()

		header, rows, err := csvio.ReadAll(csvio.SampleReader())
		if err != nil {
			t.Fatalf("failed to parse sample: %v", err)
		}

		a := NewAnalysisFromData("sample.csv", header, rows)
		p := DefaultPipeline(nil)

		if err := p.Execute(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Report == nil {
			t.Fatal("expected report to be assembled")
		}
		if a.Report.TableRowCount != 15 {
			t.Errorf("expected 15 rows, got %d", a.Report.TableRowCount)
		}
		if a.Report.TableColumnCount != 10 {
			t.Errorf("expected 10 columns, got %d", a.Report.TableColumnCount)
		}
		if !a.Report.HasIssues() {
			t.Fatal("expected sample to contain issues")
		}
		if a.Report.OverallSeverity != model.SeverityHigh {
			t.Errorf("expected High severity, got %s", a.Report.OverallSeverity)
		}

		// The sample repeats lead 1 verbatim as lead 4, and lead 15 repeats
		// lead 2 with the email case-shifted and a .com suffix added.
		if len(a.Report.DuplicateGroups) != 2 {
			t.Fatalf("expected 2 duplicate groups, got %d: %v",
				len(a.Report.DuplicateGroups), a.Report.DuplicateGroups)
		}
		exact := a.Report.DuplicateGroups[0]
		if exact.Kind != model.KindDuplicateExact {
			t.Errorf("expected exact group first, got %s", exact.Kind)
		}
		if len(exact.RowIndices) != 2 || exact.RowIndices[0] != 0 || exact.RowIndices[1] != 3 {
			t.Errorf("expected exact rows [0 3], got %v", exact.RowIndices)
		}
		near := a.Report.DuplicateGroups[1]
		if near.Kind != model.KindDuplicateNear {
			t.Errorf("expected near group second, got %s", near.Kind)
		}
		if len(near.RowIndices) != 2 || near.RowIndices[0] != 1 || near.RowIndices[1] != 14 {
			t.Errorf("expected near rows [1 14], got %v", near.RowIndices)
		}
		if near.Similarity < 0.85 || near.Similarity >= 1 {
			t.Errorf("expected near similarity in [0.85, 1), got %v", near.Similarity)
		}

		// Known defects planted in the sample
		foundBadEmail := false
		foundNegativeAmount := false
		for _, issue := range a.Report.Issues {
			if issue.RowIndex == 1 && issue.Column == "Email" && issue.Kind == model.KindInvalidFormat {
				foundBadEmail = true
			}
			if issue.RowIndex == 5 && issue.Column == "Deal_Amount" && issue.Kind == model.KindInvalidRange {
				foundNegativeAmount = true
			}
		}
		if !foundBadEmail {
			t.Error("expected invalid email issue for row 1")
		}
		if !foundNegativeAmount {
			t.Error("expected negative amount issue for row 5")
		}
	})

	t.Run("surfaces structural errors from the validate step", func(t *testing.T) {
		t.Parallel()

		a := NewAnalysisFromData("leads.csv",
			[]string{"Email"},
			[][]string{{"john@acme.com"}},
		)

		p := DefaultPipeline(nil, WithPipelineRequiredColumns([]string{"Lead_ID"}))
		err := p.Execute(context.Background(), a)
		if err == nil {
			t.Fatal("expected structural error")
		}

		se, ok := model.AsStructural(err)
		if !ok {
			t.Fatalf("expected structural error, got %v", err)
		}
		if se.Kind != model.StructuralMissingRequiredColumns {
			t.Errorf("expected MissingRequiredColumns, got %s", se.Kind)
		}
		if a.Report != nil {
			t.Error("expected no report after structural failure")
		}
		if a.Err == nil {
			t.Error("expected error to be recorded in the analysis")
		}
	})

	t.Run("config options reach the steps", func(t *testing.T) {
		t.Parallel()

		// Lower the row cap so a two-row table is rejected
		a := NewAnalysisFromData("leads.csv",
			[]string{"Email"},
			[][]string{{"a@b.com"}, {"c@d.com"}},
		)

		p := DefaultPipeline(nil, WithPipelineMaxRows(1))
		err := p.Execute(context.Background(), a)

		se, ok := model.AsStructural(err)
		if !ok {
			t.Fatalf("expected structural error, got %v", err)
		}
		if se.Kind != model.StructuralTooManyRows {
			t.Errorf("expected TooManyRows, got %s", se.Kind)
		}
	})
}

// TestPipelineIssueAccounting tests that a table with one missing email
// and one verbatim duplicate pair yields exactly the expected issues.
func TestPipelineIssueAccounting(t *testing.T) {
	t.Parallel()

	header := []string{"Contact_Name", "Email", "Company"}
	rows := [][]string{
		{"John Smith", "john@acme.com", "Acme Corp"},
		{"Sarah Johnson", "sarah@techstart.com", "TechStart"},
		{"Mike Brown", "", "Global Foods"},
		{"Amy Chen", "amy@smart.com", "Smart Solutions"},
		{"John Smith", "john@acme.com", "Acme Corp"},
	}

	a := NewAnalysisFromData("leads.csv", header, rows)
	p := DefaultPipeline(nil, WithPipelineRequiredColumns([]string{"Email"}))

	if err := p.Execute(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One missing email, two exact duplicate flags, nothing else
	if got := a.Report.TotalIssues(); got != 3 {
		t.Fatalf("TotalIssues() = %d, want 3: %+v", got, a.Report.Issues)
	}

	var missing, exact []model.Issue
	for _, issue := range a.Report.Issues {
		switch issue.Kind {
		case model.KindMissingValue:
			missing = append(missing, issue)
		case model.KindDuplicateExact:
			exact = append(exact, issue)
		default:
			t.Errorf("unexpected issue kind %s: %+v", issue.Kind, issue)
		}
	}

	if len(missing) != 1 || missing[0].RowIndex != 2 || missing[0].Column != "Email" {
		t.Errorf("missing value issues = %+v, want one for row 2 column Email", missing)
	}
	if len(exact) != 2 {
		t.Fatalf("exact duplicate issues = %+v, want two", exact)
	}
	if exact[0].RowIndex != 0 || exact[1].RowIndex != 4 {
		t.Errorf("duplicate rows = [%d %d], want [0 4]", exact[0].RowIndex, exact[1].RowIndex)
	}
	if a.Report.OverallSeverity != model.SeverityHigh {
		t.Errorf("OverallSeverity = %s, want %s", a.Report.OverallSeverity, model.SeverityHigh)
	}

	// The merge preserves every detector issue
	if got := len(a.FieldIssues) + len(a.DuplicateIssues); got != a.Report.TotalIssues() {
		t.Errorf("field (%d) + duplicate (%d) issues != report total (%d)",
			len(a.FieldIssues), len(a.DuplicateIssues), a.Report.TotalIssues())
	}
}

// TestPipelineIdempotence tests that two runs over the same input
// serialize to byte-identical reports.
func TestPipelineIdempotence(t *testing.T) {
	t.Parallel()

	header, rows, err := csvio.ReadAll(csvio.SampleReader())
	if err != nil {
		t.Fatalf("failed to parse sample: %v", err)
	}

	run := func() []byte {
		a := NewAnalysisFromData("sample.csv", header, rows)
		p := DefaultPipeline(nil, WithPipelineRequiredColumns([]string{"Email", "Company_Name"}))
		if err := p.Execute(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := json.Marshal(a.Report)
		if err != nil {
			t.Fatalf("failed to marshal report: %v", err)
		}
		return data
	}

	first := run()
	second := run()
	if !bytes.Equal(first, second) {
		t.Errorf("reports differ between runs:\nfirst:  %s\nsecond: %s", first, second)
	}
}
