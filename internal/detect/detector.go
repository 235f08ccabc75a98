package detect

import (
	"strings"

	"github.com/nao1215/crmscan/internal/model"
)

// Detector applies per-cell quality rules to every cell of a table.
// The zero value is not usable; construct with NewDetector.
type Detector struct {
	columnTypes   map[string]model.ColumnType
	required      map[string]struct{}
	minTextLength int
	rules         map[model.ColumnType]Rule
}

// Option configures a Detector.
type Option func(*Detector)

// WithColumnTypes binds column names to column types. Columns without
// a binding are treated as unknown and checked with the text rule only.
func WithColumnTypes(types map[string]model.ColumnType) Option {
	return func(d *Detector) {
		for name, columnType := range types {
			d.columnTypes[name] = columnType
		}
	}
}

// WithRequiredColumns marks columns whose cells must not be empty.
// Empty cells in other columns are skipped silently.
func WithRequiredColumns(columns []string) Option {
	return func(d *Detector) {
		for _, name := range columns {
			d.required[name] = struct{}{}
		}
	}
}

// WithMinTextLength overrides the minimum rune count for free-text
// values.
func WithMinTextLength(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.minTextLength = n
		}
	}
}

// NewDetector creates a Detector with the given options applied.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		columnTypes:   make(map[string]model.ColumnType),
		required:      make(map[string]struct{}),
		minTextLength: DefaultMinTextLength,
	}
	for _, opt := range opts {
		opt(d)
	}

	textRule := NewTextRule(d.minTextLength)
	d.rules = map[model.ColumnType]Rule{
		model.ColumnTypeEmail:    NewEmailRule(),
		model.ColumnTypePhone:    NewPhoneRule(),
		model.ColumnTypeMonetary: NewMonetaryRule(),
		model.ColumnTypeDate:     NewDateRule(),
		model.ColumnTypeText:     textRule,
		model.ColumnTypeUnknown:  textRule,
	}
	return d
}

// Detect runs every applicable rule over every cell and returns the
// issues found. Iteration is row-major in header column order, so the
// result order is stable for a given table.
func (d *Detector) Detect(table *model.Table) []model.Issue {
	var issues []model.Issue
	columns := table.Columns()

	for row := 0; row < table.RowCount(); row++ {
		for _, column := range columns {
			value, _ := table.Cell(row, column)
			trimmed := strings.TrimSpace(value)

			if trimmed == "" {
				if _, ok := d.required[column]; ok {
					issues = append(issues, model.NewIssue(
						row, column, model.KindMissingValue,
						"missing value in required column"))
				}
				continue
			}

			rule, ok := d.rules[d.columnType(column)]
			if !ok {
				continue
			}
			if violation, bad := rule.Check(trimmed); bad {
				issues = append(issues, model.NewIssue(row, column, violation.Kind, violation.Detail))
			}
		}
	}
	return issues
}

// columnType resolves the configured type for a column, defaulting to
// unknown.
func (d *Detector) columnType(column string) model.ColumnType {
	if t, ok := d.columnTypes[column]; ok {
		return t
	}
	return model.ColumnTypeUnknown
}
