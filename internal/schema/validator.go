package schema

import (
	"fmt"

	"github.com/nao1215/crmscan/internal/model"
)

// Default limits for table shape. They mirror what a CRM export
// realistically needs; anything larger points at the wrong tool being
// used for the job.
const (
	// DefaultMaxRows is the maximum number of data rows accepted.
	DefaultMaxRows = 10000
	// DefaultMaxColumns is the maximum number of columns accepted.
	DefaultMaxColumns = 256
)

// Validator checks that a parsed header and row set form an acceptable
// table. The zero value is not usable; construct with NewValidator.
type Validator struct {
	requiredColumns []string
	maxRows         int
	maxColumns      int
}

// Option configures a Validator.
type Option func(*Validator)

// WithRequiredColumns sets the column names that must be present in the
// header. Order is preserved in error reporting.
func WithRequiredColumns(columns []string) Option {
	return func(v *Validator) {
		v.requiredColumns = columns
	}
}

// WithMaxRows overrides the maximum number of data rows.
func WithMaxRows(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxRows = n
		}
	}
}

// WithMaxColumns overrides the maximum number of columns.
func WithMaxColumns(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxColumns = n
		}
	}
}

// NewValidator creates a Validator with the given options applied over
// the defaults.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		maxRows:    DefaultMaxRows,
		maxColumns: DefaultMaxColumns,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the structural checks and builds an immutable table.
//
// Checks run in a fixed order and the first failure is returned:
// empty table, duplicate column names, too many columns, too many rows,
// missing required columns. A nil error means the table is structurally
// sound and every quality rule can assume a consistent shape.
func (v *Validator) Validate(header []string, rows [][]string) (*model.Table, error) {
	if len(header) == 0 || len(rows) == 0 {
		return nil, model.NewEmptyTableError()
	}

	if dups := duplicateNames(header); len(dups) > 0 {
		return nil, model.NewDuplicateColumnsError(dups)
	}

	if len(header) > v.maxColumns {
		return nil, model.NewTooManyColumnsError(len(header), v.maxColumns)
	}

	if len(rows) > v.maxRows {
		return nil, model.NewTooManyRowsError(len(rows), v.maxRows)
	}

	if missing := missingNames(header, v.requiredColumns); len(missing) > 0 {
		return nil, model.NewMissingRequiredColumnsError(missing)
	}

	table, err := model.NewTable(header, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build table: %w", err)
	}
	return table, nil
}

// duplicateNames returns column names that appear more than once, in
// first-occurrence order, each listed once.
func duplicateNames(header []string) []string {
	seen := make(map[string]int, len(header))
	var dups []string
	for _, name := range header {
		seen[name]++
		if seen[name] == 2 {
			dups = append(dups, name)
		}
	}
	return dups
}

// missingNames returns required column names absent from the header,
// preserving the configured order.
func missingNames(header, required []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, name := range header {
		present[name] = struct{}{}
	}

	var missing []string
	for _, name := range required {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
