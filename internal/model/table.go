package model

import (
	"errors"
	"fmt"
)

// Table construction errors. The schema validator performs its ordered
// structural checks before calling NewTable, so these only surface when a
// caller bypasses validation.
var (
	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("model: duplicate column name")

	// ErrColumnCountMismatch is returned when a row's cell count differs
	// from the table's column count.
	ErrColumnCountMismatch = errors.New("model: row width does not match column count")
)

// Table is an ordered sequence of records sharing a fixed column schema.
//
// Invariants, enforced at construction and never broken afterward:
//   - column names are unique
//   - every record has exactly the table's columns, in the same order
//
// Design decision: The table copies its inputs and exposes values only
// through accessors because detectors must never mutate the data under
// analysis ("no data modified"). Reports reference records by row index
// only, so sharing one immutable table between detectors is safe without
// locking.
type Table struct {
	columns  []string
	colIndex map[string]int
	rows     [][]string
}

// NewTable builds an immutable Table from a header and data rows.
// Inputs are deep-copied; the caller's slices remain untouched and
// subsequent changes to them do not affect the table.
func NewTable(columns []string, rows [][]string) (*Table, error) {
	colIndex := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, ok := colIndex[name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		colIndex[name] = i
	}

	copied := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d",
				ErrColumnCountMismatch, i, len(row), len(columns))
		}
		copied[i] = make([]string, len(row))
		copy(copied[i], row)
	}

	cols := make([]string, len(columns))
	copy(cols, columns)

	return &Table{
		columns:  cols,
		colIndex: colIndex,
		rows:     copied,
	}, nil
}

// Columns returns a copy of the ordered column names.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colIndex[name]
	return ok
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.colIndex[name]
	return i, ok
}

// Cell returns the raw value at the given row and column name.
// The second return value is false if the row or column does not exist.
func (t *Table) Cell(row int, column string) (string, bool) {
	if row < 0 || row >= len(t.rows) {
		return "", false
	}
	i, ok := t.colIndex[column]
	if !ok {
		return "", false
	}
	return t.rows[row][i], true
}

// Record returns a read-only view of the row at the given index.
// The boolean is false if the index is out of range.
func (t *Table) Record(index int) (Record, bool) {
	if index < 0 || index >= len(t.rows) {
		return Record{}, false
	}
	return Record{table: t, index: index}, true
}

// Records returns read-only views of all rows in table order.
// Views are cheap; no row data is copied.
func (t *Table) Records() []Record {
	records := make([]Record, len(t.rows))
	for i := range t.rows {
		records[i] = Record{table: t, index: i}
	}
	return records
}

// Record is a read-only view of one table row: an ordered mapping from
// column name to raw cell value. The zero Record is invalid; obtain records
// from a Table.
type Record struct {
	table *Table
	index int
}

// Index returns the zero-based position of the record in its table.
func (r Record) Index() int {
	return r.index
}

// Get returns the raw cell value for the named column.
// The second return value is false if the column does not exist.
func (r Record) Get(column string) (string, bool) {
	if r.table == nil {
		return "", false
	}
	i, ok := r.table.colIndex[column]
	if !ok {
		return "", false
	}
	return r.table.rows[r.index][i], true
}

// Value returns the raw cell value at the given column position, or the
// empty string if the position is out of range.
func (r Record) Value(column int) string {
	if r.table == nil || column < 0 || column >= len(r.table.columns) {
		return ""
	}
	return r.table.rows[r.index][column]
}

// Values returns a copy of the record's cells in column order.
func (r Record) Values() []string {
	if r.table == nil {
		return nil
	}
	values := make([]string, len(r.table.columns))
	copy(values, r.table.rows[r.index])
	return values
}
