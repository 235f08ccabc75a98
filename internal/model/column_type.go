package model

import "fmt"

// ColumnType selects the format rule set a column's cells are checked
// against. The mapping from column name to type is explicit configuration
// (optionally seeded from name heuristics by the host), never inferred
// inside the detectors, so detection stays deterministic regardless of
// header naming conventions.
type ColumnType string

const (
	// ColumnTypeEmail columns are matched against email address syntax.
	ColumnTypeEmail ColumnType = "email"

	// ColumnTypePhone columns are matched against a normalized digit-count
	// rule.
	ColumnTypePhone ColumnType = "phone"

	// ColumnTypeMonetary columns must parse as numbers and be non-negative.
	ColumnTypeMonetary ColumnType = "monetary"

	// ColumnTypeDate columns must parse in one of the accepted date
	// layouts.
	ColumnTypeDate ColumnType = "date"

	// ColumnTypeText columns are free text checked against the minimum
	// length threshold.
	ColumnTypeText ColumnType = "text"

	// ColumnTypeUnknown columns are checked only for missing-value and
	// short-text conditions.
	ColumnTypeUnknown ColumnType = "unknown"
)

// ParseColumnType validates a configured column type string.
// The empty string maps to ColumnTypeUnknown.
func ParseColumnType(s string) (ColumnType, error) {
	switch ColumnType(s) {
	case ColumnTypeEmail, ColumnTypePhone, ColumnTypeMonetary,
		ColumnTypeDate, ColumnTypeText, ColumnTypeUnknown:
		return ColumnType(s), nil
	case "":
		return ColumnTypeUnknown, nil
	default:
		return ColumnTypeUnknown, fmt.Errorf("unknown column type %q", s)
	}
}
