package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// StructuralErrorKind identifies which structural precondition failed.
type StructuralErrorKind int

const (
	// StructuralEmptyTable indicates the input has no data rows or no
	// columns at all.
	StructuralEmptyTable StructuralErrorKind = iota

	// StructuralMissingRequiredColumns indicates the header lacks one or
	// more configured required columns.
	StructuralMissingRequiredColumns

	// StructuralTooManyRows indicates the row count exceeds the configured
	// limit.
	StructuralTooManyRows

	// StructuralTooManyColumns indicates the column count exceeds the
	// configured limit.
	StructuralTooManyColumns

	// StructuralDuplicateColumns indicates the header repeats a column
	// name, violating schema uniqueness.
	StructuralDuplicateColumns

	// StructuralUnreadableEncoding indicates the input could not be decoded
	// as UTF-8 CSV at all.
	StructuralUnreadableEncoding
)

// String returns the canonical representation of the kind.
func (k StructuralErrorKind) String() string {
	switch k {
	case StructuralEmptyTable:
		return "EmptyTable"
	case StructuralMissingRequiredColumns:
		return "MissingRequiredColumns"
	case StructuralTooManyRows:
		return "TooManyRows"
	case StructuralTooManyColumns:
		return "TooManyColumns"
	case StructuralDuplicateColumns:
		return "DuplicateColumns"
	case StructuralUnreadableEncoding:
		return "UnreadableEncoding"
	default:
		return "Unknown"
	}
}

// MarshalJSON encodes the kind as its canonical string form.
func (k StructuralErrorKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// StructuralError reports an input table that failed a structural
// precondition. It is fatal to the analysis run: no issues are computed and
// the error is surfaced verbatim to the caller.
//
// This is the other half of the central error-handling contract: bad data
// in individual cells is expected and reported as Issues; an unprocessable
// request is rejected with a StructuralError before detection begins.
type StructuralError struct {
	// Kind identifies the failed precondition.
	Kind StructuralErrorKind `json:"kind"`

	// Columns carries the offending column names for
	// MissingRequiredColumns and DuplicateColumns.
	Columns []string `json:"columns,omitempty"`

	// Count is the observed row or column count for the limit kinds.
	Count int `json:"count,omitempty"`

	// Limit is the configured bound that was exceeded.
	Limit int `json:"limit,omitempty"`

	// Detail carries the decoder message for UnreadableEncoding.
	Detail string `json:"detail,omitempty"`
}

// Error implements the error interface with a stable, human-readable
// message per kind.
func (e *StructuralError) Error() string {
	switch e.Kind {
	case StructuralEmptyTable:
		return "structural error: empty table (no data rows or no columns)"
	case StructuralMissingRequiredColumns:
		return fmt.Sprintf("structural error: missing required columns: %s",
			strings.Join(e.Columns, ", "))
	case StructuralTooManyRows:
		return fmt.Sprintf("structural error: too many rows: %d exceeds limit %d",
			e.Count, e.Limit)
	case StructuralTooManyColumns:
		return fmt.Sprintf("structural error: too many columns: %d exceeds limit %d",
			e.Count, e.Limit)
	case StructuralDuplicateColumns:
		return fmt.Sprintf("structural error: duplicate column names: %s",
			strings.Join(e.Columns, ", "))
	case StructuralUnreadableEncoding:
		return fmt.Sprintf("structural error: unreadable encoding: %s", e.Detail)
	default:
		return "structural error: unknown"
	}
}

// NewEmptyTableError reports an input with no data rows or no columns.
func NewEmptyTableError() *StructuralError {
	return &StructuralError{Kind: StructuralEmptyTable}
}

// NewMissingRequiredColumnsError reports absent required columns.
func NewMissingRequiredColumnsError(names []string) *StructuralError {
	return &StructuralError{Kind: StructuralMissingRequiredColumns, Columns: names}
}

// NewTooManyRowsError reports a row count above the configured limit.
func NewTooManyRowsError(count, limit int) *StructuralError {
	return &StructuralError{Kind: StructuralTooManyRows, Count: count, Limit: limit}
}

// NewTooManyColumnsError reports a column count above the configured limit.
func NewTooManyColumnsError(count, limit int) *StructuralError {
	return &StructuralError{Kind: StructuralTooManyColumns, Count: count, Limit: limit}
}

// NewDuplicateColumnsError reports repeated header names.
func NewDuplicateColumnsError(names []string) *StructuralError {
	return &StructuralError{Kind: StructuralDuplicateColumns, Columns: names}
}

// NewUnreadableEncodingError reports input that could not be decoded.
func NewUnreadableEncodingError(detail string) *StructuralError {
	return &StructuralError{Kind: StructuralUnreadableEncoding, Detail: detail}
}

// AsStructural unwraps err as a *StructuralError if possible.
func AsStructural(err error) (*StructuralError, bool) {
	var se *StructuralError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
