package model

import (
	"errors"
	"fmt"
	"testing"
)

// TestStructuralErrorMessages tests the operator-facing message for
// each structural error kind.
func TestStructuralErrorMessages(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      *StructuralError
		expected string
	}{
		{
			name:     "empty table",
			err:      NewEmptyTableError(),
			expected: "structural error: table has no data rows",
		},
		{
			name:     "missing required columns",
			err:      NewMissingRequiredColumnsError([]string{"Email", "Phone"}),
			expected: "structural error: missing required columns: Email, Phone",
		},
		{
			name:     "too many rows",
			err:      NewTooManyRowsError(12000, 10000),
			expected: "structural error: too many rows: 12000 exceeds limit 10000",
		},
		{
			name:     "too many columns",
			err:      NewTooManyColumnsError(300, 256),
			expected: "structural error: too many columns: 300 exceeds limit 256",
		},
		{
			name:     "duplicate columns",
			err:      NewDuplicateColumnsError([]string{"Email"}),
			expected: "structural error: duplicate column names: Email",
		},
		{
			name:     "unreadable encoding",
			err:      NewUnreadableEncodingError("input is not valid UTF-8"),
			expected: "structural error: unreadable encoding: input is not valid UTF-8",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if tc.err.Error() != tc.expected {
				t.Errorf("got %q, expected %q", tc.err.Error(), tc.expected)
			}
		})
	}
}

// TestStructuralErrorKindString tests the canonical kind names used in
// API error payloads.
func TestStructuralErrorKindString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		kind     StructuralErrorKind
		expected string
	}{
		{StructuralEmptyTable, "EmptyTable"},
		{StructuralMissingRequiredColumns, "MissingRequiredColumns"},
		{StructuralTooManyRows, "TooManyRows"},
		{StructuralTooManyColumns, "TooManyColumns"},
		{StructuralDuplicateColumns, "DuplicateColumns"},
		{StructuralUnreadableEncoding, "UnreadableEncoding"},
		{StructuralErrorKind(999), "Unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.kind.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.kind.String(), tc.expected)
			}
		})
	}
}

// TestAsStructural tests unwrapping through error chains.
func TestAsStructural(t *testing.T) {
	t.Parallel()

	base := NewTooManyRowsError(20000, 10000)
	wrapped := fmt.Errorf("validate input: %w", base)

	structural, ok := AsStructural(wrapped)
	if !ok {
		t.Fatal("AsStructural should unwrap a wrapped structural error")
	}
	if structural.Kind != StructuralTooManyRows {
		t.Errorf("Kind = %v, expected %v", structural.Kind, StructuralTooManyRows)
	}
	if structural.Count != 20000 || structural.Limit != 10000 {
		t.Errorf("Count/Limit = %d/%d, expected 20000/10000", structural.Count, structural.Limit)
	}

	if _, ok := AsStructural(errors.New("plain error")); ok {
		t.Error("AsStructural should report false for non-structural errors")
	}
	if _, ok := AsStructural(nil); ok {
		t.Error("AsStructural should report false for nil")
	}
}
