package model

import (
	"encoding/json"
	"fmt"
)

// RecordLevelColumn is the synthetic column-summary bucket for issues that
// belong to a whole record rather than a single column (duplicates).
const RecordLevelColumn = "record-level"

// IssueKind classifies a detected data-quality defect.
type IssueKind int

const (
	// KindMissingValue indicates an empty cell in a required column.
	KindMissingValue IssueKind = iota

	// KindInvalidFormat indicates a value that does not match the format
	// expected for its column type (email syntax, phone digit count,
	// numeric parse, date layout).
	KindInvalidFormat

	// KindInvalidRange indicates a value that parsed but lies outside the
	// permitted range, such as a negative monetary amount.
	KindInvalidRange

	// KindDuplicateExact indicates membership in an exact-duplicate group:
	// rows whose identifying columns are identical after canonicalization.
	KindDuplicateExact

	// KindDuplicateNear indicates membership in a near-duplicate group:
	// rows whose identifying columns are similar at or above the configured
	// threshold without being identical.
	KindDuplicateNear

	// KindShortText indicates a non-empty free-text value shorter than the
	// configured minimum length.
	KindShortText
)

// String returns the canonical representation of the issue kind.
// The same representation is used in JSON reports.
func (k IssueKind) String() string {
	switch k {
	case KindMissingValue:
		return "MissingValue"
	case KindInvalidFormat:
		return "InvalidFormat"
	case KindInvalidRange:
		return "InvalidRange"
	case KindDuplicateExact:
		return "DuplicateExact"
	case KindDuplicateNear:
		return "DuplicateNear"
	case KindShortText:
		return "ShortText"
	default:
		return "Unknown"
	}
}

// ParseIssueKind converts the canonical string representation back into an
// IssueKind. It is the inverse of String().
func ParseIssueKind(s string) (IssueKind, error) {
	switch s {
	case "MissingValue":
		return KindMissingValue, nil
	case "InvalidFormat":
		return KindInvalidFormat, nil
	case "InvalidRange":
		return KindInvalidRange, nil
	case "DuplicateExact":
		return KindDuplicateExact, nil
	case "DuplicateNear":
		return KindDuplicateNear, nil
	case "ShortText":
		return KindShortText, nil
	default:
		return KindMissingValue, fmt.Errorf("unknown issue kind %q", s)
	}
}

// MarshalJSON encodes the kind as its canonical string form.
func (k IssueKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes the canonical string form produced by MarshalJSON.
func (k *IssueKind) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseIssueKind(raw)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Issue is a single detected data-quality defect tied to a row and,
// except for duplicate issues, to a column. Issues are data, never errors:
// a table consisting entirely of issues is still a completable analysis.
//
// An Issue is created by exactly one detector and never mutated afterward.
// The severity is stamped at creation from the fixed kind lookup table so
// the struct stays immutable end to end.
type Issue struct {
	// RowIndex is the zero-based position of the record in the table.
	RowIndex int `json:"row_index"`

	// Column names the affected column. Empty for record-level issues
	// (duplicates), which are attributed to no single column.
	Column string `json:"column,omitempty"`

	// Kind classifies the defect.
	Kind IssueKind `json:"kind"`

	// Detail is a short, deterministic description of the defect.
	// It never contains timestamps or run-specific identifiers.
	Detail string `json:"detail"`

	// Severity is the base severity for Kind per the fixed lookup table.
	Severity Severity `json:"severity"`
}

// NewIssue creates a column-scoped issue with the severity stamped from the
// fixed kind lookup table.
func NewIssue(rowIndex int, column string, kind IssueKind, detail string) Issue {
	return Issue{
		RowIndex: rowIndex,
		Column:   column,
		Kind:     kind,
		Detail:   detail,
		Severity: KindSeverity(kind),
	}
}

// NewRecordIssue creates a record-level issue (no column attribution), used
// for duplicate findings.
func NewRecordIssue(rowIndex int, kind IssueKind, detail string) Issue {
	return Issue{
		RowIndex: rowIndex,
		Kind:     kind,
		Detail:   detail,
		Severity: KindSeverity(kind),
	}
}

// IsRecordLevel reports whether the issue belongs to the whole record
// rather than a single column.
func (i Issue) IsRecordLevel() bool {
	return i.Column == ""
}

// SummaryColumn returns the column-summary bucket for the issue: the column
// name for column-scoped issues, or the synthetic record-level bucket.
func (i Issue) SummaryColumn() string {
	if i.IsRecordLevel() {
		return RecordLevelColumn
	}
	return i.Column
}
