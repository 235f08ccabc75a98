package model

import (
	"encoding/json"
	"fmt"
)

// Severity ranks the business impact of a data-quality issue.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and max-aggregation. The String() method
// provides the canonical wire representation when needed.
type Severity int

const (
	// SeverityLow indicates cosmetic defects with limited business impact.
	// Examples: suspiciously short free-text values.
	// These are worth cleaning up but rarely block CRM workflows.
	SeverityLow Severity = iota

	// SeverityMedium indicates defects that degrade day-to-day CRM use.
	// Examples: missing required values, malformed emails or phone numbers.
	// Affected records remain usable but cannot be contacted or segmented
	// reliably.
	SeverityMedium

	// SeverityHigh indicates defects that corrupt reporting or outreach.
	// Examples: negative deal amounts, exact duplicate records.
	// These typically require correction before the export is trusted.
	SeverityHigh
)

// String returns the canonical representation of the severity level.
// The same representation is used in JSON reports and terminal output.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "Low"
	case SeverityMedium:
		return "Medium"
	case SeverityHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// ParseSeverity converts the canonical string representation back into a
// Severity. It is the inverse of String().
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "Low":
		return SeverityLow, nil
	case "Medium":
		return SeverityMedium, nil
	case "High":
		return SeverityHigh, nil
	default:
		return SeverityLow, fmt.Errorf("unknown severity %q", s)
	}
}

// MarshalJSON encodes the severity as its canonical string form so reports
// stay readable and stable across versions.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the canonical string form produced by MarshalJSON.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// KindInfo contains metadata about an issue kind including its base
// severity, business impact description, and remediation recommendation.
type KindInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// kindInfoMapping maps issue kinds to their metadata.
// This centralized mapping ensures consistent scoring across the application.
//
// Design decision: We use a map rather than embedding severity in each
// detector because:
// 1. It keeps the severity lookup a single source of truth
// 2. It lets report writers show impact/recommendation text per kind
// 3. It makes the fixed kind-to-severity table trivially testable
var kindInfoMapping = map[IssueKind]KindInfo{
	KindMissingValue: {
		Severity:       SeverityMedium,
		Impact:         "Required fields are empty, so the affected records cannot be contacted or segmented reliably.",
		Recommendation: "Backfill the missing values from the source system, or make the field mandatory at entry.",
	},
	KindInvalidFormat: {
		Severity:       SeverityMedium,
		Impact:         "Malformed values break downstream integrations such as mail merges and dialer campaigns.",
		Recommendation: "Correct the flagged cells and add a validation rule at the point of entry.",
	},
	KindInvalidRange: {
		Severity:       SeverityHigh,
		Impact:         "Out-of-range amounts corrupt revenue forecasts and pipeline reporting.",
		Recommendation: "Audit the flagged rows against the source ledger and correct or remove the values.",
	},
	KindDuplicateExact: {
		Severity:       SeverityHigh,
		Impact:         "Duplicate records inflate pipeline metrics and cause double outreach to the same contact.",
		Recommendation: "Merge the duplicate records and enforce uniqueness on the identifying fields.",
	},
	KindDuplicateNear: {
		Severity:       SeverityMedium,
		Impact:         "Probable duplicates fragment contact history across near-identical records.",
		Recommendation: "Review each group manually and merge records that refer to the same entity.",
	},
	KindShortText: {
		Severity:       SeverityLow,
		Impact:         "Single-character or truncated values are rarely meaningful and usually indicate entry errors.",
		Recommendation: "Review the flagged cells and re-enter the full values.",
	},
}

// KindSeverity returns the base severity for an issue kind per the fixed
// lookup table. Returns SeverityLow if the kind is not in the mapping.
func KindSeverity(kind IssueKind) Severity {
	if info, ok := kindInfoMapping[kind]; ok {
		return info.Severity
	}
	return SeverityLow
}

// KindInfoFor returns the full metadata for an issue kind.
// Returns a conservative default if the kind is not in the mapping.
func KindInfoFor(kind IssueKind) KindInfo {
	if info, ok := kindInfoMapping[kind]; ok {
		return info
	}
	return KindInfo{
		Severity:       SeverityLow,
		Impact:         "Unknown issue kind. Review manually.",
		Recommendation: "Investigate the flagged cell and assess impact.",
	}
}
