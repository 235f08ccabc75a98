package detect

import (
	"strings"

	"github.com/nao1215/crmscan/internal/model"
)

// Column name fragments used to guess a column's type from its header.
// Matching is case-insensitive substring containment, which is how CRM
// exports actually name things (Email, email_address, Work_Phone).
var (
	emailFragments    = []string{"email"}
	phoneFragments    = []string{"phone", "mobile", "tel"}
	monetaryFragments = []string{"amount", "price", "revenue", "count", "quantity"}
	dateFragments     = []string{"date", "day"}

	// identifyingFragments mark columns that tend to identify a record
	// for duplicate detection purposes. Unique-ID columns are left out:
	// an export assigns every row its own ID, so including one would
	// make every signature unique and hide real duplicates.
	identifyingFragments = []string{"email", "phone", "name"}
)

// InferColumnTypes guesses a column type for each header name it
// recognizes. Columns with no recognized fragment are omitted from the
// result and default to unknown downstream. Explicit configuration
// always wins over inference; this exists so an unconfigured run still
// produces useful findings.
func InferColumnTypes(columns []string) map[string]model.ColumnType {
	types := make(map[string]model.ColumnType)
	for _, column := range columns {
		lower := strings.ToLower(column)
		switch {
		case containsAny(lower, emailFragments):
			types[column] = model.ColumnTypeEmail
		case containsAny(lower, phoneFragments):
			types[column] = model.ColumnTypePhone
		case containsAny(lower, monetaryFragments):
			types[column] = model.ColumnTypeMonetary
		case containsAny(lower, dateFragments):
			types[column] = model.ColumnTypeDate
		}
	}
	return types
}

// InferIdentifyingColumns returns the columns that look like record
// identifiers, in header order. An empty result means no column name
// matched, and duplicate detection should fall back to whole-row
// comparison.
func InferIdentifyingColumns(columns []string) []string {
	var identifying []string
	for _, column := range columns {
		if containsAny(strings.ToLower(column), identifyingFragments) {
			identifying = append(identifying, column)
		}
	}
	return identifying
}

// containsAny reports whether s contains any of the fragments.
func containsAny(s string, fragments []string) bool {
	for _, fragment := range fragments {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}
