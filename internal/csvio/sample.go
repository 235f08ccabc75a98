package csvio

import (
	_ "embed"
	"strings"
)

//go:embed sample.csv
var sampleCSV string

// Sample returns a small CRM lead export bundled with the binary. The
// data intentionally contains missing values, malformed emails and
// phone numbers, a negative deal amount, and exact and near duplicate
// rows so every detection rule has something to report.
func Sample() string {
	return sampleCSV
}

// SampleReader returns the bundled sample as a reader suitable for
// ReadAll.
func SampleReader() *strings.Reader {
	return strings.NewReader(sampleCSV)
}
