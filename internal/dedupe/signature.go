package dedupe

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
	"golang.org/x/text/cases"

	"github.com/nao1215/crmscan/internal/model"
)

// signatureSeparator joins canonical cell values. The unit separator
// control character cannot appear in CSV cell text, so "a,bc" and
// "ab,c" can never collide.
const signatureSeparator = "\x1f"

// signer builds canonical row signatures over a fixed set of
// identifying columns. It is not safe for concurrent use because the
// underlying case folder carries state.
type signer struct {
	columns []string
	folder  cases.Caser
}

// newSigner creates a signer for the given identifying columns. An
// empty column list means every column identifies the row.
func newSigner(table *model.Table, identifying []string) *signer {
	columns := identifying
	if len(columns) == 0 {
		columns = table.Columns()
	}
	return &signer{
		columns: columns,
		folder:  cases.Fold(),
	}
}

// signature returns the canonical signature of one row: each
// identifying cell is whitespace-collapsed and case-folded, then the
// cells are joined in configured column order.
func (s *signer) signature(record model.Record) string {
	parts := make([]string, 0, len(s.columns))
	for _, column := range s.columns {
		value, _ := record.Get(column)
		parts = append(parts, s.canonical(value))
	}
	return strings.Join(parts, signatureSeparator)
}

// canonical collapses internal whitespace runs to single spaces, trims
// the ends, and case-folds the result.
func (s *signer) canonical(value string) string {
	collapsed := strings.Join(strings.Fields(value), " ")
	return s.folder.String(collapsed)
}

// empty reports whether a signature carries no identifying content,
// meaning every identifying cell was empty or whitespace.
func empty(signature string) bool {
	return strings.Trim(signature, signatureSeparator) == ""
}

// signatureKey hashes a signature to a fixed-size map key. Hashing
// keeps key size independent of table width.
func signatureKey(signature string) string {
	sum := sha3.Sum256([]byte(signature))
	return hex.EncodeToString(sum[:])
}
