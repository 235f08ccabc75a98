package detect

import "github.com/nao1215/crmscan/internal/model"

// Rule checks a single trimmed, non-empty cell value against the
// expectations of one column type.
type Rule interface {
	// Name returns a short rule identifier used in debug logs.
	Name() string
	// Check returns the violation found in value. The second return
	// value reports whether a violation was found; a false means the
	// value passes the rule.
	Check(value string) (Violation, bool)
}

// Violation is a rule result before it is bound to a table position.
// The coordinator turns it into a model.Issue with row and column.
type Violation struct {
	Kind   model.IssueKind
	Detail string
}

// Interface guards.
var (
	_ Rule = (*EmailRule)(nil)
	_ Rule = (*PhoneRule)(nil)
	_ Rule = (*MonetaryRule)(nil)
	_ Rule = (*DateRule)(nil)
	_ Rule = (*TextRule)(nil)
)
