package detect

import (
	"fmt"
	"unicode/utf8"

	"github.com/nao1215/crmscan/internal/model"
)

// DefaultMinTextLength is the minimum rune count for a free-text value
// before it is considered too short to be meaningful.
const DefaultMinTextLength = 2

// TextRule flags free-text values that are too short to carry meaning,
// such as a company name of a single character. Length is measured in
// runes so non-ASCII names are not penalized.
type TextRule struct {
	minLength int
}

// NewTextRule creates a TextRule with the given minimum length.
// Non-positive values fall back to the default.
func NewTextRule(minLength int) *TextRule {
	if minLength <= 0 {
		minLength = DefaultMinTextLength
	}
	return &TextRule{minLength: minLength}
}

// Name returns the rule identifier.
func (r *TextRule) Name() string {
	return "short-text"
}

// Check reports a ShortText violation when value has fewer runes than
// the configured minimum.
func (r *TextRule) Check(value string) (Violation, bool) {
	if utf8.RuneCountInString(value) >= r.minLength {
		return Violation{}, false
	}
	return Violation{
		Kind:   model.KindShortText,
		Detail: fmt.Sprintf("value is shorter than %d characters", r.minLength),
	}, true
}
