package detect

import (
	"strings"

	"github.com/nao1215/crmscan/internal/model"
	"github.com/spf13/cast"
)

// monetaryCleaner removes the decoration people type into amount
// fields. What remains should be a plain number.
var monetaryCleaner = strings.NewReplacer(
	"$", "",
	"€", "",
	"£", "",
	"¥", "",
	",", "",
	" ", "",
)

// MonetaryRule flags values that are not non-negative amounts.
// Amounts in CRM exports represent deal sizes and prices, so a value
// that parses but is negative is a range problem, not a format problem.
type MonetaryRule struct{}

// NewMonetaryRule creates a MonetaryRule.
func NewMonetaryRule() *MonetaryRule {
	return &MonetaryRule{}
}

// Name returns the rule identifier.
func (r *MonetaryRule) Name() string {
	return "monetary-amount"
}

// Check reports InvalidFormat when the value does not parse as a
// number after currency symbols and separators are removed, and
// InvalidRange when it parses to a negative amount.
func (r *MonetaryRule) Check(value string) (Violation, bool) {
	cleaned := monetaryCleaner.Replace(value)

	amount, err := cast.ToFloat64E(cleaned)
	if err != nil {
		return Violation{
			Kind:   model.KindInvalidFormat,
			Detail: "value is not a parsable monetary amount",
		}, true
	}

	if amount < 0 {
		return Violation{
			Kind:   model.KindInvalidRange,
			Detail: "amount is negative, expected zero or greater",
		}, true
	}
	return Violation{}, false
}
