package detect

import (
	"time"

	"github.com/nao1215/crmscan/internal/model"
)

// dateLayouts are the formats accepted in date columns, tried in
// order. They cover ISO dates plus the US and European conventions
// seen in real CRM exports.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	"Jan 2, 2006",
}

// DateRule flags values that do not parse under any supported date
// layout.
type DateRule struct{}

// NewDateRule creates a DateRule.
func NewDateRule() *DateRule {
	return &DateRule{}
}

// Name returns the rule identifier.
func (r *DateRule) Name() string {
	return "date-format"
}

// Check reports an InvalidFormat violation when value parses under
// none of the supported layouts. Parsing also rejects impossible
// calendar dates such as a thirteenth month.
func (r *DateRule) Check(value string) (Violation, bool) {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return Violation{}, false
		}
	}
	return Violation{
		Kind:   model.KindInvalidFormat,
		Detail: "value does not match any supported date layout",
	}, true
}
