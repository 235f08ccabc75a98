package detect

import (
	"fmt"
	"regexp"

	"github.com/nao1215/crmscan/internal/model"
)

// Phone numbers arrive in many separator styles (dashes, dots, spaces,
// parentheses, a leading plus). The rule strips separators and judges
// what remains.
var phoneSeparators = regexp.MustCompile(`[\s\-\(\)\+\.]`)

// Digit count bounds for a dialable number. Seven covers local formats
// without an area code, fifteen is the E.164 maximum.
const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// PhoneRule flags values that do not reduce to a dialable digit string.
type PhoneRule struct{}

// NewPhoneRule creates a PhoneRule.
func NewPhoneRule() *PhoneRule {
	return &PhoneRule{}
}

// Name returns the rule identifier.
func (r *PhoneRule) Name() string {
	return "phone-format"
}

// Check reports an InvalidFormat violation when the value, with
// separators removed, is not a digit string of plausible length.
func (r *PhoneRule) Check(value string) (Violation, bool) {
	cleaned := phoneSeparators.ReplaceAllString(value, "")

	for _, c := range cleaned {
		if c < '0' || c > '9' {
			return Violation{
				Kind:   model.KindInvalidFormat,
				Detail: "phone number contains characters other than digits and separators",
			}, true
		}
	}

	if len(cleaned) < minPhoneDigits || len(cleaned) > maxPhoneDigits {
		return Violation{
			Kind: model.KindInvalidFormat,
			Detail: fmt.Sprintf("phone number has %d digits, expected between %d and %d",
				len(cleaned), minPhoneDigits, maxPhoneDigits),
		}, true
	}
	return Violation{}, false
}
