package detect

import (
	"regexp"

	"github.com/nao1215/crmscan/internal/model"
)

// emailPattern accepts the common mailbox@domain.tld shape. It is a
// sanity check for CRM hygiene, not an RFC 5322 parser: addresses that
// fail it would bounce in practice even when technically legal.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// EmailRule flags values that do not look like a deliverable email
// address.
type EmailRule struct{}

// NewEmailRule creates an EmailRule.
func NewEmailRule() *EmailRule {
	return &EmailRule{}
}

// Name returns the rule identifier.
func (r *EmailRule) Name() string {
	return "email-format"
}

// Check reports an InvalidFormat violation when value does not match
// the expected email shape.
func (r *EmailRule) Check(value string) (Violation, bool) {
	if emailPattern.MatchString(value) {
		return Violation{}, false
	}
	return Violation{
		Kind:   model.KindInvalidFormat,
		Detail: "value does not match the expected email format",
	}, true
}
