package subscriber

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// Email is a validated subscriber address, stored exactly as submitted.
type Email struct{ value string }

// ParseEmail accepts local-part@domain where the domain has at least two
// non-empty dot-separated labels.  No case folding or trimming is done, so
// surrounding whitespace makes the address invalid.
func ParseEmail(raw string) (Email, error) {
	if !isStorableText(raw) {
		return Email{}, &ValidationError{Field: "email", Reason: ErrInvalidEmail}
	}
	if err := v.Var(raw, "required,email"); err != nil || !hasDottedDomain(raw) {
		return Email{}, &ValidationError{Field: "email", Reason: ErrInvalidEmail}
	}
	return Email{value: raw}, nil
}

func (e Email) String() string { return e.value }

func hasDottedDomain(s string) bool {
	at := strings.LastIndexByte(s, '@')
	if at <= 0 {
		return false
	}
	labels := strings.Split(strings.TrimSuffix(s[at+1:], "."), ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if l == "" {
			return false
		}
	}
	return true
}
