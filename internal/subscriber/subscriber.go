// Package subscriber holds the validated value objects for a newsletter
// signup.  Every rule about what a name or an email may contain lives here;
// callers only ever see a fully valid NewSubscriber or a *ValidationError.
package subscriber

// NewSubscriber is a signup that passed validation.  Its fields are value
// objects, so an instance built outside this package is necessarily the
// zero value and is rejected by IsZero.
type NewSubscriber struct {
	Email Email
	Name  Name
}

// New parses both fields.  The name is checked first; the first failure is
// returned.
func New(name, email string) (NewSubscriber, error) {
	n, err := ParseName(name)
	if err != nil {
		return NewSubscriber{}, err
	}
	e, err := ParseEmail(email)
	if err != nil {
		return NewSubscriber{}, err
	}
	return NewSubscriber{Email: e, Name: n}, nil
}

// IsZero reports whether s was not produced by New.
func (s NewSubscriber) IsZero() bool {
	return s.Email.value == "" || s.Name.value == ""
}
