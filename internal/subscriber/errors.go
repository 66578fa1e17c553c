package subscriber

import "errors"

// Sentinel reasons.  Match with errors.Is on a *ValidationError.
var (
	ErrEmptyName           = errors.New("name is empty")
	ErrNameTooLong         = errors.New("name is longer than 256 characters")
	ErrForbiddenCharacters = errors.New("name contains forbidden characters")
	ErrInvalidEncoding     = errors.New("name is not valid UTF-8 text")
	ErrInvalidEmail        = errors.New("email is not a valid address")
)

// ValidationError reports which field failed and why.  It is a client error:
// handlers map it to 400 and never log it as a server fault.
type ValidationError struct {
	Field  string
	Reason error
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Reason.Error() }

func (e *ValidationError) Unwrap() error { return e.Reason }

// IsValidationError reports whether err came from ParseName, ParseEmail, or
// New.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
