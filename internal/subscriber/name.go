package subscriber

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// MaxNameLength is measured in grapheme clusters, not bytes or runes, so
// "é" written as e + combining accent counts once.
const MaxNameLength = 256

const forbiddenNameChars = `/()"<>\{}`

// Name is a validated subscriber name.  The zero value is not valid; obtain
// one through ParseName.
type Name struct{ value string }

// ParseName checks raw and returns it unchanged when valid.  Whitespace is
// trimmed only to decide emptiness.
func ParseName(raw string) (Name, error) {
	if !isStorableText(raw) {
		return Name{}, &ValidationError{Field: "name", Reason: ErrInvalidEncoding}
	}
	if strings.TrimSpace(raw) == "" {
		return Name{}, &ValidationError{Field: "name", Reason: ErrEmptyName}
	}
	if uniseg.GraphemeClusterCount(raw) > MaxNameLength {
		return Name{}, &ValidationError{Field: "name", Reason: ErrNameTooLong}
	}
	if strings.ContainsAny(raw, forbiddenNameChars) {
		return Name{}, &ValidationError{Field: "name", Reason: ErrForbiddenCharacters}
	}
	return Name{value: raw}, nil
}

func (n Name) String() string { return n.value }

// isStorableText reports whether s can go into a Postgres text column:
// valid UTF-8 with no NUL bytes.
func isStorableText(s string) bool {
	return utf8.ValidString(s) && strings.IndexByte(s, 0) < 0
}
