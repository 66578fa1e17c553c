// internal/secret/secret.go
//
// Redacting wrapper for credential strings.
//
// Context
// -------
// Configuration carries at least one value (the database password) that must
// never reach a log line, an error message, or a response body.  `String`
// stores the raw value but renders as "[REDACTED]" through every formatting
// path we know of: fmt verbs, Go-syntax dumps, JSON encoding, and zap fields.
//
// The only way to read the raw value is `Expose()`.  Grep for it to audit
// every place a credential leaves the wrapper.
//
// Notes
// -----
//   - The type is a named string so koanf / mapstructure can decode YAML and
//     env values into it without a custom hook.
package secret

import (
	"encoding/json"

	"go.uber.org/zap/zapcore"
)

const redacted = "[REDACTED]"

// String holds a secret value.  The zero value is an empty secret.
type String string

// New wraps raw.
func New(raw string) String { return String(raw) }

// Expose returns the raw value.  Call it only where the credential is
// handed to the system that needs it (a DSN, an auth header).
func (s String) Expose() string { return string(s) }

// IsZero reports whether the secret is empty.
func (s String) IsZero() bool { return s == "" }

func (String) String() string   { return redacted }
func (String) GoString() string { return redacted }

// MarshalJSON keeps secrets out of JSON dumps of configuration.
func (String) MarshalJSON() ([]byte, error) { return json.Marshal(redacted) }

// MarshalLogObject satisfies zapcore.ObjectMarshaler for zap.Object fields.
func (String) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("value", redacted)
	return nil
}
