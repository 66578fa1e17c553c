// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Load` calls `validateSettings` after it unmarshals the merged Koanf tree
// into `Settings`.  Presence of every leaf is checked separately against the
// merged tree (see requiredKeys in model.go); the struct tags here catch
// values that are present but empty, e.g. `APP_DATABASE__HOST=`.
//
// Notes
// -----
//   - validator.ValidationErrors name fields and tags only, never values, so
//     they are safe to surface in ConfigError.

package config

import "github.com/go-playground/validator/v10"

//
// validator instance (package-level singleton)
//

var v = validator.New(validator.WithRequiredStructEnabled())

//
// public API
//

// validateSettings returns the validation error, or nil on success.
func validateSettings(s *Settings) error {
	return v.Struct(s)
}
