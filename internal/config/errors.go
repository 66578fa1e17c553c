package config

import (
	"errors"
	"fmt"
)

// Kind classifies a configuration failure.  Every kind is fatal at startup.
type Kind int

const (
	// KindRequired: a configuration file is missing or cannot be parsed.
	KindRequired Kind = iota + 1
	// KindUnsupportedEnvironment: APP_ENVIRONMENT is not local/production.
	KindUnsupportedEnvironment
	// KindDeserialize: the merged tree does not bind into Settings.
	KindDeserialize
)

func (k Kind) String() string {
	switch k {
	case KindRequired:
		return "required"
	case KindUnsupportedEnvironment:
		return "unsupported environment"
	case KindDeserialize:
		return "deserialize"
	default:
		return "unknown"
	}
}

// ConfigError is returned by Load.  Messages name files and keys, never
// values, so a secret cannot leak through the error text.
type ConfigError struct {
	Kind Kind
	Path string // file involved, if any
	Key  string // config key or env var involved, if any
	Err  error
}

func (e *ConfigError) Error() string {
	msg := "config: " + e.Kind.String()
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Key != "" {
		msg += " " + e.Key
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// IsKind reports whether err is a *ConfigError of kind k.
func IsKind(err error, k Kind) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && ce.Kind == k
}

var errMissingKey = errors.New("missing after all layers were merged")

func errUnsupportedEnvironment(s string) error {
	return fmt.Errorf("%q is not a supported environment, use either `local` or `production`", s)
}
