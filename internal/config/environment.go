package config

import (
	"os"
	"strings"
)

// EnvironmentVar selects which environment file overlays base.yaml.
const EnvironmentVar = "APP_ENVIRONMENT"

// Environment is the deployment tag.  Only Local and Production exist.
type Environment string

const (
	Local      Environment = "local"
	Production Environment = "production"
)

func (e Environment) String() string { return string(e) }

// ParseEnvironment accepts "local" or "production", case-insensitively.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local":
		return Local, nil
	case "production":
		return Production, nil
	default:
		return "", &ConfigError{
			Kind: KindUnsupportedEnvironment,
			Key:  EnvironmentVar,
			Err:  errUnsupportedEnvironment(s),
		}
	}
}

// environmentFromEnv reads APP_ENVIRONMENT, defaulting to Local when unset
// or empty.
func environmentFromEnv() (Environment, error) {
	raw, ok := os.LookupEnv(EnvironmentVar)
	if !ok || raw == "" {
		return Local, nil
	}
	return ParseEnvironment(raw)
}
