// internal/config/model.go
//
// Typed configuration model for the newsletter service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   - `conf/base.yaml`                    – shared defaults,
//   - `conf/<environment>.yaml`           – local or production values,
//   - `APP_`-prefixed environment values  – highest precedence.
//
// Any string value that begins with `vault:` is resolved through a
// SecretSource *before* unmarshalling, so the model never stores Vault
// URIs, only plain values.
//
// Validation happens immediately after unmarshal; the process fails fast if
// a field is missing or malformed.
//
// Notes
// -----
//   - Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   - The password is a secret.String.  Use Expose() only when building a
//     connection string.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/yanizio/newsletter/internal/secret"
)

//
// Database section
//

// Database holds Postgres connection settings.
type Database struct {
	Username     string        `koanf:"username"      validate:"required"`
	Password     secret.String `koanf:"password"      validate:"required"`
	Host         string        `koanf:"host"          validate:"required"`
	Port         uint16        `koanf:"port"          validate:"required"`
	DatabaseName string        `koanf:"database_name" validate:"required"`
	RequireTLS   bool          `koanf:"require_tls"`

	// ConnectLazy defers the first connection until a query needs it, so
	// the HTTP listener can come up while storage is still unavailable.
	ConnectLazy bool `koanf:"connect_lazy"`
}

// ConnectionString returns the full Postgres DSN, wrapped so it never ends
// up in a log line by accident.
func (d Database) ConnectionString() secret.String {
	u := d.baseURL()
	u.Path = "/" + d.DatabaseName
	return secret.New(u.String())
}

// ConnectionStringWithoutDB targets the server rather than one database.
// Used by tooling that needs to create the database first.
func (d Database) ConnectionStringWithoutDB() secret.String {
	return secret.New(d.baseURL().String())
}

func (d Database) baseURL() *url.URL {
	mode := "prefer"
	if d.RequireTLS {
		mode = "require"
	}
	return &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.Username, d.Password.Expose()),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(int(d.Port))),
		RawQuery: url.Values{"sslmode": {mode}}.Encode(),
	}
}

// Target is a log-safe description of the database endpoint.
func (d Database) Target() string {
	return fmt.Sprintf("%s:%d/%s", d.Host, d.Port, d.DatabaseName)
}

//
// Application section
//

// Application holds listener settings.
type Application struct {
	Host string `koanf:"host" validate:"required"`
	Port uint16 `koanf:"port"`
}

// Address returns host:port for net.Listen.
func (a Application) Address() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
}

//
// Root aggregate
//

// Settings is the immutable aggregate returned by Load().  Callers receive a
// pointer and must treat it as read-only.
type Settings struct {
	Database    Database    `koanf:"database"`
	Application Application `koanf:"application"`

	// Environment is resolved from APP_ENVIRONMENT, never from files.
	Environment Environment `koanf:"-"`
}

// requiredKeys lists every leaf that must be present after all layers are
// merged.  Booleans and ports are checked here rather than by validator
// tags because their zero value is legitimate.
var requiredKeys = []string{
	"database.username",
	"database.password",
	"database.host",
	"database.port",
	"database.database_name",
	"database.require_tls",
	"application.host",
	"application.port",
}
