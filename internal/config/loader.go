// internal/config/loader.go
//
// Layered settings resolver.
//
/*
Context
--------
`Load()` builds one immutable `Settings` struct from three layers (highest
precedence last):

  1. `conf/base.yaml`              – required.
  2. `conf/<environment>.yaml`     – required.  The environment comes from
     APP_ENVIRONMENT (`local` when unset, `production` otherwise allowed).
  3. Environment variables prefixed `APP_`, where `__` maps to “.”
     (e.g., `APP_APPLICATION__PORT → application.port`).

Koanf merges field-by-field, so a layer that sets `database.host` leaves the
rest of the `database` section intact.  After merging, `vault:` references
are resolved (when a SecretSource is supplied), every required leaf is
checked for presence, and the tree is unmarshalled with weak typing so
numbers and booleans may arrive as strings from the environment.

Instrumentation
---------------
  • DEBUG spans: directory discovery, each file layer, env overlay.
  • ERROR spans: every failure, with file or key but never the value.
  • INFO  span : final “config loaded” with non-secret highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface before the injected logger exists.

Notes
-----
  • An optional `conf/.env` is read into the process environment first.  It
    never overrides variables that are already set.
  • There is no reload.  Settings are resolved once per process.
*/
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	// EnvPrefix marks environment variables that override settings.
	EnvPrefix = "APP_"
	// DirVar points Load at a configuration directory explicitly.
	DirVar = "APP_CONFIG_DIR"

	baseFile  = "base.yaml"
	vaultTag  = "vault:"
	keyDelim  = "."
	pathDelim = "__"
)

// SecretSource resolves `vault:<mount>/<path>#<key>` references.
// *vault.Client satisfies it.
type SecretSource interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Option customises Load.
type Option func(*options)

type options struct {
	dir     string
	secrets SecretSource
	ctx     context.Context
}

// WithDir reads configuration files from dir instead of the discovered
// `conf` directory.
func WithDir(dir string) Option { return func(o *options) { o.dir = dir } }

// WithSecretSource enables `vault:` references in any string value.
func WithSecretSource(ctx context.Context, s SecretSource) Option {
	return func(o *options) {
		o.ctx = ctx
		o.secrets = s
	}
}

/*──────────────────────────── dir discovery ────────────────────────────────*/

// configDir resolves APP_CONFIG_DIR or climbs directories until
// conf/base.yaml is found.  Falls back to ./conf so the error names a path.
func configDir() string {
	if d := os.Getenv(DirVar); d != "" {
		return d
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		candidate := filepath.Join(dir, "conf")
		if _, err := os.Stat(filepath.Join(candidate, baseFile)); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}
	return filepath.Join(wd, "conf")
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load resolves Settings from base file, environment file, and APP_ env
// overrides, in that order.  Any error is a *ConfigError and is fatal.
func Load(opts ...Option) (*Settings, error) {
	o := options{ctx: context.Background()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.dir == "" {
		o.dir = configDir()
	}
	log := zap.S()
	log.Debugw("config dir resolved", "dir", o.dir)

	k, environment, err := loadLayers(o.dir)
	if err != nil {
		return nil, err
	}

	if err := resolveSecrets(o.ctx, k, o.secrets); err != nil {
		log.Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	for _, key := range requiredKeys {
		if !k.Exists(key) {
			log.Errorw("config key missing", "key", key)
			return nil, &ConfigError{Kind: KindDeserialize, Key: key, Err: errMissingKey}
		}
	}

	// Weak typing lets "8000" bind to uint16 and "true" to bool; integers
	// that do not fit their field are rejected.
	var s Settings
	if err := k.UnmarshalWithConf("", &s, unmarshalConf()); err != nil {
		log.Errorw("config unmarshal failed", "err", err)
		return nil, &ConfigError{Kind: KindDeserialize, Err: err}
	}
	s.Environment = environment

	if err := validateSettings(&s); err != nil {
		log.Errorw("config validation failed", "err", err)
		return nil, &ConfigError{Kind: KindDeserialize, Err: err}
	}

	log.Infow("config loaded",
		"environment", s.Environment,
		"listen_addr", s.Application.Address(),
		"database", s.Database.Target(),
		"require_tls", s.Database.RequireTLS,
	)
	return &s, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// loadLayers merges the base file, the environment file, and the APP_ env
// overlay, in that order.  An optional .env in dir is read first.
func loadLayers(dir string) (*koanf.Koanf, Environment, error) {
	log := zap.S()

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	k := koanf.New(keyDelim)

	// 1. base layer
	if err := loadFile(k, filepath.Join(dir, baseFile)); err != nil {
		return nil, "", err
	}

	// 2. environment tag
	environment, err := environmentFromEnv()
	if err != nil {
		log.Errorw("config environment rejected", "var", EnvironmentVar, "err", err)
		return nil, "", err
	}

	// 3. environment layer
	if err := loadFile(k, filepath.Join(dir, environment.String()+".yaml")); err != nil {
		return nil, "", err
	}

	// 4. env overlay: APP_DATABASE__HOST → database.host
	if err := k.Load(env.Provider(EnvPrefix, keyDelim, envKey), nil); err != nil {
		log.Errorw("config env overlay failed", "err", err)
		return nil, "", &ConfigError{Kind: KindDeserialize, Key: EnvPrefix + "*", Err: err}
	}
	log.Debugw("config env overlay applied", "prefix", EnvPrefix)

	return k, environment, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		zap.S().Errorw("config file load failed", "file", path, "err", err)
		return &ConfigError{Kind: KindRequired, Path: path, Err: err}
	}
	zap.S().Debugw("config file loaded", "file", path)
	return nil
}

// envKey maps APP_DATABASE__DATABASE_NAME to database.database_name.  The
// selector variables are not settings and are skipped.
func envKey(s string) string {
	if s == EnvironmentVar || s == DirVar {
		return ""
	}
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, pathDelim, keyDelim))
}

// secretRefs returns every key whose merged value is a `vault:` string,
// mapped to the reference with the tag stripped.
func secretRefs(k *koanf.Koanf) map[string]string {
	refs := make(map[string]string)
	for key, val := range k.All() {
		if ref, ok := val.(string); ok && strings.HasPrefix(ref, vaultTag) {
			refs[key] = strings.TrimPrefix(ref, vaultTag)
		}
	}
	return refs
}

// resolveSecrets swaps every `vault:` string for the value it points at.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, src SecretSource) error {
	for key, ref := range secretRefs(k) {
		if src == nil {
			return &ConfigError{Kind: KindDeserialize, Key: key,
				Err: errors.New("vault reference found but no secret source configured")}
		}
		plain, err := src.Resolve(ctx, ref)
		if err != nil {
			return &ConfigError{Kind: KindDeserialize, Key: key, Err: fmt.Errorf("resolve secret: %w", err)}
		}
		if err := k.Set(key, plain); err != nil {
			return &ConfigError{Kind: KindDeserialize, Key: key, Err: err}
		}
	}
	return nil
}

// HasSecretRefs reports whether the settings Load would build from dir
// contain a `vault:` value.  Only the active layers count, and comments
// never do.  A layer that fails to load reports false and is left for Load
// to surface.  cmd/web uses it to decide whether to dial Vault at all.
func HasSecretRefs(dir string) bool {
	if dir == "" {
		dir = configDir()
	}
	k, _, err := loadLayers(dir)
	if err != nil {
		return false
	}
	return len(secretRefs(k)) > 0
}
