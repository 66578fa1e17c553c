// internal/vault/vault.go
//
// Vault client wrapper used to resolve `vault:` configuration values.
//
// Context
// -------
//   - Settings files may carry `password: "vault:secret/newsletter#db_password"`
//     instead of a literal credential.  config.Load calls Resolve for each
//     such value before binding the tree.
//   - Resolution happens once at startup, so there is no cache and no
//     background token renewal here.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(log)                         // during boot.
//  2. cfg, err := config.Load(config.WithSecretSource(ctx, cli))
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – token (falls back to ~/.vault-token via the SDK).
package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

//
// SECTION 1.  Public façade
//

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	kv  func(mount string) kvReader
	log *zap.Logger
}

// kvReader is the one KV-v2 call we make.  *vault.KVv2 satisfies it.
type kvReader interface {
	Get(ctx context.Context, secretPath string) (*vault.KVSecret, error)
}

// New constructs a client from the standard VAULT_* environment.
func New(log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cfg := vault.DefaultConfig()
	if cfg.Error != nil {
		return nil, fmt.Errorf("vault env cfg: %w", cfg.Error)
	}

	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}

	log.Info("vault client ready", zap.String("addr", api.Address()))
	return &Client{
		kv:  func(mount string) kvReader { return api.KVv2(mount) },
		log: log,
	}, nil
}

// Resolve reads `<mount>/<path>#<key>` from a KV-v2 engine and returns the
// value as a string.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	secretPath, key, ok := strings.Cut(ref, "#")
	if !ok || secretPath == "" || key == "" {
		return "", errors.New("vault reference must look like <mount>/<path>#<key>")
	}

	mount, rel := splitMount(secretPath)
	if rel == "" {
		return "", fmt.Errorf("vault reference %q has no secret path after the mount", secretPath)
	}

	sec, err := c.kv(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}

	c.log.Debug("vault secret resolved", zap.String("path", secretPath), zap.String("key", key))
	return val, nil
}

//
// SECTION 2.  Helpers
//

func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return mount, rel
}
