package vault

import (
	"context"
	"errors"
	"testing"

	vault "github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeKV struct {
	mount string
	data  map[string]map[string]any
	calls *[]string
}

func (f fakeKV) Get(_ context.Context, p string) (*vault.KVSecret, error) {
	*f.calls = append(*f.calls, f.mount+"/"+p)
	d, ok := f.data[p]
	if !ok {
		return nil, errors.New("secret not found")
	}
	return &vault.KVSecret{Data: d}, nil
}

func newFakeClient(data map[string]map[string]any) (*Client, *[]string) {
	var calls []string
	return &Client{
		kv:  func(mount string) kvReader { return fakeKV{mount: mount, data: data, calls: &calls} },
		log: zap.NewNop(),
	}, &calls
}

func TestResolve(t *testing.T) {
	c, calls := newFakeClient(map[string]map[string]any{
		"newsletter/db": {"password": "from-vault", "port": 5432},
	})

	got, err := c.Resolve(context.Background(), "secret/newsletter/db#password")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", got)
	assert.Equal(t, []string{"secret/newsletter/db"}, *calls)
}

func TestResolve_Errors(t *testing.T) {
	c, _ := newFakeClient(map[string]map[string]any{
		"newsletter/db": {"port": 5432},
	})

	for _, ref := range []string{
		"secret/newsletter/db",          // no key
		"secret#password",               // no path after mount
		"secret/newsletter/db#password", // key absent
		"secret/newsletter/db#port",     // not a string
		"secret/missing#password",       // secret absent
	} {
		_, err := c.Resolve(context.Background(), ref)
		assert.Error(t, err, ref)
	}
}

func TestSplitMount(t *testing.T) {
	m, r := splitMount("secret/a/b")
	assert.Equal(t, "secret", m)
	assert.Equal(t, "a/b", r)

	m, r = splitMount("secret")
	assert.Equal(t, "secret", m)
	assert.Empty(t, r)
}
