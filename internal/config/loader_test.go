package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
application:
  port: 8000
database:
  host: "127.0.0.1"
  port: 5432
  username: "postgres"
  password: "s3cr3t-pw"
  database_name: "newsletter"
  require_tls: false
`

const localYAML = `
application:
  host: 127.0.0.1
`

const productionYAML = `
application:
  host: 0.0.0.0
database:
  require_tls: true
`

// writeConf lays out a conf directory holding exactly files and returns
// its path.
func writeConf(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

func defaultConf(t *testing.T) string {
	return writeConf(t, map[string]string{
		"base.yaml":       baseYAML,
		"local.yaml":      localYAML,
		"production.yaml": productionYAML,
	})
}

func TestLoad_DefaultsToLocal(t *testing.T) {
	t.Setenv(EnvironmentVar, "")
	s, err := Load(WithDir(defaultConf(t)))
	require.NoError(t, err)

	assert.Equal(t, Local, s.Environment)
	assert.Equal(t, "127.0.0.1", s.Application.Host)
	assert.Equal(t, uint16(8000), s.Application.Port)
	assert.Equal(t, "postgres", s.Database.Username)
	assert.Equal(t, "s3cr3t-pw", s.Database.Password.Expose())
	assert.False(t, s.Database.RequireTLS)
}

func TestLoad_EnvironmentFileOverlaysFieldByField(t *testing.T) {
	t.Setenv(EnvironmentVar, "production")
	s, err := Load(WithDir(defaultConf(t)))
	require.NoError(t, err)

	assert.Equal(t, Production, s.Environment)
	assert.Equal(t, "0.0.0.0", s.Application.Host)
	assert.True(t, s.Database.RequireTLS)
	// untouched siblings from base survive
	assert.Equal(t, "127.0.0.1", s.Database.Host)
	assert.Equal(t, uint16(5432), s.Database.Port)
	assert.Equal(t, uint16(8000), s.Application.Port)
}

func TestLoad_EnvironmentTagIsCaseInsensitive(t *testing.T) {
	t.Setenv(EnvironmentVar, "PRODUCTION")
	s, err := Load(WithDir(defaultConf(t)))
	require.NoError(t, err)
	assert.Equal(t, Production, s.Environment)
}

func TestLoad_EnvVarsOverrideFiles(t *testing.T) {
	t.Setenv(EnvironmentVar, "production")
	t.Setenv("APP_APPLICATION__PORT", "9001")
	t.Setenv("APP_DATABASE__DATABASE_NAME", "news_ci")
	t.Setenv("APP_DATABASE__REQUIRE_TLS", "false")

	s, err := Load(WithDir(defaultConf(t)))
	require.NoError(t, err)

	assert.Equal(t, uint16(9001), s.Application.Port, "string port should coerce")
	assert.Equal(t, "news_ci", s.Database.DatabaseName)
	assert.False(t, s.Database.RequireTLS, "env beats production.yaml")
	assert.Equal(t, "0.0.0.0", s.Application.Host, "production.yaml beats base")
}

func TestLoad_MissingBaseFile(t *testing.T) {
	t.Setenv(EnvironmentVar, "")
	dir := writeConf(t, map[string]string{"local.yaml": localYAML})

	_, err := Load(WithDir(dir))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindRequired), "got %v", err)
}

func TestLoad_MalformedBaseFile(t *testing.T) {
	t.Setenv(EnvironmentVar, "")
	dir := writeConf(t, map[string]string{
		"base.yaml":  "application: [port: 8000\n",
		"local.yaml": localYAML,
	})

	_, err := Load(WithDir(dir))
	assert.True(t, IsKind(err, KindRequired), "got %v", err)
}

func TestLoad_MissingEnvironmentFile(t *testing.T) {
	t.Setenv(EnvironmentVar, "production")
	dir := writeConf(t, map[string]string{"base.yaml": baseYAML, "local.yaml": localYAML})

	_, err := Load(WithDir(dir))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindRequired), "got %v", err)
	assert.Contains(t, err.Error(), "production.yaml")
}

func TestLoad_UnsupportedEnvironment(t *testing.T) {
	t.Setenv(EnvironmentVar, "staging")
	_, err := Load(WithDir(defaultConf(t)))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnsupportedEnvironment), "got %v", err)
	assert.Contains(t, err.Error(), "staging")
}

func TestLoad_MissingFieldAfterMerge(t *testing.T) {
	t.Setenv(EnvironmentVar, "")
	base := strings.Replace(baseYAML, `  host: "127.0.0.1"`+"\n", "", 1)
	dir := writeConf(t, map[string]string{"base.yaml": base, "local.yaml": localYAML})

	_, err := Load(WithDir(dir))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDeserialize), "got %v", err)
	assert.Contains(t, err.Error(), "database.host")
}

func TestLoad_MissingFieldSuppliedByEnv(t *testing.T) {
	t.Setenv(EnvironmentVar, "")
	t.Setenv("APP_DATABASE__HOST", "db.internal")
	base := strings.Replace(baseYAML, `  host: "127.0.0.1"`+"\n", "", 1)
	dir := writeConf(t, map[string]string{"base.yaml": base, "local.yaml": localYAML})

	s, err := Load(WithDir(dir))
	require.NoError(t, err)
	assert.Equal(t, "db.internal", s.Database.Host)
}

func TestLoad_UncoercibleNumber(t *testing.T) {
	t.Setenv(EnvironmentVar, "")
	t.Setenv("APP_APPLICATION__PORT", "eighty")

	_, err := Load(WithDir(defaultConf(t)))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDeserialize), "got %v", err)
}

func TestLoad_EmptyValueFailsValidation(t *testing.T) {
	t.Setenv(EnvironmentVar, "")
	t.Setenv("APP_DATABASE__USERNAME", "")

	_, err := Load(WithDir(defaultConf(t)))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDeserialize), "got %v", err)
	assert.NotContains(t, err.Error(), "s3cr3t-pw")
}

type fakeSecrets map[string]string

func (f fakeSecrets) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := f[ref]
	if !ok {
		return "", errors.New("no such secret")
	}
	return v, nil
}

func TestLoad_VaultReference(t *testing.T) {
	t.Setenv(EnvironmentVar, "")
	t.Setenv("APP_DATABASE__PASSWORD", "vault:secret/newsletter#db_password")

	src := fakeSecrets{"secret/newsletter#db_password": "from-vault"}
	s, err := Load(WithDir(defaultConf(t)), WithSecretSource(context.Background(), src))
	require.NoError(t, err)
	assert.Equal(t, "from-vault", s.Database.Password.Expose())
}

func TestLoad_VaultReferenceWithoutSource(t *testing.T) {
	t.Setenv(EnvironmentVar, "")
	t.Setenv("APP_DATABASE__PASSWORD", "vault:secret/newsletter#db_password")

	_, err := Load(WithDir(defaultConf(t)))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDeserialize), "got %v", err)
}

func TestHasSecretRefs(t *testing.T) {
	t.Setenv(EnvironmentVar, "")
	dir := defaultConf(t)
	assert.False(t, HasSecretRefs(dir))

	t.Setenv("APP_DATABASE__PASSWORD", "vault:secret/newsletter#db_password")
	assert.True(t, HasSecretRefs(dir))
}

func TestHasSecretRefs_OnlyActiveValuesCount(t *testing.T) {
	t.Setenv(EnvironmentVar, "")
	base := "# password may be vault:secret/newsletter#db_password\n" + baseYAML
	production := productionYAML + "  password: \"vault:secret/newsletter#db_password\"\n"
	dir := writeConf(t, map[string]string{
		"base.yaml":       base,
		"local.yaml":      localYAML,
		"production.yaml": production,
	})

	assert.False(t, HasSecretRefs(dir), "comment and inactive production layer must not count")

	t.Setenv(EnvironmentVar, "production")
	assert.True(t, HasSecretRefs(dir))
}

func TestHasSecretRefs_BrokenLayersReportFalse(t *testing.T) {
	t.Setenv(EnvironmentVar, "")
	assert.False(t, HasSecretRefs(t.TempDir()))
}

func TestLoad_PortBoundsFromFile(t *testing.T) {
	t.Setenv(EnvironmentVar, "")

	for _, tc := range []struct {
		port string
		ok   bool
		want uint16
	}{
		{"0", true, 0},
		{"65535", true, 65535},
		{"65536", false, 0},
		{"70000", false, 0},
		{"-1", false, 0},
	} {
		base := strings.Replace(baseYAML, "port: 8000", "port: "+tc.port, 1)
		dir := writeConf(t, map[string]string{"base.yaml": base, "local.yaml": localYAML})

		s, err := Load(WithDir(dir))
		if !tc.ok {
			require.Error(t, err, "application.port %s", tc.port)
			assert.True(t, IsKind(err, KindDeserialize), "port %s: got %v", tc.port, err)
			continue
		}
		require.NoError(t, err, "application.port %s", tc.port)
		assert.Equal(t, tc.want, s.Application.Port)
	}
}

func TestLoad_PortBoundsFromEnv(t *testing.T) {
	t.Setenv(EnvironmentVar, "")

	for _, tc := range []struct {
		port string
		ok   bool
		want uint16
	}{
		{"0", true, 0},
		{"65535", true, 65535},
		{"65536", false, 0},
		{"70000", false, 0},
		{"-1", false, 0},
	} {
		t.Setenv("APP_APPLICATION__PORT", tc.port)

		s, err := Load(WithDir(defaultConf(t)))
		if !tc.ok {
			require.Error(t, err, "APP_APPLICATION__PORT=%s", tc.port)
			assert.True(t, IsKind(err, KindDeserialize), "port %s: got %v", tc.port, err)
			continue
		}
		require.NoError(t, err, "APP_APPLICATION__PORT=%s", tc.port)
		assert.Equal(t, tc.want, s.Application.Port)
	}
}

func TestLoad_DatabasePortOutOfRange(t *testing.T) {
	t.Setenv(EnvironmentVar, "")
	base := strings.Replace(baseYAML, "port: 5432", "port: 70000", 1)
	dir := writeConf(t, map[string]string{"base.yaml": base, "local.yaml": localYAML})

	_, err := Load(WithDir(dir))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDeserialize), "got %v", err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestParseEnvironment(t *testing.T) {
	for _, in := range []string{"local", "Local", " production "} {
		_, err := ParseEnvironment(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseEnvironment("dev")
	assert.True(t, IsKind(err, KindUnsupportedEnvironment))
}
