package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.22\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "BACKOFFICE_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "modules", "transfer")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	origWd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	require.NoError(t, os.Chdir(sub))

	_ = os.Unsetenv("BACKOFFICE_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, "ok", os.Getenv("BACKOFFICE_TEST_ENV_LOAD"))
}

func TestRateLimitOptions_Validate(t *testing.T) {
	require.NoError(t, (&RateLimitOptions{GlobalRPS: 10, Storage: "memory"}).Validate())
	require.Error(t, (&RateLimitOptions{GlobalRPS: -1, Storage: "memory"}).Validate())
	require.Error(t, (&RateLimitOptions{GlobalRPS: 10, Storage: "disk"}).Validate())
	require.Error(t, (&RateLimitOptions{GlobalRPS: 10, Storage: "redis"}).Validate())
	require.NoError(t, (&RateLimitOptions{GlobalRPS: 10, Storage: "redis", RedisURL: "redis://localhost:6379"}).Validate())
}

func TestConfiguration_Validate(t *testing.T) {
	base := func() *Configuration {
		return &Configuration{
			RateLimit:       RateLimitOptions{GlobalRPS: 1, Storage: "memory"},
			Auth:            AuthOptions{BcryptCost: 10},
			MaxUploadSize:   1024,
			DocumentMaxSize: 1024,
		}
	}

	require.NoError(t, base().validate())

	c := base()
	c.Auth.BcryptCost = 2
	require.Error(t, c.validate())

	c = base()
	c.GoAppEnvironment = Production
	require.Error(t, c.validate())
	c.Auth.JWTSecret = "s3cret"
	require.NoError(t, c.validate())

	c = base()
	c.DocumentMaxSize = 0
	require.Error(t, c.validate())
}

func TestConfiguration_LogrusLogLevel(t *testing.T) {
	c := &Configuration{LogLevel: "debug"}
	require.Equal(t, "debug", c.LogrusLogLevel().String())
	c.LogLevel = "unknown"
	require.Equal(t, "error", c.LogrusLogLevel().String())
}

func TestDatabaseOptions_ConnectionString(t *testing.T) {
	d := DatabaseOptions{Name: "db", Host: "h", Port: "1", User: "u", Password: "p"}
	require.Equal(t, "host=h port=1 user=u dbname=db password=p sslmode=disable", d.ConnectionString())
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
