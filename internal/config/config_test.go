package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for name := range envKeys {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Setenv("CONFIG_FILE", "")
	os.Unsetenv("CONFIG_FILE")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL())
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 10*time.Minute, cfg.RouteCacheTTL())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 10, cfg.MaxRecent)
	assert.Equal(t, StoreMemory, cfg.ResolvedStoreDriver())
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRES", "60")
	t.Setenv("CORS_ORIGINS", "http://localhost:8081, https://app.example.com")
	t.Setenv("RATE_LIMIT_RPS", "0")
	t.Setenv("FIREBASE_CREDENTIALS_PATH", "/secrets/firebase.json")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 172.16.0.0/12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, time.Minute, cfg.AccessTokenTTL())
	assert.Equal(t, []string{"http://localhost:8081", "https://app.example.com"}, cfg.CORSOrigins)
	assert.Zero(t, cfg.RateLimitRPS)
	assert.Equal(t, StoreFirestore, cfg.ResolvedStoreDriver())
	assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, cfg.TrustedProxies)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "navigator.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_name: fromfile\nmax_recent: 5\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MAX_RECENT", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "fromfile", cfg.DBName)
	assert.Equal(t, 7, cfg.MaxRecent, "environment wins over the file")
}

func TestValidateRejectsMongoWithoutURI(t *testing.T) {
	cfg := defaultConfig()
	cfg.StoreDriver = StoreMongo
	assert.Error(t, cfg.Validate())

	cfg.MongoURI = "mongodb://localhost:27017"
	assert.NoError(t, cfg.Validate())

	cfg.StoreDriver = "postgres"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadTrustedProxy(t *testing.T) {
	cfg := defaultConfig()
	cfg.TrustedProxies = []string{"10.0.0.0/8", "load-balancer"}
	assert.ErrorContains(t, cfg.Validate(), "load-balancer")

	cfg.TrustedProxies = []string{"10.0.0.0/8", "::1"}
	assert.NoError(t, cfg.Validate())
}
