package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.False(t, cfg.AllowReset)
	assert.Equal(t, "http://localhost:8080/api", cfg.Client.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "mock", cfg.Client.Source)
	assert.Equal(t, 5, cfg.Client.MaxPages)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_ADDR", ":9090")
	t.Setenv("STORE_CLIENT_BASE_URL", "https://api.knpstore.vn/api")
	t.Setenv("STORE_CLIENT_TIMEOUT", "3s")
	t.Setenv("STORE_LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://store@localhost/store")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "https://api.knpstore.vn/api", cfg.Client.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "postgres://store@localhost/store", cfg.DatabaseURL)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}
