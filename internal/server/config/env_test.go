package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_OverlaysVariables(t *testing.T) {
	t.Setenv(EnvFileVar, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv(EnvAddr, ":9999")
	t.Setenv(EnvDatabaseDSN, "postgres://env")
	t.Setenv(EnvAccessTokenTTL, "90s")
	t.Setenv(EnvInterpretWorkers, "7")
	t.Setenv(EnvS3Endpoint, "http://minio:9000")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":9999", cfg.EndpointAddr)
	assert.Equal(t, "postgres://env", cfg.DatabaseDSN)
	assert.Equal(t, 90*time.Second, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 7, cfg.InterpretWorkers)
	assert.Equal(t, "http://minio:9000", cfg.S3BaseEndpoint)
	assert.Equal(t, "secretKey", cfg.SecretKey)
}

func TestParseEnv_ReadsDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.env")
	require.NoError(t, os.WriteFile(path, []byte("DREAMTELLER_SECRET_KEY=from-file\nDREAMTELLER_LOG_LEVEL=debug\n"), 0o600))
	t.Setenv(EnvFileVar, path)
	// godotenv never overrides variables that are already set.
	t.Setenv(EnvLogLevel, "error")
	t.Cleanup(func() { _ = os.Unsetenv(EnvSecretKey) })

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, "from-file", cfg.SecretKey)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestParseEnv_MalformedValuePanics(t *testing.T) {
	t.Setenv(EnvFileVar, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv(EnvInterpretDelay, "soon")

	require.Panics(t, func() { parseEnv(&Config{}) })
}
