package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/samplekeeper/internal/common"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8000/api", c.APIBaseURL)
	assert.Equal(t, "samplekeeper.db", c.DatabasePath)
	assert.Equal(t, 3*time.Second, c.NoticeTTL)
	assert.Equal(t, time.Duration(0), c.RequestTimeout)
	assert.Equal(t, "Token", c.TokenScheme)
	assert.Equal(t, CheckboxAsInt, c.CheckboxEncoding)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_PrecedenceJSONEnvFlags(t *testing.T) {
	dir := t.TempDir()
	origDotenv := dotenvFile
	dotenvFile = filepath.Join(dir, "missing.env")
	t.Cleanup(func() { dotenvFile = origDotenv })

	path := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"api_base_url":  "http://json.example/api",
		"database_path": "json.db",
		"notice_ttl":    "5s",
	})

	t.Setenv("SAMPLEKEEPER_DB", "env.db")
	t.Setenv("SAMPLEKEEPER_LOG_BACKEND", "zerolog")

	cfg, err := LoadConfig([]string{"console", "-c", path, "-a", "http://flag.example/api/"})
	require.NoError(t, err)

	assert.Equal(t, "http://flag.example/api", cfg.APIBaseURL, "flag wins and trailing slash is trimmed")
	assert.Equal(t, "env.db", cfg.DatabasePath, "env overrides json")
	assert.Equal(t, 5*time.Second, cfg.NoticeTTL, "json overrides defaults")
	assert.Equal(t, "zerolog", cfg.LogBackend)
}

func TestLoadConfig_DotenvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("SAMPLEKEEPER_TOKEN_SCHEME=Bearer\nSAMPLEKEEPER_NOTICE_TTL=10s\n"), 0o600))

	origDotenv := dotenvFile
	dotenvFile = envPath
	t.Cleanup(func() { dotenvFile = origDotenv })

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", cfg.TokenScheme)
	assert.Equal(t, 10*time.Second, cfg.NoticeTTL)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	origDotenv := dotenvFile
	dotenvFile = filepath.Join(t.TempDir(), "missing.env")
	t.Cleanup(func() { dotenvFile = origDotenv })

	t.Setenv("SAMPLEKEEPER_CHECKBOX_ENCODING", "yes-no")

	_, err := LoadConfig(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoadConfig_BadEnvDuration(t *testing.T) {
	origDotenv := dotenvFile
	dotenvFile = filepath.Join(t.TempDir(), "missing.env")
	t.Cleanup(func() { dotenvFile = origDotenv })

	t.Setenv("SAMPLEKEEPER_NOTICE_TTL", "three seconds")

	_, err := LoadConfig(nil)
	require.Error(t, err)
}
