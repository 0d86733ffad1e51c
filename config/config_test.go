package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig("")
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 1816, cfg.Web.Port)
	assert.Equal(t, 60, cfg.Web.JwtExpireMin)
	assert.True(t, cfg.Payment.Mock)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "nexchakra.yml")
	content := []byte(`
web:
  host: 127.0.0.1
  port: 9090
database:
  name: showcase_test
  user: tester
`)
	require.NoError(t, os.WriteFile(cfile, content, 0o644))

	cfg := LoadConfig(cfile)
	assert.Equal(t, "127.0.0.1", cfg.Web.Host)
	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, "showcase_test", cfg.Database.Name)
	assert.Equal(t, "tester", cfg.Database.User)
	// untouched sections keep defaults
	assert.Equal(t, "postgres", cfg.Database.Type)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("NEXCHAKRA_WEB_PORT", "8088")
	t.Setenv("NEXCHAKRA_DB_HOST", "db.internal")
	t.Setenv("NEXCHAKRA_PAYMENT_MOCK", "false")

	cfg := LoadConfig("")
	assert.Equal(t, 8088, cfg.Web.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.False(t, cfg.Payment.Mock)
}
