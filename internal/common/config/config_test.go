package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apiserver.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
port: 5235
control:
  type: sqlite
  dbname: /tmp/control.db
tenant:
  host: db.internal
  port: 3306
  prefix: fleet_
  panel_account_id: 3
jwt:
  secret_key: 0123456789abcdef0123456789abcdef
  duration: 2h
session:
  type: redis
  ttl: 30m
`)
	cfg, cfgPath, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfgPath)
	assert.Equal(t, 5235, cfg.Port)
	assert.Equal(t, "sqlite", cfg.Control.Type)
	assert.Equal(t, "fleet_", cfg.Tenant.Prefix)
	assert.Equal(t, uint(3), cfg.Tenant.PanelAccountID)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Duration)
	assert.Equal(t, "redis", cfg.Session.Type)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
port: 5235
control:
  type: sqlite
  dbname: /tmp/control.db
`)
	cfg, _, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Duration)
	assert.Equal(t, "memory", cfg.Session.Type)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, uint(1), cfg.Tenant.PanelAccountID)
	assert.Equal(t, "files", cfg.Blob.Dir)
}

func TestLoadConfig_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_TENANT_HOST", "tenant-db.example")
	path := writeConfig(t, `
port: ${TEST_PORT:5235}
tenant:
  host: "${TEST_TENANT_HOST:localhost}"
  prefix: "${TEST_MISSING:fleet_}"
`)
	cfg, _, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5235, cfg.Port)
	assert.Equal(t, "tenant-db.example", cfg.Tenant.Host)
	assert.Equal(t, "fleet_", cfg.Tenant.Prefix)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestGetDSN_SQLiteHasNoSideEffects(t *testing.T) {
	dir := t.TempDir()
	cfg := DatabaseConfig{
		Type:   "sqlite",
		DBName: filepath.Join(dir, "nested", "control.db"),
	}
	assert.Equal(t, cfg.DBName, cfg.GetDSN())
	_, err := os.Stat(filepath.Join(dir, "nested"))
	assert.True(t, os.IsNotExist(err), "GetDSN must not create directories")

	// a path whose parent can never exist still resolves without panicking
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	cfg.DBName = filepath.Join(blocker, "sub", "control.db")
	assert.NotPanics(t, func() { cfg.GetDSN() })
}

func TestTenantDSN(t *testing.T) {
	cfg := TenantConfig{Host: "db.internal", Port: 3306, Prefix: "fleet_"}
	dsn := cfg.TenantDSN("acme", "acme_user", "pw")
	assert.Contains(t, dsn, "fleet_acme_user:pw@tcp(db.internal:3306)/fleet_acme")
}
