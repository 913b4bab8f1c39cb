package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.Equal(t, "/var/run/sessiond.sock", cfg.Socket)
	assert.Equal(t, "/var/lib/sessiond", cfg.Dir)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 3600*time.Second, cfg.Session.Period)
	assert.EqualValues(t, 5, cfg.Session.LockCount)
	assert.Equal(t, 600*time.Second, cfg.Session.MaintenanceInterval)
}

func TestApplyDefaultsPreservesSetFields(t *testing.T) {
	cfg := &Config{Socket: "/tmp/custom.sock"}
	ApplyDefaults(cfg)
	assert.Equal(t, "/tmp/custom.sock", cfg.Socket)
	assert.Equal(t, "/var/lib/sessiond", cfg.Dir)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "socket: /tmp/sessiond.sock\ndir: /tmp/sessiond-data\nsession:\n  period: 120s\n  lock_count: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/sessiond.sock", cfg.Socket)
	assert.Equal(t, "/tmp/sessiond-data", cfg.Dir)
	assert.Equal(t, 120*time.Second, cfg.Session.Period)
	assert.EqualValues(t, 3, cfg.Session.LockCount)
	// Unset fields still receive defaults.
	assert.Equal(t, 600*time.Second, cfg.Session.MaintenanceInterval)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Socket = "/tmp/roundtrip.sock"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/roundtrip.sock", loaded.Socket)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SESSIOND_SOCKET", "/tmp/env.sock")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("socket: /tmp/file.sock\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.sock", cfg.Socket)
}
