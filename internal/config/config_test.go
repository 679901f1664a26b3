package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	assert.NoError(t, err)
	assert.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, configDir, configFile)
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	assert.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Empty(t, cfg.APIKey)
	assert.Equal(t, DefaultTickHz, cfg.TickHz)
	assert.Equal(t, DefaultWarnZ, cfg.WarnZ)
	assert.Equal(t, DefaultAlertZ, cfg.AlertZ)
	assert.Equal(t, DefaultRunLengthAlert, cfg.RunLengthAlert)
	assert.Equal(t, DefaultTrendWindow, cfg.TrendWindow)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
}

func TestLoadProjectFile(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	t.Setenv("HOME", t.TempDir())
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "api_key: sk-project-key-123\nwarn_z: 2.5\n")
	chdir(t, projectDir)

	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, "sk-project-key-123", cfg.APIKey)
	assert.Equal(t, "project (.printwatch/config.yaml)", cfg.APIKeySource)
	assert.Equal(t, 2.5, cfg.WarnZ)
	// Untouched fields keep defaults.
	assert.Equal(t, DefaultAlertZ, cfg.AlertZ)
}

func TestLoadProjectOverridesHome(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	writeConfig(t, homeDir, "api_key: sk-home-key-456\nlisten_addr: \":9000\"\n")

	projectDir := t.TempDir()
	writeConfig(t, projectDir, "api_key: sk-project-key-123\n")
	chdir(t, projectDir)

	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, "sk-project-key-123", cfg.APIKey)
	assert.Equal(t, "project (.printwatch/config.yaml)", cfg.APIKeySource)
	// Non-key settings from home still apply when the project file is silent.
	assert.Equal(t, ":9000", cfg.ListenAddr)
}

func TestLoadEnvOverridesFiles(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "api_key: sk-project-key-123\n")
	chdir(t, projectDir)
	t.Setenv(APIKeyEnv, "sk-env-key-789")

	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, "sk-env-key-789", cfg.APIKey)
	assert.Equal(t, "environment (PRINTWATCH_API_KEY)", cfg.APIKeySource)
}

func TestLoadExplicitPath(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("tick_hz: 2\n"), 0600))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 2.0, cfg.TickHz)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")
}

func TestLoadMalformedFile(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	t.Setenv("HOME", t.TempDir())
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "api_key: [not a string\n")
	chdir(t, projectDir)

	_, err := Load("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}
