package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateXDG points every XDG root into a temp dir so tests never touch the
// real user configuration.
func isolateXDG(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
	return root
}

func loadSettings(t *testing.T) *Settings {
	t.Helper()
	m, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, m.Load())
	return m.Get()
}

func TestLoadDefaults(t *testing.T) {
	isolateXDG(t)

	s := loadSettings(t)
	assert.Equal(t, ThemeModeAuto, s.Theme.Mode)
	assert.True(t, s.Theme.Watch)
	assert.Equal(t, 150, s.Theme.DebounceMs)
	assert.Equal(t, 3000, s.Session.FlushIntervalMs)
	assert.Equal(t, 2000, s.Session.ShutdownTimeoutMs)
	assert.Equal(t, "info", s.Logging.Level)
}

func TestLoadCreatesDefaultConfigFile(t *testing.T) {
	isolateXDG(t)

	loadSettings(t)

	configFile, err := GetConfigFile()
	require.NoError(t, err)
	data, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debounce_ms")
}

func TestLoadReadsConfigFile(t *testing.T) {
	isolateXDG(t)

	configFile, err := GetConfigFile()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(configFile), 0o755))
	content := "[theme]\nmode = \"system\"\nwatch = false\ndebounce_ms = 75\n\n[session]\nflush_interval_ms = 500\n"
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

	s := loadSettings(t)
	assert.Equal(t, ThemeModeSystem, s.Theme.Mode)
	assert.False(t, s.Theme.Watch)
	assert.Equal(t, 75, s.Theme.DebounceMs)
	assert.Equal(t, 500, s.Session.FlushIntervalMs)
	assert.Equal(t, 2000, s.Session.ShutdownTimeoutMs, "unset keys keep their defaults")
}

func TestEnvOverridesConfigFile(t *testing.T) {
	isolateXDG(t)
	t.Setenv("OMNOTE_THEME_MODE", "system")

	s := loadSettings(t)
	assert.Equal(t, ThemeModeSystem, s.Theme.Mode)
}

func TestLegacyEnvAliasStillWorks(t *testing.T) {
	isolateXDG(t)
	t.Setenv("MICROPAD_THEME_MODE", "system")

	s := loadSettings(t)
	assert.Equal(t, ThemeModeSystem, s.Theme.Mode)
}

func TestCurrentEnvBeatsLegacyAlias(t *testing.T) {
	isolateXDG(t)
	t.Setenv("OMNOTE_THEME_MODE", "auto")
	t.Setenv("MICROPAD_THEME_MODE", "system")

	s := loadSettings(t)
	assert.Equal(t, ThemeModeAuto, s.Theme.Mode)
}

func TestUnknownThemeModeFallsBackToAuto(t *testing.T) {
	isolateXDG(t)
	t.Setenv("OMNOTE_THEME_MODE", "neon")

	s := loadSettings(t)
	assert.Equal(t, ThemeModeAuto, s.Theme.Mode)
}

func TestNoWatchEnvDisablesLiveSync(t *testing.T) {
	isolateXDG(t)
	t.Setenv("OMNOTE_NO_WATCH", "1")

	s := loadSettings(t)
	assert.False(t, s.Theme.Watch)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolateXDG(t)

	configFile, err := GetConfigFile()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(configFile), 0o755))
	require.NoError(t, os.WriteFile(configFile, []byte("[theme]\ndebounce_ms = 0\n"), 0o644))

	m, err := NewManager()
	require.NoError(t, err)
	assert.Error(t, m.Load())
}

func TestGetBeforeLoadReturnsDefaults(t *testing.T) {
	isolateXDG(t)

	m, err := NewManager()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), m.Get())
}
