package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetenvPrefersCurrentPrefix(t *testing.T) {
	t.Setenv("OMNOTE_THEME_BG", "#111111")
	t.Setenv("MICROPAD_THEME_BG", "#222222")

	assert.Equal(t, "#111111", Getenv("THEME_BG"))
	assert.Equal(t, "#111111", Getenv("OMNOTE_THEME_BG"), "prefixed lookup form is accepted")
}

func TestGetenvFallsBackToLegacyPrefix(t *testing.T) {
	t.Setenv("MICROPAD_THEME_BG", "#222222")

	assert.Equal(t, "#222222", Getenv("THEME_BG"))
}

func TestEnvSet(t *testing.T) {
	assert.False(t, EnvSet("DOES_NOT_EXIST_XYZ"))

	t.Setenv("OMNOTE_NO_WATCH", "")
	assert.False(t, EnvSet("NO_WATCH"), "empty value counts as unset")

	t.Setenv("OMNOTE_NO_WATCH", "1")
	assert.True(t, EnvSet("NO_WATCH"))
}

func TestXDGPathsHonorOverrides(t *testing.T) {
	root := isolateXDG(t)

	dirs, err := GetXDGDirs()
	assert.NoError(t, err)
	assert.Contains(t, dirs.ConfigHome, root)
	assert.Contains(t, dirs.StateHome, root)
	assert.Contains(t, dirs.CacheHome, root)

	session, err := GetSessionFile()
	assert.NoError(t, err)
	assert.Contains(t, session, "session.json")
}
