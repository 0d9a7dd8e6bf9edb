// Package config provides omnote's settings manager and XDG Base Directory
// compliance utilities.
package config

import (
	"os"
	"path/filepath"
)

const (
	appName     = "omnote"
	sessionName = "session.json"

	dirPerm = 0o755
)

// XDGDirs holds the XDG Base Directory paths for the application.
type XDGDirs struct {
	ConfigHome string
	StateHome  string
	CacheHome  string
}

// GetXDGDirs returns the XDG Base Directory paths for omnote:
// - $XDG_CONFIG_HOME/omnote (default: ~/.config/omnote)
// - $XDG_STATE_HOME/omnote (default: ~/.local/state/omnote)
// - $XDG_CACHE_HOME/omnote (default: ~/.cache/omnote)
func GetXDGDirs() (*XDGDirs, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(homeDir, ".config")
	}
	configHome = filepath.Join(configHome, appName)

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = filepath.Join(homeDir, ".local", "state")
	}
	stateHome = filepath.Join(stateHome, appName)

	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		cacheHome = filepath.Join(homeDir, ".cache")
	}
	cacheHome = filepath.Join(cacheHome, appName)

	return &XDGDirs{
		ConfigHome: configHome,
		StateHome:  stateHome,
		CacheHome:  cacheHome,
	}, nil
}

// GetConfigDir returns the XDG config directory for omnote.
func GetConfigDir() (string, error) {
	dirs, err := GetXDGDirs()
	if err != nil {
		return "", err
	}
	return dirs.ConfigHome, nil
}

// GetStateDir returns the XDG state directory for omnote.
func GetStateDir() (string, error) {
	dirs, err := GetXDGDirs()
	if err != nil {
		return "", err
	}
	return dirs.StateHome, nil
}

// GetConfigFile returns the path to the main configuration file.
func GetConfigFile() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// GetSessionFile returns the path to the persisted session document.
// The session is transient state that can be regenerated, so it belongs
// in XDG_STATE_HOME rather than XDG_DATA_HOME.
func GetSessionFile() (string, error) {
	stateDir, err := GetStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, sessionName), nil
}

// GetDebugLogFile returns the path to the append-only debug log.
// Diagnostics are disposable, so they live in XDG_CACHE_HOME.
func GetDebugLogFile() (string, error) {
	dirs, err := GetXDGDirs()
	if err != nil {
		return "", err
	}
	return filepath.Join(dirs.CacheHome, "debug.log"), nil
}

// EnsureDirectories creates the XDG directories if they don't exist.
func EnsureDirectories() error {
	dirs, err := GetXDGDirs()
	if err != nil {
		return err
	}

	for _, dir := range []string{dirs.ConfigHome, dirs.StateHome, dirs.CacheHome} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return err
		}
	}

	return nil
}
