package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// ThemeMode selects how the active palette is resolved.
type ThemeMode string

const (
	// ThemeModeAuto runs the full source cascade.
	ThemeModeAuto ThemeMode = "auto"
	// ThemeModeSystem bypasses the cascade and uses the system default source.
	ThemeModeSystem ThemeMode = "system"
)

// Settings is the runtime configuration for the core.
type Settings struct {
	Theme   ThemeSettings   `mapstructure:"theme"`
	Session SessionSettings `mapstructure:"session"`
	Logging LoggingSettings `mapstructure:"logging"`
}

// ThemeSettings controls palette resolution and live sync.
type ThemeSettings struct {
	// Mode is "auto" (cascade) or "system" (system default only).
	Mode ThemeMode `mapstructure:"mode"`
	// Watch enables live filesystem watching of theme sources.
	Watch bool `mapstructure:"watch"`
	// DebounceMs is the quiet period used to coalesce filesystem event bursts.
	DebounceMs int `mapstructure:"debounce_ms"`
}

// SessionSettings controls session persistence timing.
type SessionSettings struct {
	// FlushIntervalMs is the debounce interval between a mutation and its
	// flush to disk.
	FlushIntervalMs int `mapstructure:"flush_interval_ms"`
	// ShutdownTimeoutMs bounds the wait for the final flush on exit.
	ShutdownTimeoutMs int `mapstructure:"shutdown_timeout_ms"`
}

// LoggingSettings controls the diagnostic output.
type LoggingSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() *Settings {
	return &Settings{
		Theme: ThemeSettings{
			Mode:       ThemeModeAuto,
			Watch:      true,
			DebounceMs: 150,
		},
		Session: SessionSettings{
			FlushIntervalMs:   3000,
			ShutdownTimeoutMs: 2000,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "console",
		},
	}
}

// Manager handles settings loading from file and environment.
type Manager struct {
	mu       sync.RWMutex
	viper    *viper.Viper
	settings *Settings
}

// NewManager creates a settings manager rooted at the XDG config dir.
func NewManager() (*Manager, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w", err)
	}
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("OMNOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicit bindings cover the documented control variables and their
	// legacy aliases.
	if err := v.BindEnv("theme.mode", "OMNOTE_THEME_MODE", "MICROPAD_THEME_MODE"); err != nil {
		return nil, fmt.Errorf("failed to bind OMNOTE_THEME_MODE: %w", err)
	}
	if err := v.BindEnv("logging.level", "OMNOTE_LOG_LEVEL", "MICROPAD_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind OMNOTE_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "OMNOTE_LOG_FORMAT"); err != nil {
		return nil, fmt.Errorf("failed to bind OMNOTE_LOG_FORMAT: %w", err)
	}

	return &Manager{viper: v}, nil
}

// Load loads settings from file and environment, creating a default config
// file on first run.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	m.setDefaults()

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if createErr := m.createDefaultConfig(); createErr != nil {
			// A read-only config dir is not fatal; run on defaults.
			m.settings = DefaultSettings()
			return nil
		}
		if rereadErr := m.viper.ReadInConfig(); rereadErr != nil {
			return fmt.Errorf("failed to read newly created config file: %w", rereadErr)
		}
	}

	settings := &Settings{}
	if err := m.viper.Unmarshal(settings); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", m.viper.ConfigFileUsed(), err)
	}

	normalizeSettings(settings)
	if err := validateSettings(settings); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	m.settings = settings
	return nil
}

// Get returns a copy of the current settings.
func (m *Manager) Get() *Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.settings == nil {
		return DefaultSettings()
	}
	copied := *m.settings
	return &copied
}

func (m *Manager) setDefaults() {
	defaults := DefaultSettings()
	m.viper.SetDefault("theme.mode", string(defaults.Theme.Mode))
	m.viper.SetDefault("theme.watch", defaults.Theme.Watch)
	m.viper.SetDefault("theme.debounce_ms", defaults.Theme.DebounceMs)
	m.viper.SetDefault("session.flush_interval_ms", defaults.Session.FlushIntervalMs)
	m.viper.SetDefault("session.shutdown_timeout_ms", defaults.Session.ShutdownTimeoutMs)
	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
}

func (m *Manager) createDefaultConfig() error {
	configFile, err := GetConfigFile()
	if err != nil {
		return err
	}
	return m.viper.SafeWriteConfigAs(configFile)
}

func normalizeSettings(s *Settings) {
	switch ThemeMode(strings.ToLower(string(s.Theme.Mode))) {
	case ThemeModeSystem:
		s.Theme.Mode = ThemeModeSystem
	default:
		s.Theme.Mode = ThemeModeAuto
	}

	// OMNOTE_NO_WATCH=1 disables live sync regardless of the config file.
	if EnvSet("NO_WATCH") {
		s.Theme.Watch = false
	}
}

func validateSettings(s *Settings) error {
	if s.Theme.DebounceMs <= 0 {
		return fmt.Errorf("theme.debounce_ms must be positive, got %d", s.Theme.DebounceMs)
	}
	if s.Session.FlushIntervalMs <= 0 {
		return fmt.Errorf("session.flush_interval_ms must be positive, got %d", s.Session.FlushIntervalMs)
	}
	if s.Session.ShutdownTimeoutMs <= 0 {
		return fmt.Errorf("session.shutdown_timeout_ms must be positive, got %d", s.Session.ShutdownTimeoutMs)
	}
	return nil
}
