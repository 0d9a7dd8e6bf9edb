package config

import (
	"os"
	"strings"
)

// legacyEnvPrefix is the prefix the application used before its rename.
// Variables under it keep working, at lower precedence than OMNOTE_*.
const (
	envPrefix       = "OMNOTE_"
	legacyEnvPrefix = "MICROPAD_"
)

// Getenv looks up an OMNOTE_* environment variable, falling back to its
// MICROPAD_* legacy alias. The name may be given with or without the
// OMNOTE_ prefix.
func Getenv(name string) string {
	name = strings.TrimPrefix(name, envPrefix)
	if v := os.Getenv(envPrefix + name); v != "" {
		return v
	}
	return os.Getenv(legacyEnvPrefix + name)
}

// EnvSet reports whether the variable (or its legacy alias) is set and
// non-empty.
func EnvSet(name string) bool {
	return Getenv(name) != ""
}
