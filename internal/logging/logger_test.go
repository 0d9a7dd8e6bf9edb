package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.TraceLevel, ParseLevel("trace"))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestNewFromEnvRespectsLevel(t *testing.T) {
	t.Setenv("OMNOTE_LOG_LEVEL", "error")
	log := NewFromEnv()
	assert.Equal(t, zerolog.ErrorLevel, log.GetLevel())
}

func TestDebugEnvRaisesLevel(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("OMNOTE_LOG_LEVEL", "warn")
	t.Setenv("OMNOTE_DEBUG", "1")

	log := NewFromEnv()
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
}
