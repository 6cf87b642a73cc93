package logger

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"care4-server/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestUseConsole(t *testing.T) {
	assert.True(t, useConsole(&config.Config{Environment: "development"}))
	assert.False(t, useConsole(&config.Config{Environment: "production"}))
	assert.False(t, useConsole(&config.Config{Environment: "development", Logging: config.LoggingConfig{Format: "json"}}))
	assert.True(t, useConsole(&config.Config{Environment: "production", Logging: config.LoggingConfig{Format: "console"}}))
}

func TestNew_WithFileOutput(t *testing.T) {
	cfg := &config.Config{
		Environment: "production",
		Logging: config.LoggingConfig{
			Level:         "debug",
			FilePath:      filepath.Join(t.TempDir(), "care4.log"),
			FileMaxSizeMB: 1,
		},
	}

	log := New(cfg)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
	log.Debug().Msg("file output works")
}
