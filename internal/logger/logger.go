// Package logger builds the zerolog logger shared by the server, the gorm
// connection and the submission pipeline.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"care4-server/internal/config"
)

// New builds a logger from config. Development defaults to a console writer,
// everything else to JSON; a rotating file is added when LOG_FILE_PATH is set.
func New(cfg *config.Config) zerolog.Logger {
	var writers []io.Writer

	if useConsole(cfg) {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		writers = append(writers, os.Stdout)
	}

	if cfg.Logging.FilePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.Logging.FilePath,
			MaxSize:    cfg.Logging.FileMaxSizeMB,
			MaxBackups: cfg.Logging.FileMaxBackups,
			MaxAge:     cfg.Logging.FileMaxAgeDays,
			Compress:   true,
		})
	}

	var out io.Writer = writers[0]
	if len(writers) > 1 {
		out = zerolog.MultiLevelWriter(writers...)
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Logging.Level)).
		With().
		Timestamp().
		Str("service", "care4-server").
		Str("env", cfg.Environment).
		Logger()
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func useConsole(cfg *config.Config) bool {
	switch strings.ToLower(cfg.Logging.Format) {
	case "json":
		return false
	case "console", "text":
		return true
	}
	return cfg.IsDev()
}
