package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lrclib/lrclib/src/features/config"
)

// SetupLogger builds the application-wide slog logger backed by a
// charmbracelet handler. The level comes from the config, overridable
// through the LRCLIB_LOG environment variable.
func SetupLogger(cfg *config.Manager) *slog.Logger {
	var formatter log.Formatter
	switch cfg.Get().Logger.Format {
	case "json":
		formatter = log.JSONFormatter
	case "text":
		formatter = log.TextFormatter
	default:
		formatter = log.LogfmtFormatter
	}

	levelName := cfg.Get().Logger.Level
	if env := os.Getenv("LRCLIB_LOG"); env != "" {
		levelName = env
	}

	level := log.InfoLevel
	switch levelName {
	case "debug":
		level = log.DebugLevel
	case "info":
		level = log.InfoLevel
	case "warn":
		level = log.WarnLevel
	case "error":
		level = log.ErrorLevel
	}

	handler := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "lrclib",
		Formatter:       formatter,
		Level:           level,
	})

	logger := slog.New(handler)
	logger.Info("Logger initialized", "level", levelName, "format", cfg.Get().Logger.Format)
	return logger
}
