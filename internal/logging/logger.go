package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"customerbooking/internal/config"

	"github.com/rs/zerolog"
)

// New builds the process logger. Empty fields mean JSON, info level, stdout.
// The returned closer is non-nil only for file output.
func New(cfg config.LoggingConfig, app config.AppConfig) (*zerolog.Logger, io.Closer, error) {
	out, closer, err := openOutput(cfg)
	if err != nil {
		return nil, nil, err
	}

	if normalize(cfg.Format) == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := zerolog.New(out).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("app", app.Name).
		Str("env", app.Environment).
		Str("version", app.Version).
		Logger()

	return &logger, closer, nil
}

// Component derives a sub-logger tagged with the component name.
// A nil parent yields a no-op logger.
func Component(parent *zerolog.Logger, name string) *zerolog.Logger {
	if parent == nil {
		nop := zerolog.Nop()
		return &nop
	}
	l := parent.With().Str("component", name).Logger()
	return &l
}

func openOutput(cfg config.LoggingConfig) (io.Writer, io.Closer, error) {
	switch normalize(cfg.Output) {
	case "", "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, nil, fmt.Errorf("logging.output=file requires logging.file_path")
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return f, f, nil
	default:
		return nil, nil, fmt.Errorf("unknown logging.output %q", cfg.Output)
	}
}

func parseLevel(raw string) zerolog.Level {
	if lvl, err := zerolog.ParseLevel(normalize(raw)); err == nil && lvl != zerolog.NoLevel {
		return lvl
	}
	return zerolog.InfoLevel
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
