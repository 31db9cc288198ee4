// Package observability configures the process-wide zerolog logger.
package observability

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Duel/internal/config"
)

// NewLogger builds a logger writing to w. "console" is the human-friendly
// terminal output; "json" is one object per line.
func NewLogger(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}
	if level == zerolog.NoLevel {
		return zerolog.Nop(), fmt.Errorf("log level must be set")
	}

	switch cfg.Format {
	case "console":
		w = zerolog.ConsoleWriter{Out: w}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// Setup replaces the global logger used through github.com/rs/zerolog/log.
func Setup(cfg config.LogConfig) error {
	logger, err := NewLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = logger
	return nil
}
