package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the global logger.
type Config struct {
	Level  string // trace, debug, info, warn, error
	Format string // console or json
	File   string // optional rotating log file
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		lvl, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
		}
		level = lvl
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	if cfg.File != "" {
		// the file always gets JSON, whatever the console format
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		})
	}

	log.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return log.Logger, nil
}
