// Package logging sets up the process diagnostic stream: zerolog on
// stderr, optionally fanned out to a Graylog GELF endpoint.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Setup builds the root logger at the configured level. Component loggers
// hang off it via With().Str("component", ...).
func Setup(level string) zerolog.Logger {
	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339},
	}

	if viper.GetBool("graylog.enabled") {
		if w, err := gelf.NewWriter(viper.GetString("graylog.address")); err == nil {
			writers = append(writers, w)
		}
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger().
		Level(parseLevel(level))

	return log
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
