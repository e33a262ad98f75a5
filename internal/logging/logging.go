// internal/logging/logging.go
// Package: logging

// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DfltLevel is used when no level is configured.
const DfltLevel = "info"

// Conf selects the log level and an optional log file. Without a path,
// human readable output goes to stderr.
type Conf struct {
	Level string `json:"level" mapstructure:"level"`
	Path  string `json:"path" mapstructure:"path"`
}

// Setup installs the global logger described by conf. The returned
// closer releases the log file, if any.
func Setup(conf Conf) (io.Closer, error) {
	if conf.Level == "" {
		conf.Level = DfltLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(conf.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	if conf.Path == "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
		return nopCloser{}, nil
	}
	f, err := os.OpenFile(conf.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// To redirects the global logger to w, without colors. Meant for tests
// and for capturing output.
func To(w io.Writer) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.TimeOnly})
}
