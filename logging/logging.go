package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Configure sets the global zerolog level and output. Pretty selects the
// human readable console writer, otherwise one JSON object per line.
func Configure(level string, pretty bool) error {
	return configure(os.Stderr, level, pretty)
}

func configure(w io.Writer, level string, pretty bool) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}

// ParseLevel accepts zerolog level names; an empty string means info.
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.TrimSpace(strings.ToLower(level))
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "log level %q", level)
	}
	return lvl, nil
}
