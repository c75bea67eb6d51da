package infrastructure

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/architeacher/svc-order-outbox/internal/config"
)

// Logger wraps zerolog so the rest of the code depends on this package, not
// on the logging library directly.
type Logger struct {
	zerolog.Logger
}

func New(cfg config.LoggingConfig) Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger

	switch strings.ToLower(cfg.Format) {
	case "console":
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	default:
		logger = zerolog.New(os.Stderr)
	}

	logger = logger.Level(level).With().Timestamp().Logger()

	return Logger{logger}
}

// NewNop returns a logger that discards everything; used in tests.
func NewNop() Logger {
	return Logger{zerolog.Nop()}
}
