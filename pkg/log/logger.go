package log

import (
	"io"
	"strings"

	"github.com/YuminosukeSato/varforest/pkg/errors"
)

// SetupLogger installs a zerolog provider writing to w at the named level
// ("debug", "info", "warn" or "error").
func SetupLogger(w io.Writer, loglevel string) error {
	level, err := ToLogLevel(loglevel)
	if err != nil {
		return err
	}
	SetProvider(NewZerologProvider(w, level))
	return nil
}

// ToLogLevel parses a level name.
func ToLogLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.NewValidationError("log-level", "must be one of debug, info, warn, error", level)
	}
}
