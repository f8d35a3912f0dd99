package shared

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// SetupLogger returns a timestamped console logger at the named level.
// debug forces debug logging.
func SetupLogger(level string, debug bool) (*log.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}
	if debug {
		lvl = log.DebugLevel
	}

	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	}), nil
}
