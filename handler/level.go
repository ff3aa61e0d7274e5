package handler

import (
	"log/slog"

	"github.com/nerrad567/graylogging/gelf"
)

// LevelCritical is the slog level that maps to the GELF CRITICAL level.
const LevelCritical = slog.LevelError + 4

// gelfLevel maps a slog level onto the syslog severity scale. Levels between
// the named slog levels round down to the nearer named one.
func gelfLevel(l slog.Level) gelf.Level {
	switch {
	case l < slog.LevelInfo:
		return gelf.LevelDebug
	case l < slog.LevelWarn:
		return gelf.LevelInfo
	case l < slog.LevelError:
		return gelf.LevelWarning
	case l < LevelCritical:
		return gelf.LevelError
	default:
		return gelf.LevelCritical
	}
}
