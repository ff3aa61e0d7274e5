package gelf

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Level is a syslog severity, 0 (most severe) to 7.
type Level int

// Severity levels, ordered as in <sys/syslog.h>.
const (
	LevelEmergency Level = iota
	LevelAlert
	LevelCritical
	LevelError
	LevelWarning
	LevelNotice
	LevelInfo
	LevelDebug
)

// DefaultLevel is used by Format when Message.Level is nil.
const DefaultLevel = LevelAlert

var levelNames = [...]string{
	LevelEmergency: "EMERG",
	LevelAlert:     "ALERT",
	LevelCritical:  "CRITICAL",
	LevelError:     "ERROR",
	LevelWarning:   "WARNING",
	LevelNotice:    "NOTICE",
	LevelInfo:      "INFO",
	LevelDebug:     "DEBUG",
}

// String returns the canonical upper-case name, e.g. "DEBUG".
func (l Level) String() string {
	if !l.Valid() {
		return "Level(" + strconv.Itoa(int(l)) + ")"
	}
	return levelNames[l]
}

// Valid reports whether l is within 0-7.
func (l Level) Valid() bool {
	return l >= LevelEmergency && l <= LevelDebug
}

// ParseLevel converts v into a Level.
//
// Accepted inputs:
//   - any Go integer type (or an integral float) in 0-7
//   - a Level
//   - a decimal string such as "7"
//   - a case-insensitive name: EMERG, ALERT, CRITICAL, ERROR, WARNING,
//     NOTICE, INFO, DEBUG
//
// Anything else returns an error wrapping ErrInvalidLevel.
func ParseLevel(v any) (Level, error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if n, err := strconv.Atoi(s); err == nil {
			return levelFromInt(int64(n))
		}
		upper := strings.ToUpper(s)
		for i, name := range levelNames {
			if name == upper {
				return Level(i), nil
			}
		}
		return 0, fmt.Errorf("%w: %q is not one of %v", ErrInvalidLevel, s, levelNames)
	}

	n, ok := toInt(v)
	if !ok {
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidLevel, v)
	}
	return levelFromInt(n)
}

// NormalizeLevel returns the canonical name for v, e.g. 7, "7" and "debug"
// all normalise to "DEBUG".
func NormalizeLevel(v any) (string, error) {
	l, err := ParseLevel(v)
	if err != nil {
		return "", err
	}
	return l.String(), nil
}

func levelFromInt(n int64) (Level, error) {
	if n < int64(LevelEmergency) || n > int64(LevelDebug) {
		return 0, fmt.Errorf("%w: %d is out of range 0-7", ErrInvalidLevel, n)
	}
	return Level(n), nil
}

// toInt widens the integer kinds accepted by the parsers in this package.
// Floats are accepted only when integral, which covers JSON-decoded numbers.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case Level:
		return int64(n), true
	case Facility:
		return int64(n), true
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return clampUint(uint64(n)), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return clampUint(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	default:
		return 0, false
	}
}

func clampUint(n uint64) int64 {
	if n > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}

func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
