package gelf

import (
	"fmt"
	"strconv"
	"strings"
)

// Facility is a syslog facility code, 0-23.
type Facility int

// Facility codes from <sys/syslog.h>. Codes 12-15 are reserved for system use.
const (
	FacilityKern     Facility = 0
	FacilityUser     Facility = 1
	FacilityMail     Facility = 2
	FacilityDaemon   Facility = 3
	FacilityAuth     Facility = 4
	FacilitySyslog   Facility = 5
	FacilityLPR      Facility = 6
	FacilityNews     Facility = 7
	FacilityUUCP     Facility = 8
	FacilityCron     Facility = 9
	FacilityAuthPriv Facility = 10
	FacilityFTP      Facility = 11
	FacilityLocal0   Facility = 16
	FacilityLocal1   Facility = 17
	FacilityLocal2   Facility = 18
	FacilityLocal3   Facility = 19
	FacilityLocal4   Facility = 20
	FacilityLocal5   Facility = 21
	FacilityLocal6   Facility = 22
	FacilityLocal7   Facility = 23
)

// DefaultFacility is used when no facility is configured.
const DefaultFacility = FacilityUser

const (
	maxFacility = FacilityLocal7
	maxPriority = LevelDebug
)

var facilityNames = map[string]Facility{
	"auth":     FacilityAuth,
	"authpriv": FacilityAuthPriv,
	"cron":     FacilityCron,
	"daemon":   FacilityDaemon,
	"ftp":      FacilityFTP,
	"kern":     FacilityKern,
	"lpr":      FacilityLPR,
	"mail":     FacilityMail,
	"news":     FacilityNews,
	"security": FacilityAuth, // deprecated alias
	"syslog":   FacilitySyslog,
	"user":     FacilityUser,
	"uucp":     FacilityUUCP,
	"local0":   FacilityLocal0,
	"local1":   FacilityLocal1,
	"local2":   FacilityLocal2,
	"local3":   FacilityLocal3,
	"local4":   FacilityLocal4,
	"local5":   FacilityLocal5,
	"local6":   FacilityLocal6,
	"local7":   FacilityLocal7,
}

var priorityNames = map[string]Level{
	"alert":    LevelAlert,
	"crit":     LevelCritical,
	"critical": LevelCritical,
	"debug":    LevelDebug,
	"emerg":    LevelEmergency,
	"err":      LevelError,
	"error":    LevelError, // deprecated
	"info":     LevelInfo,
	"notice":   LevelNotice,
	"panic":    LevelEmergency, // deprecated
	"warn":     LevelWarning,   // deprecated
	"warning":  LevelWarning,
}

// ParseFacility converts an integer, numeric string or facility name
// ("user", "local6", ...) into a Facility. Names are case-insensitive.
func ParseFacility(v any) (Facility, error) {
	if s, ok := v.(string); ok {
		s = strings.ToLower(strings.TrimSpace(s))
		if n, err := strconv.Atoi(s); err == nil {
			return facilityFromInt(int64(n))
		}
		if f, ok := facilityNames[s]; ok {
			return f, nil
		}
		return 0, fmt.Errorf("%w: %q is not a facility name", ErrInvalidFacility, s)
	}

	n, ok := toInt(v)
	if !ok {
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidFacility, v)
	}
	return facilityFromInt(n)
}

func facilityFromInt(n int64) (Facility, error) {
	if n < 0 || n > int64(maxFacility) {
		return 0, fmt.Errorf("%w: %d is out of range 0-%d", ErrInvalidFacility, n, maxFacility)
	}
	return Facility(n), nil
}

// ParsePriority converts an integer, numeric string or syslog priority name
// ("debug", "warning", "crit", ...) into a severity. Names are case-insensitive.
func ParsePriority(v any) (Level, error) {
	if s, ok := v.(string); ok {
		s = strings.ToLower(strings.TrimSpace(s))
		if n, err := strconv.Atoi(s); err == nil {
			return priorityFromInt(int64(n))
		}
		if p, ok := priorityNames[s]; ok {
			return p, nil
		}
		return 0, fmt.Errorf("%w: %q is not a priority name", ErrInvalidPriority, s)
	}

	n, ok := toInt(v)
	if !ok {
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidPriority, v)
	}
	return priorityFromInt(n)
}

func priorityFromInt(n int64) (Level, error) {
	if n < 0 || n > int64(maxPriority) {
		return 0, fmt.Errorf("%w: %d is out of range 0-%d", ErrInvalidPriority, n, maxPriority)
	}
	return Level(n), nil
}

// EncodePriority combines a facility and a priority into the syslog code
// (facility << 3) | priority. Either argument may be an integer or a name.
//
// Example:
//
//	code, _ := gelf.EncodePriority("local6", "debug") // 183
func EncodePriority(facility, priority any) (int, error) {
	f, err := ParseFacility(facility)
	if err != nil {
		return 0, err
	}
	p, err := ParsePriority(priority)
	if err != nil {
		return 0, err
	}
	return int(f)<<3 | int(p), nil
}
