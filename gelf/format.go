package gelf

import (
	"fmt"
	"os"
	"time"
)

// FieldApplication carries Message.AppName.
const FieldApplication = "_application"

// Message holds the inputs to Format. Zero values select per-call defaults.
type Message struct {
	// ShortMessage is the short descriptive message. Required by GELF but
	// an empty string is accepted.
	ShortMessage string

	// Host is the originating host. Empty means os.Hostname(), looked up on
	// every call so a renamed host is picked up by long-running processes.
	Host string

	// FullMessage holds detail such as a backtrace. Omitted when empty.
	FullMessage string

	// Version defaults to "1.1".
	Version string

	// Timestamp defaults to the current time. It is written as fractional
	// seconds since the Unix epoch.
	Timestamp time.Time

	// Level is an integer 0-7, a numeric string or a severity name.
	// Nil selects DefaultLevel.
	Level any

	// AppName is written to the "_application" extension when non-empty.
	AppName string

	// Extra is merged in after the built-ins. Every key must begin with "_"
	// and "_id" is forbidden.
	Extra map[string]any
}

// Format builds a GELF payload from m.
//
// The returned Payload always passes Validate. Errors wrap ErrInvalidLevel,
// ErrInvalidField or ErrReservedField.
func Format(m Message) (Payload, error) {
	level := m.Level
	if level == nil {
		level = DefaultLevel
	}
	levelName, err := NormalizeLevel(level)
	if err != nil {
		return nil, err
	}

	for key := range m.Extra {
		if err := checkExtensionName(key); err != nil {
			return nil, err
		}
	}

	host := m.Host
	if host == "" {
		host = Hostname()
	}
	version := m.Version
	if version == "" {
		version = Version
	}
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	p := make(Payload, 6+len(m.Extra))
	p[FieldVersion] = version
	p[FieldHost] = host
	p[FieldShortMessage] = m.ShortMessage
	p[FieldLevel] = levelName
	p[FieldTimestamp] = EpochSeconds(ts)
	if m.FullMessage != "" {
		p[FieldFullMessage] = m.FullMessage
	}
	if m.AppName != "" {
		p[FieldApplication] = m.AppName
	}
	for key, value := range m.Extra {
		p[key] = value
	}

	return p, nil
}

// EpochSeconds converts t to fractional seconds since the Unix epoch with
// microsecond resolution.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixMicro()) / float64(time.Second/time.Microsecond)
}

// Hostname returns the local host name, or "localhost" if it cannot be read.
func Hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "localhost"
	}
	return name
}

// String implements fmt.Stringer for log output.
func (p Payload) String() string {
	return fmt.Sprintf("gelf.Payload{host=%v short_message=%v}", p[FieldHost], p[FieldShortMessage])
}
