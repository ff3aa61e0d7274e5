// Package gelf builds and validates GELF 1.1 payloads.
//
// GELF (Graylog Extended Log Format) is a flat JSON object describing one
// log event. This package owns the payload shape and nothing else: it does
// not open sockets or know about transports.
//
// # Payload Shape
//
//	{
//	  "version": "1.1",                    // required
//	  "host": "web-01",                    // required
//	  "short_message": "disk almost full", // required
//	  "full_message": "...",               // optional
//	  "timestamp": 1385053862.3072,        // optional, seconds since epoch
//	  "level": "WARNING",                  // optional, canonical severity name
//	  "_application": "billing",           // extension fields start with "_"
//	  "_priority": 12
//	}
//
// The key "_id" is reserved by Graylog and is always rejected.
//
// # Key Operations
//
//   - Validate: checks a Payload against the rules above
//   - Format: builds a Payload from a Message, filling per-call defaults
//   - ParseLevel / NormalizeLevel: severity as int, numeric string or name
//   - EncodePriority: syslog (facility << 3) | priority code
//
// # Usage
//
//	p, err := gelf.Format(gelf.Message{
//	    ShortMessage: "hello",
//	    Host:         "h1",
//	    Level:        "debug",
//	})
//	if err != nil {
//	    return err
//	}
//	// p["level"] == "DEBUG", p["version"] == "1.1"
package gelf
