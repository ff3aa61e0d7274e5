package gelf

import (
	"errors"
	"fmt"
)

// Domain errors for the gelf package.
//
// The three field errors wrap ErrInvalidPayload, so callers can test for
// either the specific rule or payload validation as a whole:
//
//	if errors.Is(err, gelf.ErrInvalidPayload) {
//	    // caller bug: bad payload shape
//	}
var (
	// ErrInvalidPayload is the parent of every payload validation failure.
	ErrInvalidPayload = errors.New("gelf: invalid payload")

	// ErrMissingField is returned when version, host or short_message is absent.
	ErrMissingField = fmt.Errorf("%w: missing required field", ErrInvalidPayload)

	// ErrInvalidField is returned for a key that is neither a GELF built-in
	// nor prefixed with an underscore.
	ErrInvalidField = fmt.Errorf("%w: invalid field", ErrInvalidPayload)

	// ErrReservedField is returned when the reserved "_id" key is used.
	ErrReservedField = fmt.Errorf("%w: reserved field", ErrInvalidPayload)

	// ErrInvalidLevel is returned for a severity outside 0-7 or an unknown name.
	ErrInvalidLevel = errors.New("gelf: invalid level")

	// ErrInvalidFacility is returned for a facility outside 0-23 or an unknown name.
	ErrInvalidFacility = errors.New("gelf: invalid facility")

	// ErrInvalidPriority is returned for a priority outside 0-7 or an unknown name.
	ErrInvalidPriority = errors.New("gelf: invalid priority")
)
