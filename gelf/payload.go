package gelf

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Version is the GELF specification version written by Format.
const Version = "1.1"

// GELF built-in field names.
const (
	FieldVersion      = "version"
	FieldHost         = "host"
	FieldShortMessage = "short_message"
	FieldFullMessage  = "full_message"
	FieldTimestamp    = "timestamp"
	FieldLevel        = "level"
)

// reservedField is used internally by Graylog and may never be sent.
const reservedField = "_id"

// extensionPrefix marks caller-defined fields.
const extensionPrefix = "_"

var requiredFields = []string{FieldVersion, FieldHost, FieldShortMessage}

var builtinFields = map[string]struct{}{
	FieldVersion:      {},
	FieldHost:         {},
	FieldShortMessage: {},
	FieldFullMessage:  {},
	FieldTimestamp:    {},
	FieldLevel:        {},
}

// Payload is one GELF event: a flat mapping of field names to JSON values.
//
// A Payload is built per log event, validated once, handed to one transport
// client and then dropped. It is not safe for concurrent mutation.
type Payload map[string]any

// Validate checks p against the GELF structural rules.
//
// Rules, checked in this order:
//  1. version, host and short_message must be present (ErrMissingField)
//  2. "_id" must be absent (ErrReservedField)
//  3. every other key must be a built-in or start with "_" (ErrInvalidField)
//
// Validate has no side effects.
func Validate(p Payload) error {
	for _, key := range requiredFields {
		if _, ok := p[key]; !ok {
			return fmt.Errorf("%w: %q is required", ErrMissingField, key)
		}
	}

	if _, ok := p[reservedField]; ok {
		return fmt.Errorf("%w: %q is reserved for internal use", ErrReservedField, reservedField)
	}

	// Sorted so the reported key is stable across runs.
	for _, key := range slices.Sorted(maps.Keys(p)) {
		if err := checkFieldName(key); err != nil {
			return err
		}
	}

	return nil
}

// Valid reports whether p passes Validate.
func (p Payload) Valid() bool {
	return Validate(p) == nil
}

// checkFieldName applies the key rule shared by Validate and Format.
func checkFieldName(key string) error {
	if key == reservedField {
		return fmt.Errorf("%w: %q is reserved for internal use", ErrReservedField, key)
	}
	if _, ok := builtinFields[key]; ok {
		return nil
	}
	if !strings.HasPrefix(key, extensionPrefix) {
		return fmt.Errorf("%w: %q must begin with an underscore", ErrInvalidField, key)
	}
	return nil
}

// checkExtensionName accepts only "_"-prefixed keys other than "_id".
func checkExtensionName(key string) error {
	if key == reservedField {
		return fmt.Errorf("%w: %q is reserved for internal use", ErrReservedField, key)
	}
	if !strings.HasPrefix(key, extensionPrefix) {
		return fmt.Errorf("%w: %q must begin with an underscore", ErrInvalidField, key)
	}
	return nil
}
