package handler

import "errors"

// ErrInvalidOptions is returned by New when Options cannot describe a
// working handler.
var ErrInvalidOptions = errors.New("handler: invalid options")
