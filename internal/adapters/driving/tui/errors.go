package tui

import "errors"

// ErrMissingInputHandler is returned when the input handler is not provided.
var ErrMissingInputHandler = errors.New("tui: input handler is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
