package main

import (
	"errors"

	"github.com/kailas-cloud/gumby/internal/db"
	"github.com/kailas-cloud/gumby/internal/domain"
)

// Exit codes.
const (
	ExitSuccess         = 0 // Success
	ExitError           = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError     = 2 // Configuration error (unreadable or invalid config)
	ExitDataError       = 3 // Data error (malformed input, validation failure)
	ExitConnectionError = 4 // Search engine unreachable
)

var errConfig = errors.New("configuration error")

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errConfig):
		return ExitConfigError
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnknownModel):
		return ExitDataError
	case errors.Is(err, db.ErrConnection):
		return ExitConnectionError
	default:
		return ExitError
	}
}
