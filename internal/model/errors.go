package model

import "errors"

// Domain error taxonomy. Services wrap these with context; handlers map them to HTTP codes.
var (
	ErrValidation          = errors.New("validation error")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrForbiddenTransition = errors.New("forbidden transition")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrUnauthorized        = errors.New("unauthorized")
)
