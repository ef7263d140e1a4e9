package content

import "errors"

var (
	ErrNotFound     = errors.New("content: not found")
	ErrForbidden    = errors.New("content: forbidden")
	ErrInvalidInput = errors.New("content: invalid input")
	ErrLocked       = errors.New("content: item locked")
	ErrConflict     = errors.New("content: conflict")
)
