package project

import "errors"

var (
	ErrNotFound     = errors.New("project: not found")
	ErrForbidden    = errors.New("project: forbidden")
	ErrInvalidInput = errors.New("project: invalid input")
	ErrConflict     = errors.New("project: conflict")
)
