// Package apperr holds the error kinds shared across coursebook packages.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrMalformedModule   = errors.New("malformed module")
	ErrDuplicateOrdinal  = errors.New("duplicate ordinal")
	ErrMalformedResource = errors.New("malformed resource")
	ErrMissingSolution   = errors.New("missing solution")
	ErrMalformedLine     = errors.New("malformed checklist line")
)
