package domain

import (
	"errors"
	"fmt"
)

var (
	ErrParse              = errors.New("parse error")
	ErrMissingField       = errors.New("missing field")
	ErrInvalidRange       = errors.New("invalid range: start date after end date")
	ErrUnknownField       = errors.New("unknown field")
	ErrNotFound           = errors.New("not found")
	ErrDatasetUnavailable = errors.New("dataset unavailable")
	ErrNotConfigured      = errors.New("not configured")
)

// RowError ties a row-level failure to its source position.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("row %d, column %q: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("column %q: %v", e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
