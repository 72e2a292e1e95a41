package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is returned when raw input is not well-formed tabular data.
	ErrParse = errors.New("parse error")

	// ErrNoDatasetLoaded is returned by store operations issued before a load.
	ErrNoDatasetLoaded = errors.New("no dataset loaded")

	// ErrUnknownColumn is returned when a named column is absent.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrEmptySelection is returned when an operation receives no columns.
	ErrEmptySelection = errors.New("empty selection")

	// ErrTypeMismatch is returned when a statistic or encoding does not apply to the column type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrEmptyColumn is returned when a statistic is undefined because every value is missing.
	ErrEmptyColumn = errors.New("empty column")

	// ErrInvalidParameter is returned for out-of-range or unknown arguments.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNameCollision is returned when an operation would produce duplicate column names.
	ErrNameCollision = errors.New("name collision")
)

// OpError attaches the failing operation and column to one of the sentinel errors.
type OpError struct {
	Op     string
	Column string
	Msg    string
	Err    error
}

func (e *OpError) Error() string {
	s := e.Op
	if e.Column != "" {
		s += fmt.Sprintf(" %q", e.Column)
	}
	s += ": " + e.Err.Error()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *OpError) Unwrap() error { return e.Err }

// ParseError reports malformed input at load time. Line is 1-based, 0 when unknown.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes every ParseError match ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }
