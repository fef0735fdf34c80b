package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("parse error")
	// ErrMissingResource is matched by every *MissingResourceError.
	ErrMissingResource = errors.New("missing resource")
	// ErrDomainRange is matched by every *DomainRangeError.
	ErrDomainRange = errors.New("domain range error")
)

// ParseError reports a control-file line or manifest row that cannot be
// decomposed into the expected fields.
type ParseError struct {
	Source string // file path, or "" for in-memory input
	Line   int    // 1-based
	Text   string // offending content
	Reason string
}

func (e *ParseError) Error() string {
	src := e.Source
	if src == "" {
		src = "<input>"
	}
	if e.Reason != "" {
		return fmt.Sprintf("%s:%d: %s: %q", src, e.Line, e.Reason, e.Text)
	}
	return fmt.Sprintf("%s:%d: malformed line %q", src, e.Line, e.Text)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// MissingResourceError reports an expected file that does not exist.
type MissingResourceError struct {
	Resource string // what was looked for, e.g. "control file"
	Location string // where it was looked for
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("%s not found in %s", e.Resource, e.Location)
}

func (e *MissingResourceError) Unwrap() error { return ErrMissingResource }

// DomainRangeError reports an input outside the range an operation accepts.
type DomainRangeError struct {
	Field  string
	Reason string
}

func (e *DomainRangeError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *DomainRangeError) Unwrap() error { return ErrDomainRange }

func rangeErrorf(field, format string, args ...any) error {
	return &DomainRangeError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
