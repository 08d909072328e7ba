package loader

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for files whose extension is not yaml, yml, json or toml.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ErrNoDocuments is returned when a path yields no documents at all.
var ErrNoDocuments = errors.New("no documents found")

// ErrDuplicateIdentity is returned when two documents describe the same deployment.
var ErrDuplicateIdentity = errors.New("duplicate deployment")

// ParseError reports a document that is malformed or semantically invalid.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingFieldError reports a document without a required field.
type MissingFieldError struct {
	Source string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Source, e.Field)
}
