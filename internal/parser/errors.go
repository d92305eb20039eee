package parser

import (
	"errors"
	"fmt"
)

// NoCode is the code of a ParseError that has no numeric detail
const NoCode = -1

var (
	// ErrMalformed classifies payloads that are not the expected JSON envelope
	ErrMalformed = errors.New("malformed payload")
	// ErrLanguage classifies documents without a section in the target language
	ErrLanguage = errors.New("language mismatch")
)

// ParseError is returned for every payload the parser rejects.
// Code carries the byte offset of JSON syntax errors and NoCode otherwise.
type ParseError struct {
	Message string
	Code    int
	kind    error
}

func (e *ParseError) Error() string {
	return e.Message
}

// Unwrap exposes the error class, ErrMalformed or ErrLanguage
func (e *ParseError) Unwrap() error {
	return e.kind
}

func malformed(format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), Code: NoCode, kind: ErrMalformed}
}

func missing(key string) *ParseError {
	return malformed("parse json data is not correct, '%s' is missing", key)
}

func languageNotFound(want string) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf("language section %q not found", want),
		Code:    NoCode,
		kind:    ErrLanguage,
	}
}

func languageMismatch(found, want string) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf("language mismatch: found %q, want %q", found, want),
		Code:    NoCode,
		kind:    ErrLanguage,
	}
}
