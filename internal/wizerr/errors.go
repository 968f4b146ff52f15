// Package wizerr defines the single error kind raised by every stage of the
// query wizard.
//
// Each failure carries a category Code, a human-readable message, the source
// locator of the entry that caused it (a text line, a CSV row, or an entry
// index) and, for grouped inputs, the saved query group it belongs to.
// Compilation is fail-fast: the first Error aborts the whole run.
package wizerr

import (
	"errors"
	"fmt"
	"strings"
)

// Code categorizes wizard errors.
type Code string

const (
	// CodeMalformedEntry indicates an entry violates its surface syntax.
	CodeMalformedEntry Code = "MALFORMED_ENTRY"

	// CodeFieldNotFound indicates a field reference did not resolve.
	CodeFieldNotFound Code = "FIELD_NOT_FOUND"

	// CodeReservedField indicates the all-fields sentinel was referenced.
	CodeReservedField Code = "RESERVED_FIELD"

	// CodeNotComplex indicates a complex entry named a non-complex field.
	CodeNotComplex Code = "NOT_COMPLEX"

	// CodeSubFieldNotFound indicates a sub-field is not declared by its parent.
	CodeSubFieldNotFound Code = "SUB_FIELD_NOT_FOUND"

	// CodeUnmappedFieldType indicates no type profile matches a field schema.
	CodeUnmappedFieldType Code = "UNMAPPED_FIELD_TYPE"

	// CodeInvalidOperator indicates the operator is not valid for the field type.
	CodeInvalidOperator Code = "INVALID_OPERATOR"

	// CodeInvalidValue indicates a value is empty or could not be coerced.
	CodeInvalidValue Code = "INVALID_VALUE"

	// CodeInvalidChoice indicates a value is not one of the allowed candidates.
	CodeInvalidChoice Code = "INVALID_CHOICE"

	// CodeNoCandidates indicates an external candidate list was empty.
	CodeNoCandidates Code = "NO_CANDIDATES"

	// CodeEmptyComplex indicates a complex entry has no sub-entries.
	CodeEmptyComplex Code = "EMPTY_COMPLEX"

	// CodeInvalidInput indicates a catalog, lookup or config document is malformed.
	CodeInvalidInput Code = "INVALID_INPUT"
)

// Codes lists every category.
var Codes = []Code{
	CodeMalformedEntry, CodeFieldNotFound, CodeReservedField, CodeNotComplex,
	CodeSubFieldNotFound, CodeUnmappedFieldType, CodeInvalidOperator, CodeInvalidValue,
	CodeInvalidChoice, CodeNoCandidates, CodeEmptyComplex, CodeInvalidInput,
}

// Known reports whether c is one of Codes.
func (c Code) Known() bool {
	for _, known := range Codes {
		if c == known {
			return true
		}
	}
	return false
}

// Error is the error kind returned by the wizard.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Source locates the originating entry (e.g. "text string line #3: ...").
	Source string

	// Group is the enclosing saved query name, if any.
	Group string

	// Hints lists valid alternatives (field names, operators, choices).
	Hints []string

	// Err is the underlying cause, if any.
	Err error
}

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that wraps an underlying cause.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithHints sets the list of valid alternatives and returns e.
func (e *Error) WithHints(hints ...string) *Error {
	e.Hints = hints
	return e
}

// At records the source locator unless one is already set.
func (e *Error) At(source string) *Error {
	if e.Source == "" {
		e.Source = source
	}
	return e
}

// In records the saved query group unless one is already set.
func (e *Error) In(group string) *Error {
	if e.Group == "" {
		e.Group = group
	}
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Group != "" {
		fmt.Fprintf(&b, " (group %q)", e.Group)
	}
	if e.Source != "" {
		fmt.Fprintf(&b, "\n  from %s", e.Source)
	}
	for _, h := range e.Hints {
		fmt.Fprintf(&b, "\n  - %s", h)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var we *Error
	if errors.As(err, &we) {
		return we, true
	}
	return nil, false
}

// Is reports whether err is a wizard Error with the given code.
func Is(err error, code Code) bool {
	we, ok := As(err)
	return ok && we.Code == code
}

// IsMalformedEntry returns true if err is a malformed entry error.
func IsMalformedEntry(err error) bool {
	return Is(err, CodeMalformedEntry)
}

// IsFieldNotFound returns true if err is an unknown field error.
func IsFieldNotFound(err error) bool {
	return Is(err, CodeFieldNotFound)
}

// IsInvalidOperator returns true if err is an invalid operator error.
func IsInvalidOperator(err error) bool {
	return Is(err, CodeInvalidOperator)
}

// IsInvalidValue returns true if err is an invalid value error.
func IsInvalidValue(err error) bool {
	return Is(err, CodeInvalidValue)
}

// IsInvalidChoice returns true if err is an enum or candidate violation.
func IsInvalidChoice(err error) bool {
	return Is(err, CodeInvalidChoice)
}

// Locate attaches source and group to err if it is a wizard Error.
// Other errors are wrapped into a CodeMalformedEntry Error.
func Locate(err error, source, group string) error {
	if err == nil {
		return nil
	}
	we, ok := As(err)
	if !ok {
		we = Wrap(CodeMalformedEntry, err, "unexpected error")
	}
	we.At(source)
	if group != "" {
		we.In(group)
	}
	return we
}
