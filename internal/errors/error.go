package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryDefinition Category = "definition"
	CategoryLookup     Category = "lookup"
	CategorySource     Category = "source"
	CategoryConfig     Category = "config"
	CategoryServer     Category = "server"
	CategoryCLI        Category = "cli"
)

// Location represents a position in a definition or config file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is a structured error with location, suggestion and documentation.
type Error struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the file position where the error occurred.
	Location *Location

	// Context contains surrounding source lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example shows the correct approach.
	Example string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches another *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithLocation adds a file location.
func (e *Error) WithLocation(file string, line, column int) *Error {
	e.Location = &Location{File: file, Line: line, Column: column}
	return e
}

// WithSource fills Context with the lines of src around the location.
// It does nothing when no location is set.
func (e *Error) WithSource(src []byte) *Error {
	if e.Location != nil {
		e.Context = sourceLines(src, e.Location.Line)
	}
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithExample adds an example to the error.
func (e *Error) WithExample(ex string) *Error {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// contextRadius is the number of lines shown on each side of a location.
const contextRadius = 2

// sourceLines returns the lines of src within contextRadius of line.
func sourceLines(src []byte, line int) []string {
	if line < 1 {
		return nil
	}
	var lines []string
	for i, l := range bytes.Split(src, []byte("\n")) {
		n := i + 1
		if n > line+contextRadius {
			break
		}
		if n >= line-contextRadius {
			lines = append(lines, string(bytes.TrimRight(l, "\r")))
		}
	}
	return lines
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an Error.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if fe, ok := As(err); ok {
		return fe
	}
	return New(code).Wrap(err)
}

// As returns err as an *Error if it is one or wraps one.
func As(err error) (*Error, bool) {
	var fe *Error
	if stderrors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	if fe, ok := As(err); ok {
		return fe.Code
	}
	return ""
}
