package errors

import (
	"bytes"
	"fmt"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryBuild    Category = "build"
	CategoryMount    Category = "mount"
	CategoryDOM      Category = "dom"
	CategoryConfig   Category = "config"
	CategoryFixture  Category = "fixture"
	CategorySnapshot Category = "snapshot"
	CategoryCLI      Category = "cli"
)

// Location is a position in a fixture or configuration file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns file:line or file:line:column.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Excerpt is a run of source lines shown under an error's location.
type Excerpt struct {
	// First is the line number of Lines[0].
	First int
	Lines []string
}

// excerptRadius is how many lines are shown on each side of the error line.
const excerptRadius = 2

// GaugeError is a coded error with an optional file location and excerpt.
type GaugeError struct {
	// Code is a unique error identifier (e.g., "E200").
	Code string

	// Category is the error type (build, mount, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is where in a fixture or config file the error is.
	Location *Location

	// Excerpt holds the source lines around Location.
	Excerpt *Excerpt

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *GaugeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *GaugeError) Unwrap() error {
	return e.Wrapped
}

// WithLocation sets the file position of the error.
func (e *GaugeError) WithLocation(file string, line, column int) *GaugeError {
	e.Location = &Location{File: file, Line: line, Column: column}
	return e
}

// WithSource cuts an excerpt around the location's line out of src. It does
// nothing without a location.
func (e *GaugeError) WithSource(src []byte) *GaugeError {
	if e.Location == nil || e.Location.Line < 1 {
		return e
	}
	lines := strings.Split(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	line := e.Location.Line
	if line > len(lines) {
		return e
	}
	first := max(line-excerptRadius, 1)
	last := min(line+excerptRadius, len(lines))
	e.Excerpt = &Excerpt{First: first, Lines: lines[first-1 : last]}
	return e
}

// AtOffset locates the error at a byte offset into src, as reported by
// encoding/json, and attaches the excerpt.
func (e *GaugeError) AtOffset(file string, src []byte, offset int64) *GaugeError {
	if offset < 0 || offset > int64(len(src)) {
		return e
	}
	before := src[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	col := len(before) - bytes.LastIndexByte(before, '\n')
	return e.WithLocation(file, line, col).WithSource(src)
}

// Is reports whether target carries the same error code.
// This lets callers test errors.Is(err, errors.New("E200")).
func (e *GaugeError) Is(target error) bool {
	t, ok := target.(*GaugeError)
	if !ok || t.Code == "" {
		return false
	}
	return e.Code == t.Code
}

// HasCode reports whether err (or anything it wraps) is a GaugeError with code.
func HasCode(err error, code string) bool {
	for err != nil {
		if ge, ok := err.(*GaugeError); ok && ge.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// WithSuggestion adds a fix suggestion to the error.
func (e *GaugeError) WithSuggestion(s string) *GaugeError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *GaugeError) WithDetail(d string) *GaugeError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *GaugeError) Wrap(err error) *GaugeError {
	e.Wrapped = err
	return e
}

// New creates a GaugeError from a registered error code.
func New(code string) *GaugeError {
	template, ok := registry[code]
	if !ok {
		return &GaugeError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &GaugeError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new GaugeError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *GaugeError {
	return &GaugeError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a GaugeError.
func FromError(err error, code string) *GaugeError {
	if err == nil {
		return nil
	}
	if ve, ok := err.(*GaugeError); ok {
		return ve
	}
	return New(code).Wrap(err)
}
