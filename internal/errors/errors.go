// Package errors defines the coded error type shared by the chart pipeline.
//
// Every failure the pipeline reports to a caller is an *Error carrying a
// machine-readable Code. Codes group into categories so the HTTP layer can
// decide between client errors (bad input, bad column, bad style) and server
// errors (the rendering backend failed).
//
//	err := errors.New(errors.ErrCodeColumnNotFound, "column %q not found in data", name)
//	if errors.Is(err, errors.ErrCodeColumnNotFound) {
//	    // reject the request
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Input format errors.
const (
	ErrCodeDecode               Code = "DECODE_ERROR"
	ErrCodeEmptyInput           Code = "EMPTY_INPUT"
	ErrCodeMalformedCSV         Code = "MALFORMED_CSV"
	ErrCodeMalformedJSON        Code = "MALFORMED_JSON"
	ErrCodeMalformedSpreadsheet Code = "MALFORMED_SPREADSHEET"
	ErrCodeInvalidStructure     Code = "INVALID_STRUCTURE"
	ErrCodeUnsupportedFormat    Code = "UNSUPPORTED_FORMAT"
	ErrCodeInvalidRequest       Code = "INVALID_REQUEST"
	ErrCodeInvalidChartType     Code = "INVALID_CHART_TYPE"
)

// Data validation errors.
const (
	ErrCodeColumnNotFound Code = "COLUMN_NOT_FOUND"
	ErrCodeNoValidSeries  Code = "NO_VALID_SERIES"
)

// Style errors.
const (
	ErrCodeUnknownPreset         Code = "UNKNOWN_PRESET"
	ErrCodeInvalidStyleParameter Code = "INVALID_STYLE_PARAMETER"
)

// Backend errors.
const (
	ErrCodeRenderBackend Code = "RENDER_BACKEND"
)

// Category groups codes by who is at fault.
type Category string

const (
	CategoryInputFormat Category = "input_format"
	CategoryData        Category = "data"
	CategoryStyle       Category = "style"
	CategoryBackend     Category = "backend"
	CategoryUnknown     Category = "unknown"
)

var categories = map[Code]Category{
	ErrCodeDecode:                CategoryInputFormat,
	ErrCodeEmptyInput:            CategoryInputFormat,
	ErrCodeMalformedCSV:          CategoryInputFormat,
	ErrCodeMalformedJSON:         CategoryInputFormat,
	ErrCodeMalformedSpreadsheet:  CategoryInputFormat,
	ErrCodeInvalidStructure:      CategoryInputFormat,
	ErrCodeUnsupportedFormat:     CategoryInputFormat,
	ErrCodeInvalidRequest:        CategoryInputFormat,
	ErrCodeInvalidChartType:      CategoryInputFormat,
	ErrCodeColumnNotFound:        CategoryData,
	ErrCodeNoValidSeries:         CategoryData,
	ErrCodeUnknownPreset:         CategoryStyle,
	ErrCodeInvalidStyleParameter: CategoryStyle,
	ErrCodeRenderBackend:         CategoryBackend,
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// CategoryOf returns the category of err's code, or CategoryUnknown for
// errors that did not originate in the pipeline.
func CategoryOf(err error) Category {
	if c, ok := categories[GetCode(err)]; ok {
		return c
	}
	return CategoryUnknown
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	switch CategoryOf(err) {
	case CategoryInputFormat, CategoryData, CategoryStyle:
		return true
	}
	return false
}

// UserMessage returns a user-friendly message for the error.
// For render backend failures the cause is appended so operators can see
// what the native tool reported.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Code == ErrCodeRenderBackend && e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
