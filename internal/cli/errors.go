// Package cli implements the command-line interface.
package cli

import "errors"

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Project errors
	ErrProjectNotFound     = "PROJECT_NOT_FOUND"
	ErrProjectNotSpecified = "PROJECT_NOT_SPECIFIED"
	ErrProjectInvalid      = "PROJECT_INVALID"
	ErrProjectExists       = "PROJECT_EXISTS"
	ErrConfigInvalid       = "CONFIG_INVALID"

	// Lookup errors
	ErrCollectionNotFound = "COLLECTION_NOT_FOUND"
	ErrObjectNotFound     = "OBJECT_NOT_FOUND"
	ErrFieldNotFound      = "FIELD_NOT_FOUND"
	ErrFieldInherited     = "FIELD_INHERITED"

	// File errors
	ErrFileReadError  = "FILE_READ_ERROR"
	ErrFileWriteError = "FILE_WRITE_ERROR"

	// Input errors
	ErrInvalidInput    = "INVALID_INPUT"
	ErrInvalidValue    = "INVALID_VALUE"
	ErrMissingArgument = "MISSING_ARGUMENT"

	// Operation errors
	ErrExportFailed = "EXPORT_FAILED"
	ErrScriptFailed = "SCRIPT_FAILED"
	ErrServerFailed = "SERVER_FAILED"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnNoChange      = "NO_CHANGE"
	WarnUnsavedScript = "DRY_RUN"
)

// codedError carries a stable error code and an optional suggestion up to the
// command that reports it.
type codedError struct {
	code       string
	err        error
	suggestion string
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withCode(code string, err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err, suggestion: suggestion}
}

// handleCoded reports err with the code attached by withCode, or ErrInternal.
func handleCoded(err error) error {
	if err == nil {
		return nil
	}
	var ce *codedError
	if errors.As(err, &ce) {
		return handleError(ce.code, err, ce.suggestion)
	}
	return handleError(ErrInternal, err, "")
}
