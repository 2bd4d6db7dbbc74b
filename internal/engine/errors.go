package engine

import (
	"errors"
	"fmt"
)

// Common engine errors
var (
	// ErrEngineNotFound is returned when an external engine executable cannot
	// be located via explicit configuration, PATH, or platform defaults.
	// Wrapped errors name the engine that is missing.
	ErrEngineNotFound = errors.New("external engine not found")

	// ErrRecognitionFailed is returned when the recognition engine fails on
	// one page (crash, unsupported image, timeout). It is scoped to that
	// page and never aborts the whole run.
	ErrRecognitionFailed = errors.New("text recognition failed")

	// ErrRasterizationFailed is returned when PDF-to-image conversion fails.
	// It is fatal: no pages are available to continue with.
	ErrRasterizationFailed = errors.New("PDF rasterization failed")

	// ErrMissingCredentials is returned by the Cloud Vision recognizer when
	// neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")
)

// EngineError wraps errors with context about which engine operation failed.
type EngineError struct {
	// Op is the operation that failed (e.g., "Recognize", "Rasterize").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure, typically the
	// engine's stderr output.
	Details string
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("engine: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("engine: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *EngineError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapEngineError wraps an error as an EngineError unless it already is one.
func WrapEngineError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var engErr *EngineError
	if errors.As(err, &engErr) {
		return err
	}

	return &EngineError{Op: op, Err: err, Details: details}
}
