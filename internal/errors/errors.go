package apperrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorSchedule = 2   // Indicates the batch could not be fully scheduled.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// MechanismError reports that the fetch pathway for a single PIN could not be
// established or driven, even after the full attempt budget. It is the error
// recorded behind a Record with status Error; it never aborts a batch.
type MechanismError struct {
	// PIN is the roll number whose fetch failed.
	PIN string
	// Attempts is the number of attempts made before giving up.
	Attempts int
	// Cause is the error returned by the final attempt.
	Cause error
}

// Error returns a formatted message describing the exhausted fetch.
func (e MechanismError) Error() string {
	return fmt.Sprintf("fetch for %q failed after %d attempts: %v", e.PIN, e.Attempts, e.Cause)
}

// Unwrap returns the final attempt error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e MechanismError) Unwrap() error { return e.Cause }

// ScheduleError is the only run-fatal condition: the orchestrator could not
// obtain a worker slot for one or more keys, so those keys never got an
// attempt. It names every key that was left unattempted.
type ScheduleError struct {
	// Unattempted lists the PINs that never reached a worker.
	Unattempted []string
	// Cause is the underlying scheduling failure.
	Cause error
}

// Error returns a formatted message naming the unattempted keys.
func (e ScheduleError) Error() string {
	return fmt.Sprintf("scheduling aborted, %d keys never attempted (%s): %v",
		len(e.Unattempted), strings.Join(e.Unattempted, ", "), e.Cause)
}

// Unwrap returns the underlying scheduling failure.
func (e ScheduleError) Unwrap() error { return e.Cause }

// UploadError reports a single failed file upload. Uploads are independent,
// so an UploadError is logged per item and never aborts the remaining batch.
type UploadError struct {
	// Name is the base name of the file that failed to upload.
	Name string
	// Cause is the underlying transport or service error.
	Cause error
}

// Error returns a formatted message describing the failed upload.
func (e UploadError) Error() string {
	return fmt.Sprintf("upload of %q failed: %v", e.Name, e.Cause)
}

// Unwrap returns the underlying cause of the UploadError.
func (e UploadError) Unwrap() error { return e.Cause }

// TimeoutError represents a bounded wait that elapsed. It captures the
// operation name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
