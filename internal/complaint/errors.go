package complaint

import "errors"

// Sentinel failures surfaced to API clients. The messages are the exact
// strings returned in the response envelope.
var (
	ErrNotFound         = errors.New("Complaint not found")
	ErrPermissionDenied = errors.New("Permission denied")
)

// ValidationError reports missing or malformed input. Its message is shown
// to the caller as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationError(msg string) error { return &ValidationError{Message: msg} }
