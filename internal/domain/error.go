package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrAlreadyExists     = errors.New("entity already exists")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrQueueFull         = errors.New("job queue full")

	// Validation errors, rejected before a job is created
	ErrEmptyMessage        = errors.New("message cannot be empty")
	ErrUnsupportedFileType = errors.New("file type not supported")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")

	// Provider errors
	ErrAllProvidersFailed = errors.New("all AI providers failed")
	ErrProviderNotReady   = errors.New("AI provider not configured")
)

// IsValidation reports whether err belongs to the input validation class.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrUnsupportedFileType) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrInvalidArgument)
}

// ValidationError carries a user-facing detail for one of the validation sentinels.
type ValidationError struct {
	Err    error
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }
func (e *ValidationError) Unwrap() error { return e.Err }

func NewValidationError(sentinel error, detail string) error {
	return &ValidationError{Err: sentinel, Detail: detail}
}
