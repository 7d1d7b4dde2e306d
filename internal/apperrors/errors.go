package apperrors

import (
	"errors"
	"fmt"
)

// RetryableError marks a failure that may succeed on another attempt.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryable wraps err as a RetryableError with a formatted message prefix.
func NewRetryable(err error, message string, args ...interface{}) error {
	return &RetryableError{Err: fmt.Errorf(message+": %w", append(args, err)...)}
}

// FatalError marks a failure that retrying will not fix.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// NewFatal wraps err as a FatalError with a formatted message prefix.
func NewFatal(err error, message string, args ...interface{}) error {
	return &FatalError{Err: fmt.Errorf(message+": %w", append(args, err)...)}
}

var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")
	// ErrValidation indicates failure during data validation.
	ErrValidation = errors.New("validation failed")
	// ErrDatabase indicates a general database interaction error.
	ErrDatabase = errors.New("database error")
	// ErrNATS indicates a general NATS communication error.
	ErrNATS = errors.New("nats communication error")
	// ErrDuplicate indicates a unique constraint conflict.
	ErrDuplicate = errors.New("duplicate resource")
	// ErrBadRequest indicates a malformed or invalid request from the caller.
	ErrBadRequest = errors.New("bad request")
	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timeout")
	// ErrConfig indicates missing or invalid configuration.
	ErrConfig = errors.New("invalid configuration")

	// ErrAnalysisUnavailable is the single outcome for every failed nutrition analysis:
	// transport errors, timeouts, non-2xx replies, missing or malformed JSON.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
	// ErrProvider indicates a chat provider API call failed.
	ErrProvider = errors.New("chat provider error")
	// ErrMediaUnavailable indicates a media handle could not be resolved to a URL.
	ErrMediaUnavailable = errors.New("media unavailable")
)

// IsRetryable checks if the error is a RetryableError or wraps one.
func IsRetryable(err error) bool {
	var target *RetryableError
	return errors.As(err, &target)
}

// IsFatal checks if the error is a FatalError or wraps one.
func IsFatal(err error) bool {
	var target *FatalError
	return errors.As(err, &target)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsDatabaseError(err error) bool {
	return errors.Is(err, ErrDatabase)
}

func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

func IsBadRequestError(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

// IsAnalysisUnavailable reports whether err came from a failed nutrition analysis.
func IsAnalysisUnavailable(err error) bool {
	return errors.Is(err, ErrAnalysisUnavailable)
}
