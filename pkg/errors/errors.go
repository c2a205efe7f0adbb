package errors

import (
	stderrors "errors"
	"fmt"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the outermost AppError in the chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return CodeOf(err) == code
}

// Common error codes
const (
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeInvalidInput          = "INVALID_INPUT"
	ErrCodeValidationFailed      = "VALIDATION_FAILED"
	ErrCodeAlreadyExists         = "ALREADY_EXISTS"
	ErrCodePreconditionFailed    = "PRECONDITION_FAILED"
	ErrCodeAlreadyUpgrading      = "ALREADY_UPGRADING"
	ErrCodeMaxLevelReached       = "MAX_LEVEL_REACHED"
	ErrCodePrerequisiteNotMet    = "PREREQUISITE_NOT_MET"
	ErrCodePopulationCapExceeded = "POPULATION_CAP_EXCEEDED"
	ErrCodeInsufficientResources = "INSUFFICIENT_RESOURCES"
	ErrCodeConcurrencyConflict   = "CONCURRENCY_CONFLICT"
	ErrCodePersistenceError      = "PERSISTENCE_UNAVAILABLE"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeInternalError         = "INTERNAL_ERROR"
)
