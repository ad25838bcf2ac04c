package errors

import (
	"errors"
	"fmt"

	"textattack/domain/core"
)

// Codes carried by AppError. The API maps each one to an HTTP status.
const (
	CodeConfigInvalid       = "CONFIG_INVALID"
	CodeContractViolation   = "CONTRACT_VIOLATION"
	CodeResourceUnavailable = "RESOURCE_UNAVAILABLE"
	CodeDatabaseError       = "DATABASE_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeExternalService     = "EXTERNAL_SERVICE_ERROR"
	CodeInvalidInput        = "INVALID_INPUT"
)

// AppError is an error with a stable code for callers outside the process.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	switch {
	case e.Cause == nil:
		return e.Message
	case e.Message == "":
		return e.Cause.Error()
	default:
		return e.Message + ": " + e.Cause.Error()
	}
}

func (e *AppError) Unwrap() error { return e.Cause }

func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func ConfigInvalid(message string) *AppError { return New(CodeConfigInvalid, message) }
func InvalidInput(message string) *AppError  { return New(CodeInvalidInput, message) }

func NotFound(resource string) *AppError {
	return New(CodeNotFound, resource+" not found")
}

// Wrap adds context to err. The code of an inner AppError is inherited.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: codeOr(err, CodeInternalError), Message: message, Cause: err}
}

func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode replaces the code of err without adding a message.
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr == err {
		return &AppError{Code: code, Message: appErr.Message, Cause: appErr.Cause}
	}
	return &AppError{Code: code, Cause: err}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode is the code of the outermost AppError in the chain, or "UNKNOWN".
func GetCode(err error) string {
	return codeOr(err, "UNKNOWN")
}

func codeOr(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return fallback
}

// FromDomain gives err the code of the core sentinel it wraps. AppErrors with
// a specific code pass through unchanged; nil stays nil.
func FromDomain(err error) error {
	if err == nil {
		return nil
	}
	current := codeOr(err, "")
	if current != "" && current != CodeInternalError {
		return err
	}
	code := classify(err)
	if code == current {
		return err
	}
	return &AppError{Code: code, Cause: err}
}

func classify(err error) string {
	switch {
	case core.IsNotFoundError(err):
		return CodeNotFound
	case errors.Is(err, core.ErrEmptyInput):
		return CodeInvalidInput
	case core.IsConfigurationError(err):
		return CodeConfigInvalid
	case core.IsContractViolation(err):
		return CodeContractViolation
	case core.IsResourceError(err):
		return CodeResourceUnavailable
	}
	return CodeInternalError
}
