package errors

import (
	"net/http"

	"github.com/pkg/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// Wrapf wraps the error with a formatted context message
func (e *BaseError) Wrapf(format string, args ...any) error {
	return errors.Wrapf(e, format, args...)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// Predefined error types
var (
	// Validation
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"input failed validation",
		"",
	)

	// Not found
	ErrPostNotFound = NewBaseError(
		http.StatusNotFound,
		"POST_NOT_FOUND",
		"post not found",
		"",
	)

	ErrCommentNotFound = NewBaseError(
		http.StatusNotFound,
		"COMMENT_NOT_FOUND",
		"comment not found",
		"",
	)

	// Conflict
	ErrAlreadyLiked = NewBaseError(
		http.StatusConflict,
		"ALREADY_LIKED",
		"post already liked by this user",
		"",
	)

	ErrNotLiked = NewBaseError(
		http.StatusConflict,
		"NOT_LIKED",
		"post has not been liked by this user",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"username or email already exists",
		"",
	)

	ErrPostAlreadyExists = NewBaseError(
		http.StatusConflict,
		"POST_ALREADY_EXISTS",
		"a post with this id already exists",
		"",
	)

	ErrCommentAlreadyExists = NewBaseError(
		http.StatusConflict,
		"COMMENT_ALREADY_EXISTS",
		"a comment with this id already exists on the post",
		"",
	)

	// Auth
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"invalid username/email or password",
		"",
	)

	ErrNotLoggedIn = NewBaseError(
		http.StatusUnauthorized,
		"NOT_LOGGED_IN",
		"no user is logged in",
		"",
	)

	// Persistence
	ErrPersistenceFailed = NewBaseError(
		http.StatusInternalServerError,
		"PERSISTENCE_FAILED",
		"storage operation failed",
		"",
	)
)

// PersistenceError wraps a storage driver failure, implementing the AppError interface
type PersistenceError struct {
	err     error
	details string
}

// NewPersistenceError creates a storage-related error
func NewPersistenceError(err error, details string) AppError {
	return &PersistenceError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	return errors.Wrap(e.err, e.details).Error()
}

// Unwrap exposes the driver error and the persistence sentinel to errors.Is
func (e *PersistenceError) Unwrap() []error {
	return []error{e.err, ErrPersistenceFailed}
}

// HTTPCode returns the HTTP status code
func (e *PersistenceError) HTTPCode() int {
	return ErrPersistenceFailed.HTTPCode()
}

// ErrorCode returns the business error code
func (e *PersistenceError) ErrorCode() string {
	return ErrPersistenceFailed.ErrorCode()
}

// Message returns the user-friendly error message
func (e *PersistenceError) Message() string {
	return ErrPersistenceFailed.Message()
}

// Details returns detailed error information
func (e *PersistenceError) Details() string {
	return e.details
}
