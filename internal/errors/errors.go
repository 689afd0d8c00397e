package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindAuth       Kind = "AUTH"
	KindPermission Kind = "PERMISSION"
	KindNotFound   Kind = "NOT_FOUND"
	KindInfraDB    Kind = "INFRA_DB"
	KindExternal   Kind = "EXTERNAL"
)

// Error codes
const (
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeMaxDepthExceeded = "MAX_DEPTH_EXCEEDED"

	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"

	ErrCodeDBError     = "DB_ERROR"
	ErrCodeOpenAIError = "OPENAI_API_ERROR"
)

// AppError is the standardized error shape returned across component
// boundaries. Services return it, handlers map it to an HTTP status.
type AppError struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches AppErrors by kind and code so sentinel comparison works.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// HTTPStatus maps the error kind to a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Constructors

// Validation creates a bad-input error.
func Validation(code, message string) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: message}
}

// MaxDepthExceeded signals that an ancestry walk hit the cycle-safety bound.
func MaxDepthExceeded() *AppError {
	return &AppError{Kind: KindValidation, Code: ErrCodeMaxDepthExceeded, Message: "Task hierarchy exceeds maximum depth"}
}

// Auth creates an error for requests with no authenticated identity.
func Auth() *AppError {
	return &AppError{Kind: KindAuth, Code: ErrCodeUnauthorized, Message: "Authentication required"}
}

// Permission creates an error for authenticated callers that do not own the resource.
func Permission() *AppError {
	return &AppError{Kind: KindPermission, Code: ErrCodeForbidden, Message: "Access denied"}
}

// NotFound creates an error for resources that are absent or invisible to the caller.
func NotFound() *AppError {
	return &AppError{Kind: KindNotFound, Code: ErrCodeNotFound, Message: "Resource not found"}
}

// InfraDB wraps a storage failure.
func InfraDB(err error) *AppError {
	return &AppError{Kind: KindInfraDB, Code: ErrCodeDBError, Message: "Database error", cause: err}
}

// External wraps a failure of an external collaborator call.
func External(code, message string, err error) *AppError {
	return &AppError{Kind: KindExternal, Code: code, Message: message, cause: err}
}

// Respond writes err as a JSON error response. Errors that are not AppErrors
// are reported as internal failures without leaking details.
func Respond(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus(), gin.H{"code": appErr.Code, "message": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL_ERROR", "message": "Internal server error"})
}
