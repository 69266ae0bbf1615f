package errors

import (
	"github.com/go-kratos/kratos/v2/errors"
)

// Common error codes
const (
	// Client errors (4xx)
	CodeBadRequest       = 400
	CodeNotFound         = 404
	CodeValidationFailed = 422

	// Server errors (5xx)
	CodeInternalServerError = 500
	CodeServiceUnavailable  = 503
	CodeGatewayTimeout      = 504
)

// Common errors
var (
	ErrBadRequest          = errors.BadRequest("BAD_REQUEST", "Bad request")
	ErrNotFound            = errors.NotFound("NOT_FOUND", "Resource not found")
	ErrInternalServerError = errors.InternalServer("INTERNAL_SERVER_ERROR", "Internal server error")
	ErrServiceUnavailable  = errors.ServiceUnavailable("SERVICE_UNAVAILABLE", "Service unavailable")
)

// NewBadRequest creates a new bad request error.
func NewBadRequest(reason, message string) *errors.Error {
	return errors.BadRequest(reason, message)
}

// NewNotFound creates a new not found error.
func NewNotFound(reason, message string) *errors.Error {
	return errors.NotFound(reason, message)
}

// NewInternalServerError creates a new internal server error.
func NewInternalServerError(reason, message string) *errors.Error {
	return errors.InternalServer(reason, message)
}

// NewServiceUnavailable creates a new service unavailable error.
func NewServiceUnavailable(reason, message string) *errors.Error {
	return errors.ServiceUnavailable(reason, message)
}

// FromError 提取统一错误对象；非 kratos 错误归为 500
func FromError(err error) *errors.Error {
	return errors.FromError(err)
}
