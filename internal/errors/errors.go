package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workspace-api/internal/services"
)

// Error codes
const (
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeNotAuthorized   = "NOT_AUTHORIZED"

	ErrCodeInvalidInput = "INVALID_INPUT"

	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInvalidToken = "INVALID_TOKEN"
	ErrCodeExpired      = "EXPIRED"

	ErrCodeOperationFailed = "OPERATION_FAILED"
	ErrCodeBadGateway      = "BAD_GATEWAY"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthenticated, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeNotAuthorized, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeOperationFailed, message))
}

// BadGateway sends a 502 response
func BadGateway(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadGateway, NewAPIError(ErrCodeBadGateway, message))
}

// RespondServiceError maps a service sentinel to its HTTP status. Unknown
// errors are reported as OPERATION_FAILED without their cause.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, services.ErrUnauthenticated):
		Unauthorized(c, err.Error())
	case stderrors.Is(err, services.ErrNotAuthorized):
		Forbidden(c, err.Error())
	case stderrors.Is(err, services.ErrNotFound),
		stderrors.Is(err, services.ErrUserNotFound):
		NotFound(c, err.Error())
	case stderrors.Is(err, services.ErrInvalidToken):
		RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeInvalidToken, err.Error()))
	case stderrors.Is(err, services.ErrInviteExpired):
		RespondWithError(c, http.StatusGone, NewAPIError(ErrCodeExpired, err.Error()))
	case stderrors.Is(err, services.ErrInvalidWorkspaceName):
		BadRequest(c, err.Error())
	default:
		InternalError(c, services.ErrOperationFailed.Error())
	}
}
