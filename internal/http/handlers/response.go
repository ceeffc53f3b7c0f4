// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by all endpoints. Every
// failure is an ErrorResponse with a stable code; fail() logs 5xx through
// the request-scoped logger. Part operations that were refused carry an
// extra "changed": false so clients can treat them uniformly.
//
// Example error response:
//
//	HTTP/1.1 409 Conflict
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "wrong_status",
//	  "message": "part is not available",
//	  "changed": false
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kozoukioden/HatimChainApp/internal/domain"
	"github.com/kozoukioden/HatimChainApp/internal/http/middleware"
	"github.com/kozoukioden/HatimChainApp/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"chain not found"`
}

// RefusedResponse is returned when a part operation changed nothing.
type RefusedResponse struct {
	ErrorResponse
	Changed bool `json:"changed" example:"false"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failService maps a service error onto the envelope. Unknown errors are 500.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrChainNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "chain not found")
	case errors.Is(err, services.ErrNotPermitted):
		fail(c, http.StatusForbidden, ErrCodeNotPermitted, "only the chain owner may do this")
	case errors.Is(err, services.ErrInvalidChain):
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, services.ErrUnavailable):
		c.Header("Retry-After", "1")
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "chain store unavailable, retry later")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// refused writes the envelope for a part operation that was a no-op.
func refused(c *gin.Context, reason domain.Reason) {
	status, msg := http.StatusConflict, string(reason)
	switch reason {
	case domain.ReasonNotFound:
		status, msg = http.StatusNotFound, "chain or part not found"
	case domain.ReasonNotPermitted:
		status, msg = http.StatusForbidden, "not permitted for this part"
	case domain.ReasonWrongStatus:
		msg = "part is not in a state that allows this"
	case domain.ReasonConflict:
		msg = "chain changed concurrently, retry"
	}
	c.AbortWithStatusJSON(status, RefusedResponse{
		ErrorResponse: ErrorResponse{
			RequestID: c.Writer.Header().Get("X-Request-ID"),
			Code:      string(reason),
			Message:   msg,
		},
		Changed: false,
	})
}

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
