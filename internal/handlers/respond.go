package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"example.com/storefront/internal/service"
)

// Responder turns service errors into the JSON error body
// {"error": ..., "details": ...}. Details are left out in production.
type Responder struct {
	Production bool
	Log        *slog.Logger
}

func statusOf(k service.Kind) int {
	switch k {
	case service.KindValidation, service.KindDomain:
		return http.StatusBadRequest
	case service.KindAuth:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (r Responder) fail(c *gin.Context, err error) {
	status := statusOf(service.KindOf(err))
	msg, cause := "internal server error", err
	var se *service.Error
	if errors.As(err, &se) && status != http.StatusInternalServerError {
		msg, cause = se.Message, se.Err
	}
	if status == http.StatusInternalServerError {
		r.Log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
	}
	r.abort(c, status, msg, cause)
}

func (r Responder) abort(c *gin.Context, status int, msg string, cause error) {
	body := gin.H{"error": msg}
	if cause != nil && !r.Production {
		body["details"] = cause.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

// pathID parses the :id parameter; a malformed id cannot name an existing row.
func (r Responder) pathID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		r.abort(c, http.StatusNotFound, what+" not found", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (r Responder) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		r.abort(c, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return true
}
