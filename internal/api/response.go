package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/celerix-dev/celerix-build/internal/service"
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Message    string      `json:"message,omitempty"`
	Field      string      `json:"field,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Error codes carried in Envelope.Error.
const (
	CodeValidation   = "validation_error"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeInternal     = "internal_error"
)

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func done(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

func list(c *gin.Context, items any, total int, p service.Page) {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	c.JSON(http.StatusOK, Envelope{
		Success:    true,
		Data:       items,
		Pagination: &Pagination{Page: p.Page, Limit: p.Limit, Total: total, Pages: pages},
	})
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{Error: code, Message: message})
}

func badRequest(c *gin.Context, err error) {
	abort(c, http.StatusBadRequest, CodeValidation, err.Error())
}

// fail maps a service error to its HTTP status. Unexpected errors are logged
// and hidden from the caller.
func (h *Handler) fail(c *gin.Context, err error) {
	var (
		verr *service.ValidationError
		terr *service.TransitionError
	)
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{
			Error:   CodeValidation,
			Message: verr.Message,
			Field:   verr.Field,
		})
	case errors.As(err, &terr):
		abort(c, http.StatusBadRequest, CodeValidation, terr.Error())
	case errors.Is(err, service.ErrForbidden):
		abort(c, http.StatusForbidden, CodeForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		abort(c, http.StatusNotFound, CodeNotFound, err.Error())
	default:
		h.logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("method", c.Request.Method),
			slog.String("route", c.FullPath()),
			slog.Any("error", err),
		)
		abort(c, http.StatusInternalServerError, CodeInternal, "an unexpected error occurred")
	}
}
