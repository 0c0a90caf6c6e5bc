// Package api exposes the construction-management services over HTTP.
package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/celerix-dev/celerix-build/internal/service"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc    *service.Services
	logger *slog.Logger
}

func NewHandler(svc *service.Services, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc *service.Services, logger *slog.Logger) *gin.Engine {
	h := NewHandler(svc, logger)

	r := gin.New()
	r.Use(Recovery(h.logger), RequestLogger(h.logger), CORS())

	r.GET("/healthz", h.Health)

	apiGroup := r.Group("/api")
	h.registerPortal(apiGroup.Group("/supplier"))

	secured := apiGroup.Group("", Identity())
	h.registerProjects(secured)
	h.registerMaterials(secured)
	h.registerProfessionals(secured)
	h.registerOrders(secured)
	h.registerFinances(secured)

	r.NoRoute(func(c *gin.Context) {
		abort(c, http.StatusNotFound, CodeNotFound, "route not found")
	})
	return r
}

func (h *Handler) Health(c *gin.Context) {
	ok(c, gin.H{"status": "ok", "time": time.Now().UTC()})
}

// pageFrom parses page and limit query parameters.
func pageFrom(c *gin.Context) (service.Page, error) {
	var p service.Page
	for _, q := range []struct {
		name string
		dst  *int
	}{{"page", &p.Page}, {"limit", &p.Limit}} {
		raw := strings.TrimSpace(c.Query(q.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, &service.ValidationError{Field: q.name, Message: fmt.Sprintf("%s must be an integer", q.name)}
		}
		if n == 0 {
			return p, &service.ValidationError{Field: q.name, Message: fmt.Sprintf("%s must be at least 1", q.name)}
		}
		*q.dst = n
	}
	return p.Normalize()
}

// bind decodes a required JSON body.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			badRequest(c, errors.New("request body is required"))
			return false
		}
		badRequest(c, err)
		return false
	}
	return true
}

// actionBody is the optional body of workflow actions.
type actionBody struct {
	Comment string `json:"comment"`
	Reason  string `json:"reason"`
}

// bindOptional decodes a JSON body that may be empty.
func bindOptional(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return false
	}
	return true
}

func bindAction(c *gin.Context) (actionBody, bool) {
	var body actionBody
	valid := bindOptional(c, &body)
	return body, valid
}
