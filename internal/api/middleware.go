package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/gin-gonic/gin"
)

// Identity headers set by the fronting auth provider.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
	HeaderUserRole = "X-User-Role"
)

const actorKey = "actor"

// CORS allows the browser UI to call the API from another origin.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, X-User-ID, X-User-Name, X-User-Role")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("route", route),
			slog.Int("status", c.Writer.Status()),
			slog.Int64("latency_ms", time.Since(start).Milliseconds()),
		}
		if actor, ok := c.Get(actorKey); ok {
			attrs = append(attrs, slog.String("user", actor.(schema.Actor).ID))
		}
		logger.InfoContext(c.Request.Context(), "request", attrs...)
	}
}

// Recovery turns a panic into a logged 500.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.ErrorContext(c.Request.Context(), "panic serving request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Any("panic", recovered),
		)
		abort(c, http.StatusInternalServerError, CodeInternal, "an unexpected error occurred")
	})
}

// Identity reads the caller from the auth provider headers.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderUserID))
		role := schema.Role(strings.TrimSpace(c.GetHeader(HeaderUserRole)))
		if id == "" || role == "" {
			abort(c, http.StatusUnauthorized, CodeUnauthorized, "missing identity headers")
			return
		}
		if !role.Valid() {
			abort(c, http.StatusUnauthorized, CodeUnauthorized, "unknown role "+string(role))
			return
		}
		c.Set(actorKey, schema.Actor{
			ID:   id,
			Name: strings.TrimSpace(c.GetHeader(HeaderUserName)),
			Role: role,
		})
		c.Next()
	}
}

// Require denies callers whose role may not perform action.
func Require(action Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Allowed(actorFrom(c).Role, action) {
			abort(c, http.StatusForbidden, CodeForbidden, "role may not perform "+string(action))
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) schema.Actor {
	v, _ := c.Get(actorKey)
	actor, _ := v.(schema.Actor)
	return actor
}
