package mw

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mango-sync-backend/internal/respond"
)

// RequestObserver records one handled request.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Debug exposes error details in responses when enabled.
func Debug(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(respond.DebugKey, enabled)
		c.Next()
	}
}

// Logger writes one zap entry per request and feeds the request metrics.
func Logger(logger *zap.Logger, observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		status := c.Writer.Status()

		if observer != nil {
			observer.ObserveRequest(c.Request.Method, c.FullPath(), status, elapsed)
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Info("request rejected", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}

// Recovery turns a panic into a 500 envelope and reports it to Sentry.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(c.Request)
		c.Request = c.Request.WithContext(sentry.SetHubOnContext(c.Request.Context(), hub))

		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(p)
			}
			hub.RecoverWithContext(c.Request.Context(), p)
			logger.Error("panic serving request",
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", p),
				zap.Stack("stack"))
			env := respond.Envelope{
				Status:  "error",
				Code:    "INTERNAL_ERROR",
				Message: "An unexpected error occurred",
			}
			if c.GetBool(respond.DebugKey) {
				env.Debug = fmt.Sprint(p)
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, env)
		}()
		c.Next()
	}
}
