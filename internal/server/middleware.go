package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/reqctx"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// requestContext tags every request with an ID, its provider and a scoped logger.
func requestContext(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		ctx := reqctx.WithRequestID(c.Request.Context(), requestID)
		fields := []zap.Field{zap.String("request_id", requestID)}
		if p := providerFromPath(c.Request.URL.Path); p != "" {
			ctx = reqctx.WithProvider(ctx, p)
			fields = append(fields, zap.String("provider", p))
		}
		ctx = logger.WithLogger(ctx, base.With(fields...))

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func accessLog(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := logger.FromContextOr(c.Request.Context(), base)
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		switch {
		case c.Writer.Status() >= 500:
			log.Error("HTTP request", fields...)
		case c.FullPath() == "/health" || c.FullPath() == "/metrics" || c.FullPath() == "/ready":
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func providerFromPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "/webhook/"); ok {
		return strings.Trim(rest, "/")
	}
	return ""
}
