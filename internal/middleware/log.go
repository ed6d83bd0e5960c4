package middleware

import (
	"time"

	"jobsite-timeclock/internal/identity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OriginMiddleware puts the caller's IP and user agent into the request
// context, where the audit trail picks them up.
func OriginMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := identity.WithOrigin(c.Request.Context(), identity.Origin{
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if actor, ok := CurrentActor(c); ok {
			fields = append(fields, zap.String("user_id", actor.UserID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			lg.Error("request", fields...)
		case c.Writer.Status() >= 400:
			lg.Warn("request", fields...)
		default:
			lg.Info("request", fields...)
		}
	}
}
