package middleware

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger writes one structured line per request.
func RequestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Errorw("[http] request", fields...)
		case status >= 400:
			log.Warnw("[http] request", fields...)
		default:
			log.Infow("[http] request", fields...)
		}
	}
}

// Recovery turns a handler panic into a 500 and reports it through log
// instead of gin's stderr writer.
func Recovery(log *zap.SugaredLogger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, err any) {
		log.Errorw("[http] panic recovered",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", err,
		)
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
