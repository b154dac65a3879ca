package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"confhub/pkg/logger"
)

// quietRoutes are polled by orchestrators and logged at debug level.
var quietRoutes = map[string]bool{
	"/health/live":  true,
	"/health/ready": true,
}

// Logger installs log as the request's context logger and writes one access
// line per request once the handlers have run.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", status,
			"bytes", c.Writer.Size(),
			"latency_ms", time.Since(began).Milliseconds(),
			"user_agent", c.Request.UserAgent(),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, "query", q)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.Last().Error())
		}

		l := log.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			l.Errorw("request", fields...)
		case quietRoutes[c.FullPath()]:
			l.Debugw("request", fields...)
		default:
			l.Infow("request", fields...)
		}
	}
}
