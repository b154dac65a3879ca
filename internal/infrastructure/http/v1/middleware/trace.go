package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "confhub/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// Trace attaches a TraceContext to the request and echoes both ids back.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := appctx.NewTraceContext(c.GetHeader(HeaderTraceID), c.GetHeader(HeaderRequestID))
		t.ClientIP = c.ClientIP()
		c.Request = c.Request.WithContext(appctx.WithTrace(c.Request.Context(), t))

		c.Header(HeaderRequestID, t.RequestID)
		c.Header(HeaderTraceID, t.TraceID)
		c.Next()
	}
}
