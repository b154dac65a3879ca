package context

import (
	"context"

	"confhub/internal/core/id"
)

// maxIDLength bounds caller-supplied trace and request ids.
const maxIDLength = 128

type ctxKey int

const (
	traceKey ctxKey = iota
	adminKey
)

// TraceContext identifies one HTTP request in logs, error bodies and spans.
type TraceContext struct {
	TraceID   string
	RequestID string
	ClientIP  string
}

// NewTraceContext keeps the caller's ids when they look sane. A missing
// request id is generated and a missing trace id falls back to it.
func NewTraceContext(traceID, requestID string) *TraceContext {
	requestID = usable(requestID)
	if requestID == "" {
		requestID = id.New().String()
	}
	traceID = usable(traceID)
	if traceID == "" {
		traceID = requestID
	}
	return &TraceContext{TraceID: traceID, RequestID: requestID}
}

func usable(s string) string {
	if len(s) > maxIDLength {
		return ""
	}
	for _, r := range s {
		if r < 0x21 || r > 0x7e {
			return ""
		}
	}
	return s
}

func WithTrace(ctx context.Context, t *TraceContext) context.Context {
	return context.WithValue(ctx, traceKey, t)
}

// GetTrace returns nil outside an HTTP request.
func GetTrace(ctx context.Context) *TraceContext {
	t, _ := ctx.Value(traceKey).(*TraceContext)
	return t
}

func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}
