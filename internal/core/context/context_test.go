package context

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTraceContext_Defaults(t *testing.T) {
	tc := NewTraceContext("", "")
	assert.NotEmpty(t, tc.RequestID)
	assert.Equal(t, tc.RequestID, tc.TraceID)

	tc = NewTraceContext("trace-1", "req-1")
	assert.Equal(t, "trace-1", tc.TraceID)
	assert.Equal(t, "req-1", tc.RequestID)
}

func TestNewTraceContext_RejectsJunkIDs(t *testing.T) {
	tc := NewTraceContext("has space", strings.Repeat("r", 200))
	assert.Len(t, tc.RequestID, 36)
	assert.Equal(t, tc.RequestID, tc.TraceID)

	ctx := WithTrace(context.Background(), tc)
	assert.Equal(t, tc.RequestID, GetRequestID(ctx))
	assert.Nil(t, GetTrace(context.Background()))
}

func TestGetActor(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "system", GetActor(ctx))

	ctx = WithAdmin(ctx, &AdminContext{Username: "registrar"})
	assert.Equal(t, "registrar", GetActor(ctx))
	assert.Equal(t, "", GetRequestID(ctx))
}
