package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confhub/internal/core/apperror"
	appctx "confhub/internal/core/context"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*appctx.AdminContext, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &appctx.AdminContext{Username: "registrar", Role: "admin"}, nil
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), Trace(), ErrorHandler())
	r.GET("/x", handlers...)
	return r
}

func get(r http.Handler, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func body(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestAuth(t *testing.T) {
	r := newEngine(Auth(stubValidator{}), func(c *gin.Context) {
		c.String(http.StatusOK, appctx.GetActor(c.Request.Context()))
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"invalid", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := map[string]string{}
			if tt.header != "" {
				h["Authorization"] = tt.header
			}
			w := get(r, h)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "registrar", w.Body.String())
			} else {
				assert.Equal(t, apperror.CodeUnauthorized, body(t, w)["code"])
			}
		})
	}
}

func TestErrorHandler_AppError(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(apperror.NewNotFound("registration", "42"))
	})

	w := get(r, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	b := body(t, w)
	assert.Equal(t, apperror.CodeNotFound, b["code"])
	assert.Equal(t, "registration not found", b["message"])
}

func TestErrorHandler_PlainErrorIsHidden(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(errors.New("pq: relation does not exist"))
	})

	w := get(r, map[string]string{HeaderRequestID: "req-7"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	b := body(t, w)
	assert.Equal(t, "Internal server error", b["message"])
	assert.Equal(t, map[string]any{"request_id": "req-7"}, b["details"])
}

func TestRecovery(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		panic("boom")
	})

	w := get(r, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, body(t, w)["code"])
}

func TestTrace_EchoesIDs(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		c.String(http.StatusOK, appctx.GetRequestID(c.Request.Context()))
	})

	w := get(r, map[string]string{HeaderRequestID: "req-1"})
	assert.Equal(t, "req-1", w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "req-1", w.Header().Get(HeaderTraceID))

	w = get(r, nil)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}
