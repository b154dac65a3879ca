package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// HealthCheck is one dependency reported by the health endpoints.
// Check gates readiness; Info only feeds /health/info. Either may be nil.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
	Info  func(ctx context.Context) (any, error)
}

// HealthHandler serves liveness, readiness and info probes.
type HealthHandler struct {
	checks  []HealthCheck
	version string
	started time.Time
}

func NewHealthHandler(version string, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, version: version, started: time.Now()}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /health/ready. Any failing check answers 503.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	results := make(map[string]string, len(h.checks))
	for _, hc := range h.checks {
		if hc.Check == nil {
			continue
		}
		if err := hc.Check(ctx); err != nil {
			results[hc.Name] = "unhealthy: " + err.Error()
			status, code = "error", http.StatusServiceUnavailable
			continue
		}
		results[hc.Name] = "healthy"
	}
	c.JSON(code, gin.H{"status": status, "checks": results})
}

// Info handles GET /health/info.
func (h *HealthHandler) Info(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	info := gin.H{
		"app":            "confhub",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	}
	for _, hc := range h.checks {
		if hc.Info == nil {
			continue
		}
		v, err := hc.Info(ctx)
		if err != nil {
			info[hc.Name] = gin.H{"error": err.Error()}
			continue
		}
		info[hc.Name] = v
	}
	c.JSON(http.StatusOK, info)
}
