package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-dashboard/internal/collector"
)

// RunStatusProvider is satisfied by *collector.Collector.
type RunStatusProvider interface {
	LastRun() (collector.RunStatus, bool)
}

type HealthHandler struct {
	logger    *zap.Logger
	status    RunStatusProvider
	startTime time.Time
}

func NewHealthHandler(status RunStatusProvider, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		status:    status,
		startTime: time.Now(),
	}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "alive",
		Uptime: time.Since(h.startTime).String(),
	})
}

// Readiness does not depend on run outcomes; Health reports the last run.
func (h *HealthHandler) Readiness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ready",
		Uptime: time.Since(h.startTime).String(),
	})
}

func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if last, ok := h.status.LastRun(); ok {
		resp.LastRun = &last
	}
	c.JSON(http.StatusOK, resp)
}
