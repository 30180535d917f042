package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type MetricsHandler struct {
	handler http.Handler
}

// NewMetricsHandler wraps a Prometheus exposition handler.
func NewMetricsHandler(h http.Handler) *MetricsHandler {
	return &MetricsHandler{handler: h}
}

func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	h.handler.ServeHTTP(c.Writer, c.Request)
}
