package handlers

import "github.com/vzahanych/weather-dashboard/internal/collector"

// CollectRequest optionally overrides the configured city list for one run.
type CollectRequest struct {
	Cities []string `json:"cities" validate:"omitempty,max=50,dive,required,city,max=100"`
}

type CollectResponse struct {
	Summary *collector.Summary `json:"summary"`
}

// ErrorResponse represents an error response with validation
type ErrorResponse struct {
	Error   string             `json:"error" validate:"required,min=1,max=500"`
	Code    string             `json:"code,omitempty" validate:"omitempty,min=1,max=50"`
	Details interface{}        `json:"details,omitempty"`
	Summary *collector.Summary `json:"summary,omitempty"`
}

type HealthResponse struct {
	Status    string               `json:"status" validate:"required,oneof=ok alive ready"`
	Uptime    string               `json:"uptime" validate:"required"`
	Timestamp string               `json:"timestamp,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	LastRun   *collector.RunStatus `json:"last_run,omitempty"`
}
