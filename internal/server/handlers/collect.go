package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-dashboard/internal/collector"
	"github.com/vzahanych/weather-dashboard/internal/server/utils"
	"github.com/vzahanych/weather-dashboard/internal/weather"
)

// CollectionRunner is satisfied by *collector.Collector.
type CollectionRunner interface {
	Run(ctx context.Context) (*collector.Summary, error)
	RunCities(ctx context.Context, cities []string) (*collector.Summary, error)
}

type CollectHandler struct {
	runner CollectionRunner
	logger *zap.Logger
}

func NewCollectHandler(runner CollectionRunner, logger *zap.Logger) *CollectHandler {
	return &CollectHandler{
		runner: runner,
		logger: logger,
	}
}

// Collect runs one collection pass. The body is optional; an empty body uses the configured cities.
func (h *CollectHandler) Collect(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := utils.RequestLogger(c, h.logger)

	var req CollectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			reqLogger.Warn("Invalid collect request body", zap.Error(err))
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid request body",
				Code:    "INVALID_BODY",
				Details: err.Error(),
			})
			return
		}
	}

	if verrs := utils.ValidateStruct(req); len(verrs) > 0 {
		reqLogger.Warn("Collect request failed validation", zap.Int("errors", len(verrs)))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    "INVALID_PARAMS",
			Details: verrs,
		})
		return
	}

	reqLogger.Info("Processing collect request", zap.Strings("cities", req.Cities))

	var (
		summary *collector.Summary
		err     error
	)
	if len(req.Cities) > 0 {
		summary, err = h.runner.RunCities(ctx, req.Cities)
	} else {
		summary, err = h.runner.Run(ctx)
	}

	if err != nil {
		status, code := http.StatusInternalServerError, "COLLECTION_ERROR"
		switch {
		case errors.Is(err, weather.ErrMissingField):
			status, code = http.StatusBadGateway, "MALFORMED_PAYLOAD"
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			status, code = http.StatusServiceUnavailable, "CANCELLED"
		}

		reqLogger.Error("Collection run aborted", zap.Error(err))
		c.JSON(status, ErrorResponse{
			Error:   "Collection run aborted",
			Code:    code,
			Details: err.Error(),
			Summary: summary,
		})
		return
	}

	reqLogger.Info("Collect request completed",
		zap.String("run_id", summary.RunID),
		zap.Int("saved", summary.Saved()),
		zap.Int("failed", summary.Failed()))

	c.JSON(http.StatusOK, CollectResponse{Summary: summary})
}
