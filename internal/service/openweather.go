package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/weather"
	"github.com/vzahanych/weather-dashboard/pkg/telemetry"
)

// StatusError is returned when the API answers outside the 2xx range.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API request failed with status: %d", e.Code)
	}
	return fmt.Sprintf("API request failed with status: %d: %s", e.Code, e.Body)
}

type OpenWeatherService struct {
	baseURL string
	apiKey  string
	units   string
	client  *http.Client
	logger  *zap.Logger
	tele    *telemetry.Telemetry
	now     func() time.Time
}

func NewOpenWeatherServiceWithConfig(cfg config.WeatherConfig, logger *zap.Logger, tele *telemetry.Telemetry) *OpenWeatherService {
	return &OpenWeatherService{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		units:   cfg.Units,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		logger: logger,
		tele:   tele,
		now:    time.Now,
	}
}

func (s *OpenWeatherService) Name() string {
	return "openweathermap"
}

// CurrentWeather performs exactly one GET for the city. The city is sent as-is in the q parameter.
func (s *OpenWeatherService) CurrentWeather(ctx context.Context, city string) (*weather.Observation, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "openweathermap.CurrentWeather")
	defer span.End()

	span.SetAttributes(
		attribute.String("city", city),
		attribute.String("service", s.Name()),
	)

	if s.apiKey == "" {
		s.logger.Warn("OpenWeatherMap called without API key", zap.String("city", city))
	}

	obs, err := s.fetch(ctx, city)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		s.logger.Warn("Failed to fetch current weather",
			zap.String("city", city),
			zap.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.Bool("success", true))
	s.logger.Debug("Fetched current weather", zap.String("city", city))

	return obs, nil
}

func (s *OpenWeatherService) fetch(ctx context.Context, city string) (*weather.Observation, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("q", city)
	q.Set("appid", s.apiKey)
	q.Set("units", s.units)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	return weather.ParseObservation(city, body, s.now())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
