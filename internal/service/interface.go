package service

import (
	"context"

	"github.com/vzahanych/weather-dashboard/internal/weather"
)

type WeatherService interface {
	CurrentWeather(ctx context.Context, city string) (*weather.Observation, error)
	Name() string
}
