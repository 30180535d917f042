package config

type Config struct {
	Version     string          `mapstructure:"version"`
	Environment string          `mapstructure:"environment"`
	Weather     WeatherConfig   `mapstructure:"weather"`
	Storage     StorageConfig   `mapstructure:"storage"`
	Collector   CollectorConfig `mapstructure:"collector"`
	Server      ServerConfig    `mapstructure:"server"`
	Schedule    ScheduleConfig  `mapstructure:"schedule"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type WeatherConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	APIKey  string `mapstructure:"api_key"`
	Units   string `mapstructure:"units" validate:"required"`
	// Timeout is the HTTP client timeout in seconds. Zero leaves the transport defaults.
	Timeout int `mapstructure:"timeout" validate:"gte=0"`
}

type StorageConfig struct {
	Backend   string `mapstructure:"backend" validate:"oneof=gcs local"`
	Bucket    string `mapstructure:"bucket" validate:"required"`
	ProjectID string `mapstructure:"project_id"`
	Endpoint  string `mapstructure:"endpoint"`
	LocalDir  string `mapstructure:"local_dir"`
	Prefix    string `mapstructure:"prefix" validate:"required"`
}

type CollectorConfig struct {
	Cities        []string `mapstructure:"cities" validate:"min=1,dive,required"`
	SkipMalformed bool     `mapstructure:"skip_malformed"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// ScheduleConfig drives periodic runs in serve mode. An empty interval disables the schedule.
type ScheduleConfig struct {
	Interval string `mapstructure:"interval"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Weather: WeatherConfig{
			BaseURL: "http://api.openweathermap.org/data/2.5/weather",
			Units:   "imperial",
			Timeout: 0,
		},
		Storage: StorageConfig{
			Backend:  "gcs",
			LocalDir: "./data",
			Prefix:   "weather-data",
		},
		Collector: CollectorConfig{
			Cities:        []string{"Philadelphia", "Seattle", "New York"},
			SkipMalformed: false,
		},
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 120,
			IdleTimeout:  60,
		},
		Schedule: ScheduleConfig{
			Interval: "",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "tempo:4317",
			ServiceName: "weather-dashboard",
		},
	}
}
