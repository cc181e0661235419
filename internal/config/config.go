package config

import (
	"os"
	"path/filepath"
	"time"
)

// APIKeyEnv is the environment variable holding the weather provider key.
const APIKeyEnv = "WEATHER_API_KEY"

const AppName = "weather-notify"

type Config struct {
	Version     string            `mapstructure:"version"`
	Provider    ProviderConfig    `mapstructure:"provider"`
	Geolocation GeolocationConfig `mapstructure:"geolocation"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Display     DisplayConfig     `mapstructure:"display"`
	Retry       RetryConfig       `mapstructure:"retry"`
	Notify      NotifyConfig      `mapstructure:"notify"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout" validate:"min=1"`
}

type GeolocationConfig struct {
	URL     string `mapstructure:"url" validate:"required,url"`
	Timeout int    `mapstructure:"timeout" validate:"min=1"`
}

type CacheConfig struct {
	Path string `mapstructure:"path" validate:"required"`
	TTL  int    `mapstructure:"ttl" validate:"min=1"`
}

type DisplayConfig struct {
	Unit      string `mapstructure:"unit" validate:"oneof=celsius fahrenheit kelvin c f k"`
	Precision int    `mapstructure:"precision" validate:"min=0,max=10"`
}

type RetryConfig struct {
	MaxAttempts      int `mapstructure:"max_attempts" validate:"min=1,max=10"`
	InitialBackoffMs int `mapstructure:"initial_backoff_ms" validate:"min=1"`
	MaxBackoffMs     int `mapstructure:"max_backoff_ms" validate:"gtefield=InitialBackoffMs"`
	BreakerThreshold int `mapstructure:"breaker_threshold" validate:"min=1,ltefield=MaxAttempts"`
}

type NotifyConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	AppName   string `mapstructure:"app_name" validate:"required"`
	TimeoutMs int    `mapstructure:"timeout_ms" validate:"min=0"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

func (c ProviderConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c GeolocationConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

func (c NotifyConfig) Expire() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func NewDefaultConfig() *Config {
	return &Config{
		Version: "1.0.0",
		Provider: ProviderConfig{
			BaseURL: "https://api.openweathermap.org/data/2.5",
			Timeout: 10,
		},
		Geolocation: GeolocationConfig{
			URL:     "http://ip-api.com/json",
			Timeout: 10,
		},
		Cache: CacheConfig{
			Path: DefaultCachePath(),
			TTL:  int((24 * time.Hour).Seconds()),
		},
		Display: DisplayConfig{
			Unit:      "celsius",
			Precision: 2,
		},
		Retry: RetryConfig{
			MaxAttempts:      3,
			InitialBackoffMs: 500,
			MaxBackoffMs:     5000,
			BreakerThreshold: 3,
		},
		Notify: NotifyConfig{
			Enabled:   true,
			AppName:   AppName,
			TimeoutMs: 10000,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Endpoint: "localhost:4317",
		},
	}
}

// DefaultCachePath places the location cache under the user's config directory,
// falling back to the working directory when none is known.
func DefaultCachePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", AppName, "location.toml")
	}
	return filepath.Join(dir, AppName, "location.toml")
}
