// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every tunable the server reads at startup.
type Config struct {
	Server struct {
		Port string `envconfig:"SERVER_PORT" default:"8080"`
		// CORSOrigin is the allowed browser origin for the web client.
		CORSOrigin string `envconfig:"CORS_ORIGIN" default:"http://localhost:5173"`
	}

	Auth struct {
		JWTSecret string        `envconfig:"JWT_SECRET"`
		TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	}

	DB struct {
		Path string `envconfig:"DB_PATH" default:"./smartstocks.db"`
	}

	Redis struct {
		Host     string `envconfig:"REDIS_HOST"`
		Port     string `envconfig:"REDIS_PORT" default:"6379"`
		Password string `envconfig:"REDIS_PASSWORD"`
	}

	ExchangeRate struct {
		// RefreshInterval is both the cache freshness window and the
		// background updater period.
		RefreshInterval time.Duration `envconfig:"EXCHANGE_RATE_REFRESH_INTERVAL" default:"30m"`
	}

	KIS struct {
		AppKey    string `envconfig:"KIS_APP_KEY"`
		AppSecret string `envconfig:"KIS_APP_SECRET"`
		BaseURL   string `envconfig:"KIS_BASE_URL" default:"https://openapi.koreainvestment.com:9443"`
	}

	AlphaVantage struct {
		APIKey  string `envconfig:"ALPHA_VANTAGE_API_KEY"`
		BaseURL string `envconfig:"ALPHA_VANTAGE_BASE_URL" default:"https://www.alphavantage.co/query"`
	}
}

// Load reads .env (if present) and resolves the configuration.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.ExchangeRate.RefreshInterval < time.Minute {
		return fmt.Errorf("EXCHANGE_RATE_REFRESH_INTERVAL must be at least 1m, got %s", cfg.ExchangeRate.RefreshInterval)
	}
	if cfg.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.Auth.TokenTTL)
	}
	return nil
}
