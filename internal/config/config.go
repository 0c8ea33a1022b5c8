package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr            string   `env:"ADDR" envDefault:":8080"`
	Env             string   `env:"APP_ENV" envDefault:"production"`
	AllowedOrigins  []string `env:"WS_ORIGINS" envSeparator:","`
	ShutdownTimeout int      `env:"SHUTDOWN_TIMEOUT_SEC" envDefault:"10"`
}

// Load reads configuration from the environment, after a best-effort
// .env load for local development.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) Development() bool {
	return c.Env == "development"
}
