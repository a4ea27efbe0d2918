package config

import (
	"github.com/caarlos0/env/v11"
)

// Config holds the process configuration, read from the environment.
type Config struct {
	Port        string `env:"PORT" envDefault:"3000"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Domain      string `env:"DOMAIN"`
	StorageDir  string `env:"DOCUMENT_STORAGE_DIR" envDefault:"./documents"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
