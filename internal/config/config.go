package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Addr        string
	DatabaseURL string
	SeedFile    string
	LogVerbose  bool
	// SpinDuration drives both the wheel's CSS transition and the wait before
	// a spin result is announced.
	SpinDuration  time.Duration
	BaseURL       string
	ClientTimeout time.Duration
}

func Default() Config {
	return Config{
		Addr:          ":8080",
		SeedFile:      "prizes.yaml",
		SpinDuration:  4000 * time.Millisecond,
		BaseURL:       "http://localhost:8080",
		ClientTimeout: 10 * time.Second,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("ADDR"); raw != "" {
		cfg.Addr = raw
	}
	if raw := os.Getenv("PORT"); raw != "" && os.Getenv("ADDR") == "" {
		cfg.Addr = ":" + raw
	}
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.DatabaseURL = raw
	}
	if raw := os.Getenv("SEED_FILE"); raw != "" {
		cfg.SeedFile = raw
	}
	if raw := os.Getenv("LOG_VERBOSE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.LogVerbose = value
		}
	}
	if raw := os.Getenv("SPIN_DURATION_MS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.SpinDuration = time.Duration(value) * time.Millisecond
		}
	}
	if raw := os.Getenv("WHEEL_BASE_URL"); raw != "" {
		cfg.BaseURL = raw
	}
	if raw := os.Getenv("CLIENT_TIMEOUT"); raw != "" {
		if value, err := time.ParseDuration(raw); err == nil && value > 0 {
			cfg.ClientTimeout = value
		}
	}
	return cfg
}
