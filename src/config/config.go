package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/ogri-la/strongbox-disco-go/src/api"
)

// Config holds settings read from the environment. CLI flags override them.
type Config struct {
	APIBaseURL string
	Lang       string
	CacheDir   string
	CacheTTL   time.Duration
	Timeout    time.Duration
}

// Load reads an optional .env file from the working directory, then the environment
func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get current working directory: %w", err)
	}

	cacheTTL, err := getEnvDuration("DISCO_CACHE_TTL", time.Hour)
	if err != nil {
		return Config{}, err
	}

	timeout, err := getEnvDuration("DISCO_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	return Config{
		APIBaseURL: getEnv("DISCO_API_URL", api.DefaultBaseURL),
		Lang:       getEnv("DISCO_LANG", api.DefaultLang),
		CacheDir:   getEnv("DISCO_CACHE_DIR", filepath.Join(cwd, "cache")),
		CacheTTL:   cacheTTL,
		Timeout:    timeout,
	}, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("failed to parse %s: negative duration %s", key, value)
	}
	return duration, nil
}
