// Package config reads service settings from the environment. A .env file in
// the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"rhythm-unlock-service/utils"
)

const (
	ThemeSourceFile = "file"
	ThemeSourceR2   = "r2"
)

type Config struct {
	Port           string
	DatabaseURL    string
	ServiceToken   string
	AllowedOrigins []string
	LogLevel       string

	UnlocksEnabled bool

	ThemeSource        string
	ThemePath          string
	ThemeObjectKey     string
	ThemeWatchInterval time.Duration
	ResolveInterval    time.Duration

	R2 utils.R2Config
}

// LoadDotEnv loads .env if it exists. A missing file is not an error.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		utils.Log.Info("⚠️  No .env file found, reading environment variables directly")
	}
}

// FromEnv builds a Config from environment variables.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           getenv("PORT", "5200"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ServiceToken:   os.Getenv("GAME_SERVICE_TOKEN"),
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		ThemeSource:    strings.ToLower(getenv("THEME_SOURCE", ThemeSourceFile)),
		ThemePath:      getenv("THEME_PATH", "./theme/metrics.yaml"),
		ThemeObjectKey: getenv("THEME_OBJECT_KEY", "themes/default/metrics.yaml"),
		R2: utils.R2Config{
			AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
			Bucket:          os.Getenv("R2_BUCKET_NAME"),
			Endpoint:        os.Getenv("R2_ENDPOINT"),
		},
	}

	var err error
	if cfg.UnlocksEnabled, err = boolEnv("UNLOCKS_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.ThemeWatchInterval, err = durationEnv("THEME_WATCH_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.ResolveInterval, err = durationEnv("RESOLVE_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable not set")
	}
	if c.ServiceToken == "" {
		return errors.New("GAME_SERVICE_TOKEN environment variable not set")
	}
	switch c.ThemeSource {
	case ThemeSourceFile:
		if c.ThemePath == "" {
			return errors.New("THEME_PATH must be set when THEME_SOURCE=file")
		}
	case ThemeSourceR2:
		if c.R2.Bucket == "" {
			return errors.New("R2_BUCKET_NAME must be set when THEME_SOURCE=r2")
		}
	default:
		return fmt.Errorf("unknown THEME_SOURCE %q", c.ThemeSource)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
