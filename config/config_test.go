package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/unlocks")
	t.Setenv("GAME_SERVICE_TOKEN", "secret")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "5200" || cfg.ThemeSource != ThemeSourceFile || !cfg.UnlocksEnabled {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ResolveInterval != 30*time.Second || cfg.ThemeWatchInterval != 2*time.Second {
		t.Fatalf("intervals = %v %v", cfg.ResolveInterval, cfg.ThemeWatchInterval)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("UNLOCKS_ENABLED", "false")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("THEME_SOURCE", "R2")
	t.Setenv("R2_BUCKET_NAME", "themes")
	t.Setenv("RESOLVE_INTERVAL", "5s")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.UnlocksEnabled {
		t.Fatalf("UNLOCKS_ENABLED=false ignored")
	}
	if cfg.ThemeSource != ThemeSourceR2 || cfg.R2.Bucket != "themes" {
		t.Fatalf("theme source = %q bucket = %q", cfg.ThemeSource, cfg.R2.Bucket)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.ResolveInterval != 5*time.Second {
		t.Fatalf("resolve interval = %v", cfg.ResolveInterval)
	}
}

func TestFromEnvErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing database", map[string]string{"DATABASE_URL": "", "GAME_SERVICE_TOKEN": "x"}},
		{"missing token", map[string]string{"DATABASE_URL": "x", "GAME_SERVICE_TOKEN": ""}},
		{"bad bool", map[string]string{"DATABASE_URL": "x", "GAME_SERVICE_TOKEN": "x", "UNLOCKS_ENABLED": "maybe"}},
		{"bad duration", map[string]string{"DATABASE_URL": "x", "GAME_SERVICE_TOKEN": "x", "RESOLVE_INTERVAL": "-1s"}},
		{"r2 without bucket", map[string]string{"DATABASE_URL": "x", "GAME_SERVICE_TOKEN": "x", "THEME_SOURCE": "r2", "R2_BUCKET_NAME": ""}},
		{"unknown source", map[string]string{"DATABASE_URL": "x", "GAME_SERVICE_TOKEN": "x", "THEME_SOURCE": "ftp"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
