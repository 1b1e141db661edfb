package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/superagent-ai/superagent/console/internal/config"
)

// chdir moves into an empty directory so a developer's .env is not picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)
	t.Setenv("SUPERAGENT_CONFIG_FILE", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 8080 || cfg.Auth.SessionCookie != "sa_session" || cfg.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("defaults = %+v", cfg)
	}
	if !cfg.Auth.RequireAuth || cfg.API.StrictStatus {
		t.Errorf("auth/api defaults = %+v %+v", cfg.Auth, cfg.API)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "console.toml")
	file := `
port = 9000
log_level = "debug"

[api]
url = "https://file.example.com/api/v1"
strict_status = true

[auth]
session_ttl = "2h"
`
	if err := os.WriteFile(path, []byte(file), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SUPERAGENT_CONFIG_FILE", path)
	t.Setenv("NEXT_PUBLIC_SUPERAGENT_API_URL", "https://env.example.com/api/v1")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9000 || cfg.LogLevel != "debug" || !cfg.API.StrictStatus {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.API.URL != "https://env.example.com/api/v1" {
		t.Errorf("env did not override file: %q", cfg.API.URL)
	}
	if cfg.Auth.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %s", cfg.Auth.SessionTTL)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdir(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("REDIS_URL=redis://localhost:6379/2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SUPERAGENT_CONFIG_FILE", "")
	t.Setenv("REDIS_URL", "")
	os.Unsetenv("REDIS_URL")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Redis.URL != "redis://localhost:6379/2" {
		t.Errorf("Redis.URL = %q", cfg.Redis.URL)
	}
	os.Unsetenv("REDIS_URL")
}

func TestLoad_InvalidPort(t *testing.T) {
	chdir(t)
	t.Setenv("SUPERAGENT_CONFIG_FILE", "")
	t.Setenv("SUPERAGENT_PORT", "70000")

	if _, err := config.Load(); err == nil {
		t.Fatal("Load() error = nil, want invalid port")
	}
}
