package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the Superagent console.
//
// Values come from, in increasing priority: built-in defaults, the optional
// TOML file named by SUPERAGENT_CONFIG_FILE, a .env file in the working
// directory, and the process environment.
type Config struct {
	Port      int             `toml:"port"`
	Version   string          `toml:"version"`
	PublicURL string          `toml:"public_url"`
	LogLevel  string          `toml:"log_level"`
	API       APIConfig       `toml:"api"`
	Supabase  SupabaseConfig  `toml:"supabase"`
	Segment   SegmentConfig   `toml:"segment"`
	Auth      AuthConfig      `toml:"auth"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// APIConfig points at the remote Superagent REST API.
type APIConfig struct {
	URL string `toml:"url"`
	// StrictStatus turns non-2xx responses into errors.
	StrictStatus bool `toml:"strict_status"`
}

type SupabaseConfig struct {
	URL         string `toml:"url"`
	AnonKey     string `toml:"anon_key"`
	StorageName string `toml:"storage_name"`
}

// SegmentConfig is passed through to the browser bundle; the server never
// calls Segment itself.
type SegmentConfig struct {
	WriteKey string `toml:"write_key"`
}

type AuthConfig struct {
	RequireAuth   bool          `toml:"require_auth"`
	SessionTTL    time.Duration `toml:"-"`
	SessionCookie string        `toml:"session_cookie"`
	// SessionTTLText is the file form of SessionTTL ("12h").
	SessionTTLText string `toml:"session_ttl"`
	// SignedInPath is where the browser lands after a successful sign-in.
	SignedInPath string `toml:"signed_in_path"`
}

type DatabaseConfig struct {
	// URL selects PostgreSQL; empty keeps profiles in memory.
	URL            string `toml:"url"`
	MaxConnections int    `toml:"max_connections"`
	// DataDir is where the in-memory store writes its snapshot.
	DataDir string `toml:"data_dir"`
}

type RedisConfig struct {
	// URL selects Redis-backed sessions; empty keeps sessions in memory.
	URL string `toml:"url"`
}

type TelemetryConfig struct {
	Enabled      bool   `toml:"enabled"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:     8080,
		Version:  "0.1.0",
		LogLevel: "info",
		API: APIConfig{
			URL: "http://localhost:8080/api/v1",
		},
		Auth: AuthConfig{
			RequireAuth:   true,
			SessionTTL:    24 * time.Hour,
			SessionCookie: "sa_session",
			SignedInPath:  "/agents",
		},
		Database: DatabaseConfig{
			MaxConnections: 10,
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
			ServiceName:  "superagent-console",
		},
	}
}

// Load reads configuration from the optional TOML file, .env and the
// environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("SUPERAGENT_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.loadEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if c.Auth.SessionTTLText != "" {
		d, err := time.ParseDuration(c.Auth.SessionTTLText)
		if err != nil {
			return fmt.Errorf("parse config %s: session_ttl: %w", path, err)
		}
		c.Auth.SessionTTL = d
	}
	return nil
}

func (c *Config) loadEnv() {
	c.Port = envInt("SUPERAGENT_PORT", c.Port)
	c.Version = envStr("SUPERAGENT_VERSION", c.Version)
	c.PublicURL = envStr("SUPERAGENT_PUBLIC_URL", c.PublicURL)
	c.LogLevel = envStr("SUPERAGENT_LOG_LEVEL", c.LogLevel)

	c.API.URL = envStr("NEXT_PUBLIC_SUPERAGENT_API_URL", c.API.URL)
	c.API.StrictStatus = envBool("SUPERAGENT_STRICT_STATUS", c.API.StrictStatus)

	c.Supabase.URL = envStr("NEXT_PUBLIC_SUPABASE_URL", c.Supabase.URL)
	c.Supabase.AnonKey = envStr("NEXT_PUBLIC_SUPABASE_ANON_KEY", c.Supabase.AnonKey)
	c.Supabase.StorageName = envStr("NEXT_PUBLIC_SUPABASE_STORAGE_NAME", c.Supabase.StorageName)
	c.Segment.WriteKey = envStr("NEXT_PUBLIC_SEGMENT_WRITE_KEY", c.Segment.WriteKey)

	c.Auth.RequireAuth = envBool("SUPERAGENT_REQUIRE_AUTH", c.Auth.RequireAuth)
	c.Auth.SessionTTL = envDuration("SUPERAGENT_SESSION_TTL", c.Auth.SessionTTL)
	c.Auth.SessionCookie = envStr("SUPERAGENT_SESSION_COOKIE", c.Auth.SessionCookie)

	c.Database.URL = envStr("DATABASE_URL", c.Database.URL)
	c.Database.MaxConnections = envInt("DATABASE_MAX_CONNECTIONS", c.Database.MaxConnections)
	c.Database.DataDir = envStr("SUPERAGENT_DATA_DIR", c.Database.DataDir)

	c.Redis.URL = envStr("REDIS_URL", c.Redis.URL)

	c.Telemetry.Enabled = envBool("OTEL_ENABLED", c.Telemetry.Enabled)
	c.Telemetry.OTLPEndpoint = envStr("OTEL_EXPORTER_OTLP_ENDPOINT", c.Telemetry.OTLPEndpoint)
	c.Telemetry.ServiceName = envStr("OTEL_SERVICE_NAME", c.Telemetry.ServiceName)
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if strings.TrimSpace(c.API.URL) == "" {
		return fmt.Errorf("NEXT_PUBLIC_SUPERAGENT_API_URL is required")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("invalid session ttl %s", c.Auth.SessionTTL)
	}
	if c.Auth.SessionCookie == "" {
		return fmt.Errorf("session cookie name is required")
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
