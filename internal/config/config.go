package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/taskly/dashboard/internal/request"
	"github.com/ulule/limiter/v3"
	"golang.org/x/text/language"
)

// Task sources the server can seed the dashboard from
const (
	TaskSourceFixture  = "fixture"
	TaskSourcePostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	ServerPort       string
	FrontendURL      string
	TaskSource       string
	FixtureFile      string
	DatabaseURL      string
	RedisURL         string
	RabbitMQURL      string
	RabbitMQPrefetch int
	Locale           string
	RateLimit        string
	// TrustedProxies lists proxies whose forwarding headers identify the client
	TrustedProxies   []string
	ServerDebugMode  bool
	EnableHSTS       bool
	OTELEnabled      bool
	OTELEndpoint     string
}

// Load loads configuration from environment variables. A .env file in the
// working directory, when present, fills in variables not already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFrom(os.Getenv)
}

// LoadFrom builds the configuration from an environment lookup function
func LoadFrom(getenv func(string) string) (*Config, error) {
	env := envReader(getenv)
	cfg := &Config{
		ServerPort:       env.get("SERVER_PORT", "8080"),
		FrontendURL:      env.get("FRONTEND_URL", "http://localhost:3000"),
		TaskSource:       env.get("TASK_SOURCE", TaskSourceFixture),
		FixtureFile:      env.get("FIXTURE_FILE", "fixtures/tasks.yaml"),
		DatabaseURL:      env.get("DATABASE_URL", ""),
		RedisURL:         env.get("REDIS_URL", ""),
		RabbitMQURL:      env.get("RABBITMQ_URL", ""),
		RabbitMQPrefetch: env.getInt("RABBITMQ_PREFETCH", 10),
		Locale:           env.get("DASHBOARD_LOCALE", "pt-BR"),
		RateLimit:        env.get("RATE_LIMIT", "100-M"),
		TrustedProxies:   splitList(env.get("TRUSTED_PROXIES", "")),
		ServerDebugMode:  env.getBool("SERVER_DEBUG_MODE", false),
		EnableHSTS:       env.getBool("ENABLE_HSTS", false),
		OTELEnabled:      env.getBool("OTEL_ENABLED", false),
		OTELEndpoint:     env.get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted
func (c *Config) Validate() error {
	switch c.TaskSource {
	case TaskSourceFixture:
		if c.FixtureFile == "" {
			return fmt.Errorf("FIXTURE_FILE is required when TASK_SOURCE=%s", TaskSourceFixture)
		}
	case TaskSourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when TASK_SOURCE=%s", TaskSourcePostgres)
		}
	default:
		return fmt.Errorf("invalid TASK_SOURCE: %s (must be '%s' or '%s')", c.TaskSource, TaskSourceFixture, TaskSourcePostgres)
	}

	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("invalid DASHBOARD_LOCALE %q: %w", c.Locale, err)
	}
	if _, err := limiter.NewRateFromFormatted(c.RateLimit); err != nil {
		return fmt.Errorf("invalid RATE_LIMIT %q: %w", c.RateLimit, err)
	}
	if _, err := request.ParseTrustedProxies(c.TrustedProxies); err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	if c.RabbitMQPrefetch < 1 {
		return fmt.Errorf("RABBITMQ_PREFETCH must be at least 1, got %d", c.RabbitMQPrefetch)
	}
	return nil
}

// AllowedOrigins splits FrontendURL on commas, trimming and deduplicating
func (c *Config) AllowedOrigins() []string {
	return splitList(c.FrontendURL)
}

// ProxyTrust builds the trusted proxy set
func (c *Config) ProxyTrust() (*request.ProxyTrust, error) {
	return request.ParseTrustedProxies(c.TrustedProxies)
}

// splitList splits a comma separated value, trimming and deduplicating
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, p := range strings.Split(value, ",") {
		s := strings.TrimSpace(p)
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

type envReader func(string) string

func (e envReader) get(key, defaultValue string) string {
	if value := e(key); value != "" {
		return value
	}
	return defaultValue
}

func (e envReader) getBool(key string, defaultValue bool) bool {
	if value := e(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func (e envReader) getInt(key string, defaultValue int) int {
	if value := e(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
