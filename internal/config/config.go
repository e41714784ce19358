package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	CoreDatabaseURL    string
	HTTPListenAddr     string
	MetricsListenAddr  string
	LogLevel           string
	ServiceName        string
	AgentServerURL     string
	AgentServerTimeout int
	WindowHours        int
	RunQuery           string
}

func Load() (*Config, error) {
	cfg := &Config{
		CoreDatabaseURL:   getEnv("CORE_DATABASE_URL", ""),
		HTTPListenAddr:    getEnv("HTTP_LISTEN_ADDR", ":8090"),
		MetricsListenAddr: getEnv("METRICS_LISTEN_ADDR", ":9090"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ServiceName:       getEnv("SERVICE_NAME", ""),
		AgentServerURL:    getEnv("AGENT_SERVER_URL", ""),
		RunQuery:          getEnv("SCHEDULER_RUN_QUERY", "run scheduled analysis"),
	}

	timeout, err := getEnvInt("AGENT_SERVER_TIMEOUT_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.AgentServerTimeout = timeout

	// The tick cadence and the dispatch window share this value. Keeping them
	// equal is what prevents gaps and double-coverage between consecutive ticks.
	windowHours, err := getEnvInt("SCHEDULER_WINDOW_HOURS", 3)
	if err != nil {
		return nil, err
	}
	cfg.WindowHours = windowHours

	return cfg, nil
}

// Validate checks that the fields required by the named binary are set.
func (c *Config) Validate(binary string) error {
	var missing []string

	required := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	switch binary {
	case "core-api":
		required("CORE_DATABASE_URL", c.CoreDatabaseURL)
		required("HTTP_LISTEN_ADDR", c.HTTPListenAddr)
	case "scheduler":
		required("CORE_DATABASE_URL", c.CoreDatabaseURL)
		required("AGENT_SERVER_URL", c.AgentServerURL)
		if c.WindowHours < 1 || c.WindowHours > 23 {
			return fmt.Errorf("SCHEDULER_WINDOW_HOURS must be between 1 and 23, got %d", c.WindowHours)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config for %s: %s", binary, strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
