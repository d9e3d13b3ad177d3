/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures the relay by reading operating system environment variables: the running
environment, listening port, CORS allowed origins, log level, Proof-of-Work difficulty,
message limits and per-connection rate limits.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int
	LogLevel    string

	// Security Settings
	AllowedOrigins []string
	PowDifficulty  int

	// Connection Limits
	ConnectRate  float64
	ConnectBurst int
	MessageRate  float64
	MessageBurst int

	// Message Settings
	MaxMessageBytes int
	SendQueueSize   int
}

// IsDevelopment reports whether the relay runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig reads and parses the application configuration from environment variables.
// It provides default values for each configuration item and performs necessary type conversions and validation.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if cfg.Port, err = intEnv("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	cfg.LogLevel = strings.TrimSpace(os.Getenv("LOG_LEVEL"))

	// --- Security Settings ---
	cfg.AllowedOrigins = []string{}
	if originsStr := os.Getenv("ALLOWED_ORIGINS"); originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}
	if !cfg.IsDevelopment() && len(cfg.AllowedOrigins) == 0 {
		return nil, fmt.Errorf("ALLOWED_ORIGINS environment variable is required in %s environment", cfg.Environment)
	}

	if cfg.PowDifficulty, err = intEnv("POW_DIFFICULTY", 0); err != nil {
		return nil, err
	}
	if cfg.PowDifficulty < 0 || cfg.PowDifficulty > 8 {
		return nil, fmt.Errorf("POW_DIFFICULTY must be between 0 and 8, got %d", cfg.PowDifficulty)
	}

	// --- Connection Limits ---
	if cfg.ConnectRate, err = floatEnv("CONNECT_RATE", 0.5); err != nil {
		return nil, err
	}
	if cfg.ConnectBurst, err = intEnv("CONNECT_BURST", 10); err != nil {
		return nil, err
	}
	if cfg.MessageRate, err = floatEnv("MESSAGE_RATE", 5); err != nil {
		return nil, err
	}
	if cfg.MessageBurst, err = intEnv("MESSAGE_BURST", 10); err != nil {
		return nil, err
	}
	if cfg.ConnectRate <= 0 || cfg.MessageRate <= 0 || cfg.ConnectBurst < 1 || cfg.MessageBurst < 1 {
		return nil, fmt.Errorf("rate limits must be positive")
	}

	// --- Message Settings ---
	if cfg.MaxMessageBytes, err = intEnv("MAX_MESSAGE_BYTES", 2000); err != nil {
		return nil, err
	}
	if cfg.MaxMessageBytes < 1 {
		return nil, fmt.Errorf("MAX_MESSAGE_BYTES must be positive, got %d", cfg.MaxMessageBytes)
	}

	if cfg.SendQueueSize, err = intEnv("SEND_QUEUE_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.SendQueueSize < 1 {
		return nil, fmt.Errorf("SEND_QUEUE_SIZE must be positive, got %d", cfg.SendQueueSize)
	}

	return cfg, nil
}

// intEnv parses an integer environment variable, returning def when it is unset.
func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

// floatEnv parses a float environment variable, returning def when it is unset.
func floatEnv(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}
