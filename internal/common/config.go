package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Templates TemplatesConfig
	LLM       LLMConfig
	Hints     HintsConfig
	Batch     BatchConfig
	LogLevel  slog.Level
}

// TemplatesConfig holds template discovery configuration
type TemplatesConfig struct {
	Dir string
}

// LLMConfig holds structuring-service configuration
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	RPS         float64
	MaxRetries  int
	BaseDelay   time.Duration
	PromptPath  string
}

// HintsConfig holds the known brands/categories store configuration
type HintsConfig struct {
	Driver      string // sqlite | postgres | none
	DSN         string
	MaxConns    int32
	MinConns    int32
	DialTimeout time.Duration
}

// BatchConfig holds directory processing configuration
type BatchConfig struct {
	Workers int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Templates: TemplatesConfig{
			Dir: getEnv("TEMPLATES_DIR", "templates"),
		},
		LLM: LLMConfig{
			APIKey:      getEnv("MISTRAL_API_KEY", ""),
			BaseURL:     getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
			Model:       getEnv("MISTRAL_MODEL", "mistral-large-latest"),
			Temperature: getEnvAsFloat32("MISTRAL_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("MISTRAL_TIMEOUT", 60*time.Second),
			RPS:         getEnvAsFloat64("MISTRAL_RPS", 1.0),
			MaxRetries:  getEnvAsInt("LLM_MAX_RETRIES", 3),
			BaseDelay:   getEnvAsDuration("LLM_BASE_DELAY", 2*time.Second),
			PromptPath:  getEnv("PROMPT_PATH", ""),
		},
		Hints: HintsConfig{
			Driver:      strings.ToLower(getEnv("HINTS_DRIVER", "none")),
			DSN:         getEnv("HINTS_DSN", ""),
			MaxConns:    getEnvAsInt32("DB_MAX_CONNS", 4),
			MinConns:    getEnvAsInt32("DB_MIN_CONNS", 0),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Batch: BatchConfig{
			Workers: getEnvAsInt("BATCH_WORKERS", 4),
		},
		LogLevel: getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	if value := os.Getenv(key); value != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(value)); err == nil {
			return lvl
		}
	}
	return defaultValue
}

// RetryPolicy derives the structuring retry policy from the LLM settings.
func (c LLMConfig) RetryPolicy() RetryPolicy {
	p := DefaultRetryPolicy()
	if c.MaxRetries > 0 {
		p.MaxAttempts = c.MaxRetries
	}
	if c.BaseDelay > 0 {
		p.BaseDelay = c.BaseDelay
	}
	return p
}

// Validate validates the loaded configuration. requireLLM is false when structuring is skipped.
func (c *Config) Validate(requireLLM bool) error {
	v := NewValidator()
	v.Field("TEMPLATES_DIR", c.Templates.Dir, Required)
	v.Field("HINTS_DRIVER", c.Hints.Driver, OneOf("sqlite", "postgres", "none"))
	if c.Hints.Driver == "sqlite" || c.Hints.Driver == "postgres" {
		v.Field("HINTS_DSN", c.Hints.DSN, Required)
	}
	if requireLLM {
		v.Field("MISTRAL_API_KEY", c.LLM.APIKey, Required)
	}
	if c.Batch.Workers <= 0 {
		v.Field("BATCH_WORKERS", c.Batch.Workers, func(name string, value interface{}) *ValidationError {
			return &ValidationError{Field: name, Value: value, Message: "must be positive"}
		})
	}
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
