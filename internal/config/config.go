// Package config loads service configuration from .env, environment
// variables and an optional YAML file, in that order of precedence (lowest first).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	HTTPAddr         string        `yaml:"http_addr"`
	RequestBudget    time.Duration `yaml:"request_budget"`
	PrimaryTrials    int           `yaml:"primary_trials"`
	ComparisonTrials int           `yaml:"comparison_trials"`
	SimWorkers       int           `yaml:"sim_workers"` // 0 = GOMAXPROCS

	Coach CoachConfig `yaml:"coach"`
	Redis RedisConfig `yaml:"redis"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // "json" or "console"
}

// CoachConfig holds narrative coach configuration.
type CoachConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Provider   string        `yaml:"provider"`
	Endpoint   string        `yaml:"endpoint"`
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
	RatePerSec float64       `yaml:"rate_per_sec"`
	Burst      int           `yaml:"burst"`
}

// Ready reports whether the remote coach can be called.
func (c CoachConfig) Ready() bool {
	return c.Enabled && c.APIKey != "" && c.Endpoint != ""
}

// RedisConfig holds narrative cache configuration. Empty Addr disables the cache.
type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	NarrativeTTL time.Duration `yaml:"narrative_ttl"`
}

// Load reads .env (if present), the environment, then CONFIG_FILE (if set).
func Load() (*Config, error) {
	// Missing .env is fine; system env vars still apply
	_ = godotenv.Load()

	cfg := FromEnv()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables and defaults.
func FromEnv() *Config {
	return &Config{
		HTTPAddr:         getEnvOrDefault("HTTP_ADDR", ":8080"),
		RequestBudget:    getEnvDuration("REQUEST_BUDGET", 5*time.Second),
		PrimaryTrials:    getEnvInt("PRIMARY_TRIALS", 500),
		ComparisonTrials: getEnvInt("COMPARISON_TRIALS", 300),
		SimWorkers:       getEnvInt("SIM_WORKERS", 0),

		Coach: CoachConfig{
			Enabled:    getEnvBool("COACH_ENABLED", true),
			Provider:   strings.ToLower(getEnvOrDefault("COACH_PROVIDER", "groq")),
			Endpoint:   getEnvOrDefault("COACH_ENDPOINT", "https://api.groq.com/openai/v1"),
			APIKey:     os.Getenv("COACH_API_KEY"),
			Model:      getEnvOrDefault("COACH_MODEL", "llama-3.1-8b-instant"),
			Timeout:    getEnvDuration("COACH_TIMEOUT", 4*time.Second),
			RatePerSec: getEnvFloat("COACH_RATE_PER_SEC", 2),
			Burst:      getEnvInt("COACH_BURST", 4),
		},

		Redis: RedisConfig{
			Addr:         os.Getenv("REDIS_ADDR"),
			Password:     os.Getenv("REDIS_PASSWORD"),
			DB:           getEnvInt("REDIS_DB", 0),
			NarrativeTTL: getEnvDuration("NARRATIVE_TTL", 10*time.Minute),
		},

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

// MergeFile overlays the non-zero values of a YAML file onto c.
// Booleans can only be switched on by the file.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	overlayString(&c.HTTPAddr, file.HTTPAddr)
	overlay(&c.RequestBudget, file.RequestBudget)
	overlay(&c.PrimaryTrials, file.PrimaryTrials)
	overlay(&c.ComparisonTrials, file.ComparisonTrials)
	overlay(&c.SimWorkers, file.SimWorkers)

	c.Coach.Enabled = c.Coach.Enabled || file.Coach.Enabled
	overlayString(&c.Coach.Provider, strings.ToLower(file.Coach.Provider))
	overlayString(&c.Coach.Endpoint, file.Coach.Endpoint)
	overlayString(&c.Coach.APIKey, file.Coach.APIKey)
	overlayString(&c.Coach.Model, file.Coach.Model)
	overlay(&c.Coach.Timeout, file.Coach.Timeout)
	overlay(&c.Coach.RatePerSec, file.Coach.RatePerSec)
	overlay(&c.Coach.Burst, file.Coach.Burst)

	overlayString(&c.Redis.Addr, file.Redis.Addr)
	overlayString(&c.Redis.Password, file.Redis.Password)
	overlay(&c.Redis.DB, file.Redis.DB)
	overlay(&c.Redis.NarrativeTTL, file.Redis.NarrativeTTL)

	overlayString(&c.LogLevel, file.LogLevel)
	overlayString(&c.LogFormat, file.LogFormat)
	return nil
}

func overlay[T int | float64 | time.Duration](dst *T, v T) {
	if v != 0 {
		*dst = v
	}
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvFloat gets environment variable as float64 or returns default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// getEnvBool accepts 1/0, true/false, yes/no
func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// getEnvDuration parses a Go duration ("4s") or plain seconds ("4")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}
