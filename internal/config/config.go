package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string
	LogLevel string

	DataDir         string
	DocumentPattern string

	// Traffic control is off by default; the original service had none.
	APIRateLimitRPS   float64
	APIRateLimitBurst int
	APIMaxInFlight    int
	APIQueueTimeoutMS int
}

// Load builds the configuration from the environment, then overlays the
// optional YAML file named by CONFIG_FILE.
func Load() (Config, error) {
	cfg := Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		DataDir:         mustEnv("DATA_DIR", "./data"),
		DocumentPattern: mustEnv("DOCUMENT_PATTERN", "*.json"),

		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 10),
		APIMaxInFlight:    mustEnvInt("API_MAX_IN_FLIGHT", 0),
		APIQueueTimeoutMS: mustEnvInt("API_QUEUE_TIMEOUT_MS", 100),
	}

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		return cfg, nil
	}
	if err := overlayFile(&cfg, path); err != nil {
		return Config{}, fmt.Errorf("load config file %s: %w", path, err)
	}
	return cfg, nil
}

type fileConfig struct {
	APIPort  *string `yaml:"api_port"`
	LogLevel *string `yaml:"log_level"`

	DataDir         *string `yaml:"data_dir"`
	DocumentPattern *string `yaml:"document_pattern"`

	APIRateLimitRPS   *float64 `yaml:"api_rate_limit_rps"`
	APIRateLimitBurst *int     `yaml:"api_rate_limit_burst"`
	APIMaxInFlight    *int     `yaml:"api_max_in_flight"`
	APIQueueTimeoutMS *int     `yaml:"api_queue_timeout_ms"`
}

func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.APIPort != nil {
		cfg.APIPort = *fc.APIPort
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.DataDir != nil {
		cfg.DataDir = *fc.DataDir
	}
	if fc.DocumentPattern != nil {
		cfg.DocumentPattern = *fc.DocumentPattern
	}
	if fc.APIRateLimitRPS != nil {
		cfg.APIRateLimitRPS = *fc.APIRateLimitRPS
	}
	if fc.APIRateLimitBurst != nil {
		cfg.APIRateLimitBurst = *fc.APIRateLimitBurst
	}
	if fc.APIMaxInFlight != nil {
		cfg.APIMaxInFlight = *fc.APIMaxInFlight
	}
	if fc.APIQueueTimeoutMS != nil {
		cfg.APIQueueTimeoutMS = *fc.APIQueueTimeoutMS
	}
	return nil
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
