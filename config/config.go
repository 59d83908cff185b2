// Package config loads TripMesh application configuration from YAML with
// environment variable expansion. It is used by the example binaries; library
// code takes its configuration through constructor options.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the root configuration structure, mirroring tripmesh.yaml.
type AppConfig struct {
	Model    ModelConfig   `yaml:"model"`
	Flights  FlightsConfig `yaml:"flights"`
	Chat     ChatConfig    `yaml:"chat"`
	Storage  StorageConfig `yaml:"storage"`
	LogLevel string        `yaml:"log_level"`
}

// ModelConfig selects and configures the chat completion backend.
type ModelConfig struct {
	Provider          string        `yaml:"provider"`            // "openai" or "anthropic"
	Name              string        `yaml:"name"`                // model identifier, e.g. "gpt-4o-mini"
	APIKey            string        `yaml:"api_key"`             // supports ${VAR} expansion
	BaseURL           string        `yaml:"base_url"`            // optional override for proxies / Azure
	Timeout           time.Duration `yaml:"timeout"`             // per-request timeout, e.g. "60s"
	RequestsPerMinute int           `yaml:"requests_per_minute"` // 0 disables rate limiting
}

// FlightsConfig configures the flight search tool.
type FlightsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	APIKey   string `yaml:"api_key"` // supports ${VAR} expansion
	BaseURL  string `yaml:"base_url"`
	Currency string `yaml:"currency"`
}

// ChatConfig bounds group conversations.
type ChatConfig struct {
	MaxRounds               int `yaml:"max_rounds"`
	MaxRoundsPerParticipant int `yaml:"max_rounds_per_participant"`
}

// StorageConfig configures the optional S3-compatible artifact store. When
// Endpoint is empty the in-memory store is used.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // supports ${VAR} expansion
	SecretKey string `yaml:"secret_key"` // supports ${VAR} expansion
	UseSSL    bool   `yaml:"use_ssl"`
}

// Load reads the YAML file at path, expands ${VAR} references from the
// environment, and validates the result.
func Load(path string) (*AppConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(raw))

	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Model.Provider == "" {
		c.Model.Provider = "openai"
	}
	if c.Model.Timeout == 0 {
		c.Model.Timeout = 60 * time.Second
	}
	if c.Flights.BaseURL == "" {
		c.Flights.BaseURL = "https://serpapi.com/search"
	}
	if c.Flights.Currency == "" {
		c.Flights.Currency = "USD"
	}
	if c.Chat.MaxRounds == 0 {
		c.Chat.MaxRounds = 20
	}
	if c.Chat.MaxRoundsPerParticipant == 0 {
		c.Chat.MaxRoundsPerParticipant = 9
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *AppConfig) validate() error {
	switch c.Model.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("model.provider must be \"openai\" or \"anthropic\", got %q", c.Model.Provider)
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.Flights.Enabled && c.Flights.APIKey == "" {
		return fmt.Errorf("flights.api_key is required when flights.enabled is true")
	}
	if c.Storage.Endpoint != "" && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage.endpoint is set")
	}
	return nil
}
