package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aurascan/aurascan/internal/ai"
	"github.com/aurascan/aurascan/internal/gateway"
)

// Config holds all application configuration.
type Config struct {
	Database struct {
		Path string `json:"path"`
	} `json:"database"`

	AI ai.Config `json:"ai"`

	Analysis struct {
		MaxAttempts         int `json:"max_attempts"`
		AttemptTimeoutSecs  int `json:"attempt_timeout_seconds"`
		RetryBaseDelayMilli int `json:"retry_base_delay_ms"`
		CacheTTLMinutes     int `json:"cache_ttl_minutes"`
	} `json:"analysis"`

	Logging struct {
		Level string `json:"level"` // "debug", "info", "warn", "error"
	} `json:"logging"`
}

// Load reads configuration from a JSON file, then fills credentials and
// missing values from the environment. A missing file is not an error; the
// defaults apply.
func Load(configPath string) (*Config, error) {
	var config Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err == nil {
			if err := json.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if config.Database.Path == "" {
		config.Database.Path = "aurascan.db"
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	config.AI.LoadEnv()
	return &config, nil
}

// GatewayOptions maps the analysis section onto gateway options. Zero values
// fall through to the gateway defaults.
func (c *Config) GatewayOptions() gateway.Options {
	return gateway.Options{
		MaxAttempts:    c.Analysis.MaxAttempts,
		AttemptTimeout: time.Duration(c.Analysis.AttemptTimeoutSecs) * time.Second,
		RetryBaseDelay: time.Duration(c.Analysis.RetryBaseDelayMilli) * time.Millisecond,
		CacheTTL:       time.Duration(c.Analysis.CacheTTLMinutes) * time.Minute,
	}
}

// GetConfigPath returns the path to the configuration file.
func GetConfigPath() string {
	// First try environment variable
	if path := os.Getenv("AURASCAN_CONFIG"); path != "" {
		return path
	}

	// Then try config directory
	configDir := "config"
	if _, err := os.Stat(configDir); err == nil {
		return filepath.Join(configDir, "config.json")
	}

	// Finally, try current directory
	return "config.json"
}
