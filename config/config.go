package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. TRBRIDGE_RPC_PASSWORD.
const EnvPrefix = "TRBRIDGE"

// Load loads the configuration from file. A missing file is not an error
// unless configPath was given explicitly.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("trbridge")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".trbridge"))
		}

		// Check /etc
		v.AddConfigPath("/etc/trbridge/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && configPath == "":
			// Defaults and environment only
		case errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("config file not found: %w", err)
		default:
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// RPC defaults
	v.SetDefault("rpc.client", ClientTransmission)
	v.SetDefault("rpc.username", "transmission")
	v.SetDefault("rpc.password", "transmission")
	v.SetDefault("rpc.timeout", "30s")
	v.SetDefault("rpc.insecure_skip_verify", false)

	// Store defaults
	v.SetDefault("store.path", "config.json")

	// HTTP defaults
	v.SetDefault("http.listen", ":5000")
	v.SetDefault("http.cors_origin", "*")
	v.SetDefault("http.upload_dir", "")
	v.SetDefault("http.max_upload_mb", 10)
	v.SetDefault("http.rate_limit", 0)
	v.SetDefault("http.rate_burst", 20)

	// Filter defaults
	v.SetDefault("filter.default", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	switch cfg.RPC.Client {
	case ClientTransmission, ClientQBittorrent:
	default:
		return fmt.Errorf("invalid rpc.client: %s (must be '%s' or '%s')", cfg.RPC.Client, ClientTransmission, ClientQBittorrent)
	}

	if cfg.RPC.Timeout <= 0 {
		return fmt.Errorf("rpc.timeout must be positive")
	}

	if cfg.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}

	if cfg.HTTP.Listen == "" {
		return fmt.Errorf("http.listen is required")
	}
	if cfg.HTTP.MaxUploadMB <= 0 {
		return fmt.Errorf("http.max_upload_mb must be positive")
	}
	if cfg.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit must not be negative")
	}
	if cfg.HTTP.RateLimit > 0 && cfg.HTTP.RateBurst <= 0 {
		return fmt.Errorf("http.rate_burst must be positive when rate limiting is enabled")
	}

	if cfg.Filter.Default != "" {
		if _, ok := cfg.Filter.Presets[cfg.Filter.Default]; !ok {
			return fmt.Errorf("filter.default refers to unknown preset: %s", cfg.Filter.Default)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
