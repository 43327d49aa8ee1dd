package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	RPC     RPCConfig     `mapstructure:"rpc"`
	Store   StoreConfig   `mapstructure:"store"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// RPCConfig selects the daemon backend and its credentials
type RPCConfig struct {
	Client             string        `mapstructure:"client"`
	Username           string        `mapstructure:"username"`
	Password           string        `mapstructure:"password"`
	Timeout            time.Duration `mapstructure:"timeout"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
}

// StoreConfig points at the JSON key/value file holding the server address
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// HTTPConfig contains the API server settings
type HTTPConfig struct {
	Listen      string  `mapstructure:"listen"`
	CORSOrigin  string  `mapstructure:"cors_origin"`
	UploadDir   string  `mapstructure:"upload_dir"`
	MaxUploadMB int64   `mapstructure:"max_upload_mb"`
	RateLimit   float64 `mapstructure:"rate_limit"`
	RateBurst   int     `mapstructure:"rate_burst"`
}

// FilterConfig contains named filter expressions
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
	Default string            `mapstructure:"default"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// Backend names accepted in rpc.client
const (
	ClientTransmission = "transmission"
	ClientQBittorrent  = "qbittorrent"
)
