// Package config loads vpypenode settings from a TOML file, VPYPENODE_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"time"
)

// Config is the complete runtime configuration.
type Config struct {
	Vpype  VpypeConfig  `mapstructure:"vpype"`
	Python PythonConfig `mapstructure:"python"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Log    LogConfig    `mapstructure:"log"`
	Serve  ServeConfig  `mapstructure:"serve"`
	Batch  BatchConfig  `mapstructure:"batch"`
}

// VpypeConfig locates the vpype executable.
type VpypeConfig struct {
	Bin string `mapstructure:"bin"`
}

// PythonConfig selects the interpreter for script-based nodes. Empty means
// the interpreter vpype is installed into.
type PythonConfig struct {
	Bin string `mapstructure:"bin"`
}

// CacheConfig controls result caching. Disabled by default.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Dir      string        `mapstructure:"dir"`
	TTL      time.Duration `mapstructure:"ttl"`
	RedisURL string        `mapstructure:"redis_url"`
}

// LogConfig controls logging. File enables a rotating log file for serve.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ServeConfig configures the HTTP node server.
type ServeConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// BatchConfig configures the batch command.
type BatchConfig struct {
	Jobs int `mapstructure:"jobs"`
}
