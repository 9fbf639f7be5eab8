package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. VPYPENODE_VPYPE_BIN.
const EnvPrefix = "VPYPENODE"

// Loader reads configuration through viper.
type Loader struct {
	path  string
	viper *viper.Viper
}

// NewLoader creates a loader. An explicit path must exist; an empty path
// reads DefaultPath() if present.
func NewLoader(path string) *Loader {
	return &Loader{path: path, viper: viper.New()}
}

// DefaultPath returns $XDG_CONFIG_HOME/vpypenode/config.toml (or the OS
// equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "vpypenode", "config.toml")
}

// BindFlag makes a flag override key when the flag is set.
func (l *Loader) BindFlag(key string, f *pflag.Flag) error {
	if f == nil {
		return fmt.Errorf("bind %s: no such flag", key)
	}
	return l.viper.BindPFlag(key, f)
}

// Load reads, decodes and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	l.viper.SetConfigType("toml")
	l.viper.SetEnvPrefix(EnvPrefix)
	l.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.viper.AutomaticEnv()
	l.setDefaults()

	if err := l.readFile(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := l.viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Used returns the config file that was read, or "" if none.
func (l *Loader) Used() string {
	return l.viper.ConfigFileUsed()
}

func (l *Loader) readFile() error {
	path := l.path
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return nil
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}
	l.viper.SetConfigFile(path)
	if err := l.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func (l *Loader) setDefaults() {
	l.viper.SetDefault("vpype.bin", "vpype")
	l.viper.SetDefault("python.bin", "")

	l.viper.SetDefault("cache.enabled", false)
	l.viper.SetDefault("cache.dir", "")
	l.viper.SetDefault("cache.ttl", "168h")
	l.viper.SetDefault("cache.redis_url", "")

	l.viper.SetDefault("log.level", "info")
	l.viper.SetDefault("log.file", "")
	l.viper.SetDefault("log.max_size_mb", 50)
	l.viper.SetDefault("log.max_backups", 3)
	l.viper.SetDefault("log.max_age_days", 28)
	l.viper.SetDefault("log.compress", false)

	l.viper.SetDefault("serve.addr", ":8188")
	l.viper.SetDefault("serve.read_timeout", "30s")
	l.viper.SetDefault("serve.max_body_bytes", 32<<20)

	l.viper.SetDefault("batch.jobs", runtime.NumCPU())
}

// Validate checks values that cannot be expressed as defaults.
func (c *Config) Validate() error {
	if c.Vpype.Bin == "" {
		return errors.New("vpype.bin must not be empty")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Batch.Jobs < 1 {
		return fmt.Errorf("batch.jobs must be at least 1, got %d", c.Batch.Jobs)
	}
	if c.Serve.ReadTimeout < 0 || c.Serve.MaxBodyBytes < 0 {
		return errors.New("serve limits must not be negative")
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// CacheTTL returns the configured TTL, with zero meaning no expiry.
func (c *Config) CacheTTL() time.Duration {
	return c.Cache.TTL
}
