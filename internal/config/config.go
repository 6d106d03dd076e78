package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL         = "http://localhost:8000/api/v1"
	DefaultRequestTimeout = 10 * time.Second
	DefaultCacheTTL       = 5 * time.Minute

	envPrefix = "COACHBOARD"
)

// Config is the CLI configuration, read from config.yaml and COACHBOARD_* env vars
type Config struct {
	APIURL         string          `yaml:"api_url" mapstructure:"api_url"`
	RequestTimeout time.Duration   `yaml:"request_timeout" mapstructure:"request_timeout"`
	Session        SessionConfig   `yaml:"session" mapstructure:"session"`
	Cache          CacheConfig     `yaml:"cache" mapstructure:"cache"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Log            LogConfig       `yaml:"log" mapstructure:"log"`
}

// SessionConfig picks where tokens are kept. Store is file, sqlite or memory.
type SessionConfig struct {
	Store string `yaml:"store" mapstructure:"store"`
	Path  string `yaml:"path,omitempty" mapstructure:"path"`
}

// CacheConfig controls the read cache. Backend is memory, redis or none.
type CacheConfig struct {
	Backend  string        `yaml:"backend" mapstructure:"backend"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
	RedisURL string        `yaml:"redis_url,omitempty" mapstructure:"redis_url"`
}

// RateLimitConfig throttles outgoing requests; RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" mapstructure:"rps"`
	Burst int     `yaml:"burst" mapstructure:"burst"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Dir is $COACHBOARD_HOME, or ~/.coachboard.
func Dir() (string, error) {
	if dir := os.Getenv(envPrefix + "_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".coachboard"), nil
}

// DefaultPath is config.yaml inside Dir.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("session.store", "file")
	v.SetDefault("session.path", "")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("rate_limit.rps", 0)
	v.SetDefault("rate_limit.burst", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads path (a missing file is fine), then .env and the environment.
// Environment values win over the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize(dir string) {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	c.Session.Store = strings.ToLower(c.Session.Store)
	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)

	if c.Session.Path == "" {
		switch c.Session.Store {
		case "sqlite":
			c.Session.Path = filepath.Join(dir, "session.db")
		default:
			c.Session.Path = filepath.Join(dir, "session.yaml")
		}
	}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	switch c.Session.Store {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("session.store must be file, sqlite or memory, got %q", c.Session.Store)
	}
	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be memory, redis or none, got %q", c.Cache.Backend)
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("rate_limit.rps must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// yamlConfig mirrors Config with durations spelled "10s" instead of nanoseconds.
type yamlConfig struct {
	APIURL         string          `yaml:"api_url"`
	RequestTimeout string          `yaml:"request_timeout"`
	Session        SessionConfig   `yaml:"session"`
	Cache          yamlCache       `yaml:"cache"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	Log            LogConfig       `yaml:"log"`
}

type yamlCache struct {
	Backend  string `yaml:"backend"`
	TTL      string `yaml:"ttl"`
	RedisURL string `yaml:"redis_url,omitempty"`
}

// Save writes cfg to path with secure permissions.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(yamlConfig{
		APIURL:         cfg.APIURL,
		RequestTimeout: cfg.RequestTimeout.String(),
		Session:        cfg.Session,
		Cache: yamlCache{
			Backend:  cfg.Cache.Backend,
			TTL:      cfg.Cache.TTL.String(),
			RedisURL: cfg.Cache.RedisURL,
		},
		RateLimit: cfg.RateLimit,
		Log:       cfg.Log,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
