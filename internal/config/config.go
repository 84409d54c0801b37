package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Geocoder GeocoderConfig `mapstructure:"geocoder"`
	Matching MatchingConfig `mapstructure:"matching"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite3, postgres
	Path   string `mapstructure:"path"`
	URL    string `mapstructure:"url"`
}

// RedisConfig enables the geocode cache when URL is set
type RedisConfig struct {
	URL string        `mapstructure:"url"`
	TTL time.Duration `mapstructure:"ttl"`
}

type GeocoderConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	URL       string        `mapstructure:"url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type MatchingConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	Workers      int `mapstructure:"workers"`
}

type ScheduleConfig struct {
	Spec  string `mapstructure:"spec"`
	Limit int    `mapstructure:"limit"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// Keys that `config set` accepts
var Keys = []string{
	"database.driver", "database.path", "database.url",
	"redis.url", "redis.ttl",
	"geocoder.enabled", "geocoder.url", "geocoder.user_agent", "geocoder.timeout",
	"matching.default_limit", "matching.workers",
	"schedule.spec", "schedule.limit",
	"log.json", "log.debug",
}

var AppConfig *Config

// Initialize loads or creates the configuration file under ~/.jobmatch
func Initialize() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return Load(dir)
}

// Load reads config.yaml from dir, writing a default one first if it is missing
func Load(dir string) error {
	configFile := filepath.Join(dir, "config.yaml")

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create default config if it doesn't exist
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := createDefaultConfig(configFile); err != nil {
			return err
		}
	}

	viper.SetConfigFile(configFile)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("JOBMATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults(dir)

	// Read config
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	// Unmarshal into struct
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	AppConfig = cfg

	return nil
}

func setDefaults(dir string) {
	viper.SetDefault("database.driver", "sqlite3")
	viper.SetDefault("database.path", filepath.Join(dir, "jobmatch.db"))
	viper.SetDefault("database.url", "")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("redis.ttl", "720h")
	viper.SetDefault("geocoder.enabled", true)
	viper.SetDefault("geocoder.url", "https://nominatim.openstreetmap.org/search")
	viper.SetDefault("geocoder.user_agent", "jobmatch/0.1")
	viper.SetDefault("geocoder.timeout", "3s")
	viper.SetDefault("matching.default_limit", 20)
	viper.SetDefault("matching.workers", 4)
	viper.SetDefault("schedule.spec", "@every 24h")
	viper.SetDefault("schedule.limit", 20)
	viper.SetDefault("log.json", false)
	viper.SetDefault("log.debug", false)
}

// createDefaultConfig creates a default config file
func createDefaultConfig(path string) error {
	defaultConfig := `# Jobmatch Configuration
# Database driver: sqlite3 or postgres
database:
  driver: sqlite3
  # path: ~/.jobmatch/jobmatch.db
  url: ""

# Redis caches geocoding results; leave url empty to disable
redis:
  url: ""
  ttl: 720h

# OpenStreetMap Nominatim search endpoint used for location scoring
geocoder:
  enabled: true
  url: https://nominatim.openstreetmap.org/search
  user_agent: jobmatch/0.1
  timeout: 3s

matching:
  default_limit: 20
  workers: 4

schedule:
  spec: "@every 24h"
  limit: 20

log:
  json: false
  debug: false
`
	return os.WriteFile(path, []byte(defaultConfig), 0600)
}

// Set updates a configuration value
func Set(key, value string) error {
	if !IsKey(key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	viper.Set(key, value)
	return viper.WriteConfig()
}

// Get retrieves a configuration value
func Get(key string) string {
	return viper.GetString(key)
}

// IsKey reports whether key is a known configuration key
func IsKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Dir returns ~/.jobmatch
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".jobmatch"), nil
}

// GetConfigPath returns the path to the config file in use
func GetConfigPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	dir, _ := Dir()
	return filepath.Join(dir, "config.yaml")
}
