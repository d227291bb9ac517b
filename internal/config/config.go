package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Keys as they appear in config.json and, upper-cased with the MEDIATAG_
// prefix, in the environment.
const (
	KeyTMDBAPIKey         = "tmdb_api_key"
	KeyTMDBLanguage       = "tmdb_language"
	KeyCacheEnabled       = "cache_enabled"
	KeyCacheDurationHours = "cache_duration_hours"
	KeyAtomicSave         = "atomic_save"
	KeyWorkerCount        = "worker_count"
	KeyLogLevel           = "log_level"
	KeyEnableLogging      = "enable_logging"
	KeyLogRetentionDays   = "log_retention_days"
)

const envPrefix = "MEDIATAG"

// Config holds the tagger settings.
type Config struct {
	TMDBAPIKey         string `json:"tmdb_api_key" mapstructure:"tmdb_api_key"`
	TMDBLanguage       string `json:"tmdb_language" mapstructure:"tmdb_language"`
	CacheEnabled       bool   `json:"cache_enabled" mapstructure:"cache_enabled"`
	CacheDurationHours int    `json:"cache_duration_hours" mapstructure:"cache_duration_hours"`
	AtomicSave         bool   `json:"atomic_save" mapstructure:"atomic_save"`
	WorkerCount        int    `json:"worker_count" mapstructure:"worker_count"`
	LogLevel           string `json:"log_level" mapstructure:"log_level"`
	EnableLogging      bool   `json:"enable_logging" mapstructure:"enable_logging"`
	LogRetentionDays   int    `json:"log_retention_days" mapstructure:"log_retention_days"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDBAPIKey:         "",
		TMDBLanguage:       "en-US",
		CacheEnabled:       true,
		CacheDurationHours: 168,
		AtomicSave:         true,
		WorkerCount:        4,
		LogLevel:           "info",
		EnableLogging:      true,
		LogRetentionDays:   30,
	}
}

// configPathFunc resolves the config file location. Tests point it at a temp dir.
var configPathFunc = defaultConfigPath

func defaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".mediatag", "config.json"), nil
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	return configPathFunc()
}

// Load reads the configuration from disk, then applies MEDIATAG_*
// environment overrides. A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from path.
func LoadFrom(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Zero values in the file fall back to defaults
	defaults := DefaultConfig()
	if cfg.TMDBLanguage == "" {
		cfg.TMDBLanguage = defaults.TMDBLanguage
	}
	if cfg.CacheDurationHours <= 0 {
		cfg.CacheDurationHours = defaults.CacheDurationHours
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaults.WorkerCount
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.LogRetentionDays <= 0 {
		cfg.LogRetentionDays = defaults.LogRetentionDays
	}

	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault(KeyTMDBAPIKey, d.TMDBAPIKey)
	v.SetDefault(KeyTMDBLanguage, d.TMDBLanguage)
	v.SetDefault(KeyCacheEnabled, d.CacheEnabled)
	v.SetDefault(KeyCacheDurationHours, d.CacheDurationHours)
	v.SetDefault(KeyAtomicSave, d.AtomicSave)
	v.SetDefault(KeyWorkerCount, d.WorkerCount)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyEnableLogging, d.EnableLogging)
	v.SetDefault(KeyLogRetentionDays, d.LogRetentionDays)
	return v
}

// Save writes the configuration to disk
func (cfg *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return cfg.SaveTo(path)
}

// SaveTo writes the configuration to path as indented JSON.
func (cfg *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Set assigns a single key from its string form.
func (cfg *Config) Set(key, value string) error {
	switch key {
	case KeyTMDBAPIKey:
		cfg.TMDBAPIKey = value
	case KeyTMDBLanguage:
		cfg.TMDBLanguage = value
	case KeyLogLevel:
		cfg.LogLevel = strings.ToLower(value)
	case KeyCacheEnabled, KeyAtomicSave, KeyEnableLogging:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: expected true or false, got %q", key, value)
		}
		switch key {
		case KeyCacheEnabled:
			cfg.CacheEnabled = b
		case KeyAtomicSave:
			cfg.AtomicSave = b
		default:
			cfg.EnableLogging = b
		}
	case KeyCacheDurationHours, KeyWorkerCount, KeyLogRetentionDays:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s: expected a positive integer, got %q", key, value)
		}
		switch key {
		case KeyCacheDurationHours:
			cfg.CacheDurationHours = n
		case KeyWorkerCount:
			cfg.WorkerCount = n
		default:
			cfg.LogRetentionDays = n
		}
	default:
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	return nil
}

// Values returns every key with its current value in string form.
func (cfg *Config) Values() map[string]string {
	return map[string]string{
		KeyTMDBAPIKey:         cfg.TMDBAPIKey,
		KeyTMDBLanguage:       cfg.TMDBLanguage,
		KeyCacheEnabled:       strconv.FormatBool(cfg.CacheEnabled),
		KeyCacheDurationHours: strconv.Itoa(cfg.CacheDurationHours),
		KeyAtomicSave:         strconv.FormatBool(cfg.AtomicSave),
		KeyWorkerCount:        strconv.Itoa(cfg.WorkerCount),
		KeyLogLevel:           cfg.LogLevel,
		KeyEnableLogging:      strconv.FormatBool(cfg.EnableLogging),
		KeyLogRetentionDays:   strconv.Itoa(cfg.LogRetentionDays),
	}
}

// Keys lists the known configuration keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, 9)
	for k := range DefaultConfig().Values() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
