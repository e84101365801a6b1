package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// this is a pointer so that if someone attempts to use it before loading it will
// panic and force them to load it first.
// it is also private so that it cannot be modified after loading.
var _loaded *Config

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "USERDESK_"

// Refetch policies accepted by store.refetch_policy.
const (
	RefetchAlways    = "always"
	RefetchOnSuccess = "on_success"
)

// Config is the main configuration structure
type Config struct {
	Common Common `yaml:"common"`
}

// Load loads the configuration following proper precedence: defaults → config file → environment variables
func Load() {
	_loaded = cloneDefault()

	configFile := os.Getenv(EnvPrefix + "CONFIG_FILE")
	if configFile == "" {
		configFile = "userdesk.yaml"
	}

	if err := LoadFromFile(configFile); err != nil {
		log.Printf("Failed to load config file: %v, using defaults", err)
	}

	if err := ApplyEnvOverrides(); err != nil {
		log.Printf("Failed to apply environment overrides: %v", err)
	}
}

// LoadDefault installs the built-in defaults without touching the file system
// or the environment.
func LoadDefault() {
	_loaded = cloneDefault()
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := cloneDefault()

	// Merge YAML values over defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	_loaded = cfg
	return nil
}

// ApplyEnvOverrides overlays USERDESK_* environment variables on the loaded
// configuration. Unset variables leave the current values in place.
func ApplyEnvOverrides() error {
	if _loaded == nil {
		return nil
	}

	cfg := *_loaded
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	_loaded = &cfg
	return nil
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	if c.Common.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.Common.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	switch c.Common.Store.RefetchPolicy {
	case RefetchAlways, RefetchOnSuccess:
	default:
		return fmt.Errorf("store.refetch_policy must be %q or %q, got %q",
			RefetchAlways, RefetchOnSuccess, c.Common.Store.RefetchPolicy)
	}
	return nil
}

func cloneDefault() *Config {
	cfg := defaultConfig
	return &cfg
}

// set sane defaults for all of the config options. when loading the config from
// the file, any options that are not set will be set to these defaults.
var defaultConfig = Config{
	Common: Common{
		Log: logConfig{
			Level:  "info",
			Format: "console",
		},
		API: apiConfig{
			BaseURL: "http://localhost:4002/api",
			Timeout: 0, // no client-side deadline; callers pass a context
		},
		Store: storeConfig{
			RefetchPolicy: RefetchAlways,
		},
	},
}

type Common struct {
	Log   logConfig   `yaml:"log" envPrefix:"LOG_"`
	API   apiConfig   `yaml:"api" envPrefix:"API_"`
	Store storeConfig `yaml:"store" envPrefix:"STORE_"`
}

type logConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

type apiConfig struct {
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

type storeConfig struct {
	RefetchPolicy string `yaml:"refetch_policy" env:"REFETCH_POLICY"` // "always" or "on_success"
}

// there should be a getter for each top level field in the config struct.
// these getters will panic if the config has not been loaded.

func Logger() logConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Log
}

func API() apiConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.API
}

func Store() storeConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Store
}

func Get() *Config {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded
}
