// Package config defines the application configuration and loads it from an
// optional YAML file, a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cache backends for the rate lookup.
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Configuration holds all configuration for mortgage-calculator.
type Configuration struct {
	Environment  string
	InterestRate InterestRateConfig
	Cache        CacheConfig
	Logging      LoggingConfig `yaml:"logging,omitempty"`
	Output       OutputConfig  `yaml:"output,omitempty"`
}

// InterestRateConfig describes the external rate feed.
type InterestRateConfig struct {
	APIURL   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// CacheConfig selects where successful rate lookups are cached.
type CacheConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// envBindings maps configuration keys to the environment variables that set
// them. The first variable present wins.
var envBindings = map[string][]string{
	"environment":           {"APP_ENV", "NODE_ENV"},
	"interestrate.apiurl":   {"INTEREST_RATE_API_URL"},
	"interestrate.timeout":  {"INTEREST_RATE_TIMEOUT"},
	"interestrate.cachettl": {"INTEREST_RATE_CACHE_TTL"},
	"cache.backend":         {"RATE_CACHE_BACKEND"},
	"cache.redisaddr":       {"REDIS_ADDR"},
	"cache.redispassword":   {"REDIS_PASSWORD"},
	"cache.redisdb":         {"REDIS_DB"},
	"logging.level":         {"LOG_LEVEL"},
	"logging.format":        {"LOG_FORMAT"},
	"logging.outputfile":    {"LOG_FILE"},
	"output.format":         {"OUTPUT_FORMAT"},
}

// LoadEnvFile loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading env file %s, %w", path, err)
	}
	return nil
}

// LoadConfiguration reads the YAML configuration at configPath, if it exists,
// and overlays the environment. The result is validated.
func LoadConfiguration(configPath string) (*Configuration, error) {
	configuration, err := load(configPath)
	if err != nil {
		return nil, err
	}
	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return configuration, nil
}

// LoadLocalConfiguration is LoadConfiguration for commands that never call
// the rate feed: the feed URL may be empty, but is still checked when set.
func LoadLocalConfiguration(configPath string) (*Configuration, error) {
	configuration, err := load(configPath)
	if err != nil {
		return nil, err
	}
	if err := configuration.validateLocal(); err != nil {
		return nil, err
	}
	if configuration.InterestRate.APIURL != "" {
		if err := ValidateRateURL(configuration.InterestRate.APIURL); err != nil {
			return nil, err
		}
	}
	return configuration, nil
}

func load(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	v.SetDefault("environment", constants.EnvironmentDevelopment)
	v.SetDefault("interestrate.timeout", constants.DefaultRateTimeoutSeconds*time.Second)
	v.SetDefault("interestrate.cachettl", 15*time.Minute)
	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.redisdb", 0)

	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("unable to bind environment for %s, %w", key, err)
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file, %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	configuration.normalize()
	return &configuration, nil
}

func (c *Configuration) normalize() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.InterestRate.APIURL = strings.TrimSpace(c.InterestRate.APIURL)
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheBackendNone
	}
}

// Validate checks the settings that have no sensible default.
func (c *Configuration) Validate() error {
	if err := c.validateLocal(); err != nil {
		return err
	}
	return ValidateRateURL(c.InterestRate.APIURL)
}

func (c *Configuration) validateLocal() error {
	if err := validation.ValidateEnvironment(c.Environment); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	if c.InterestRate.Timeout <= 0 {
		return fmt.Errorf("interest rate timeout must be positive, got %s", c.InterestRate.Timeout)
	}
	if c.InterestRate.CacheTTL < 0 {
		return fmt.Errorf("interest rate cache ttl cannot be negative, got %s", c.InterestRate.CacheTTL)
	}

	switch c.Cache.Backend {
	case CacheBackendNone, CacheBackendMemory:
	case CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("redis cache backend requires an address")
		}
	default:
		return fmt.Errorf("unsupported cache backend %q", c.Cache.Backend)
	}
	return nil
}

// ValidateRateURL requires an absolute http or https URL.
func ValidateRateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("interest rate API URL is required (set INTEREST_RATE_API_URL)")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid interest rate API URL %q: %w", raw, err)
	}
	if !parsed.IsAbs() || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("invalid interest rate API URL %q: expected an absolute http(s) URL", raw)
	}
	return nil
}

// IsProduction reports whether the application runs in production.
func (c *Configuration) IsProduction() bool {
	return c.Environment == constants.EnvironmentProduction
}
