package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Grouping  GroupingConfig  `mapstructure:"grouping"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Deals     DealsConfig     `mapstructure:"deals"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GroupingConfig holds the product grouping defaults
type GroupingConfig struct {
	Threshold      float64  `mapstructure:"threshold"`
	Mode           string   `mapstructure:"mode"`        // "seed" or "transitive"
	EmptyNames     string   `mapstructure:"empty_names"` // "isolate" or "merge"
	PrefixPatterns []string `mapstructure:"prefix_patterns"`
	DebugLogging   bool     `mapstructure:"debug_logging"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // only "memory"
	TTL  time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
	Deals int `mapstructure:"deals"` // upstream requests per hour
}

// DealsConfig holds the upstream deal source configuration.
// An empty BaseURL disables deal lookups.
type DealsConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/dealdesk/")

	// Environment variable settings
	v.SetEnvPrefix("DEALDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Grouping defaults
	v.SetDefault("grouping.threshold", 0.85)
	v.SetDefault("grouping.mode", "seed")
	v.SetDefault("grouping.empty_names", "isolate")
	v.SetDefault("grouping.prefix_patterns", []string{})
	v.SetDefault("grouping.debug_logging", false)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "10m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 20)
	v.SetDefault("ratelimit.deals", 1000)

	// Deal source defaults
	v.SetDefault("deals.base_url", "")
	v.SetDefault("deals.api_key", "")
	v.SetDefault("deals.timeout", "10s")
}

// validate validates the configuration
func validate(config *Config) error {
	// A zero default would put every named product in one group
	if config.Grouping.Threshold <= 0 || config.Grouping.Threshold > 1 {
		return fmt.Errorf("grouping threshold must be within (0, 1], got: %v", config.Grouping.Threshold)
	}

	if config.Grouping.Mode != "seed" && config.Grouping.Mode != "transitive" {
		return fmt.Errorf("grouping mode must be 'seed' or 'transitive', got: %s", config.Grouping.Mode)
	}

	if config.Grouping.EmptyNames != "isolate" && config.Grouping.EmptyNames != "merge" {
		return fmt.Errorf("grouping empty_names must be 'isolate' or 'merge', got: %s", config.Grouping.EmptyNames)
	}

	for _, pattern := range config.Grouping.PrefixPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid prefix pattern %q: %w", pattern, err)
		}
	}

	if config.Cache.Type != "memory" {
		return fmt.Errorf("cache type must be 'memory', got: %s", config.Cache.Type)
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("ratelimit per_ip must be positive, got: %d", config.RateLimit.PerIP)
	}

	if config.Deals.BaseURL != "" && config.Deals.APIKey == "" {
		return fmt.Errorf("deals API key is required when deals.base_url is set (set DEALDESK_DEALS_API_KEY)")
	}

	return nil
}
