package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the reel download service
type Config struct {
	// HTTP server settings
	Server ServerConfig `yaml:"server" json:"server"`

	// Extraction pipeline settings
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Cloudinary upload settings
	Cloudinary CloudinaryConfig `yaml:"cloudinary" json:"cloudinary"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" json:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// ExtractionConfig holds pipeline timing and retry configuration.
// The delays are load-bearing: they pace outbound requests so the traffic
// shape resembles a human browsing session.
type ExtractionConfig struct {
	MinDelay        time.Duration `yaml:"min_delay" json:"min_delay"`
	MaxDelay        time.Duration `yaml:"max_delay" json:"max_delay"`
	MinStrategyGap  time.Duration `yaml:"min_strategy_gap" json:"min_strategy_gap"`
	MaxStrategyGap  time.Duration `yaml:"max_strategy_gap" json:"max_strategy_gap"`
	SessionTimeout  time.Duration `yaml:"session_timeout" json:"session_timeout"`
	MaxRetries      int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay      time.Duration `yaml:"retry_delay" json:"retry_delay"`
	MaxIdleSessions int           `yaml:"max_idle_sessions" json:"max_idle_sessions"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// DownloadConfig holds media download configuration
type DownloadConfig struct {
	Directory       string        `yaml:"directory" json:"directory"`
	DownloadTimeout time.Duration `yaml:"download_timeout" json:"download_timeout"`
}

// CloudinaryConfig holds remote storage credentials. Upload is optional;
// when credentials are missing the service keeps files locally.
type CloudinaryConfig struct {
	CloudName string `yaml:"cloud_name" json:"cloud_name"`
	APIKey    string `yaml:"api_key" json:"api_key"`
	APISecret string `yaml:"api_secret" json:"api_secret"`
	Folder    string `yaml:"folder" json:"folder"`
}

// Configured reports whether all required Cloudinary credentials are set
func (c *CloudinaryConfig) Configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5000,
			ShutdownTimeout: 10 * time.Second,
		},
		Extraction: ExtractionConfig{
			MinDelay:        2 * time.Second,
			MaxDelay:        8 * time.Second,
			MinStrategyGap:  1 * time.Second,
			MaxStrategyGap:  3 * time.Second,
			SessionTimeout:  30 * time.Minute,
			MaxRetries:      3,
			RetryDelay:      5 * time.Second,
			MaxIdleSessions: 1000,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 3,
		},
		Download: DownloadConfig{
			Directory:       "./downloads",
			DownloadTimeout: 60 * time.Second,
		},
		Cloudinary: CloudinaryConfig{
			Folder: "instagram-reels",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence. A .env file in
// the working directory is honored before the environment is read.
func Load(path string) (*Config, error) {
	// Ignore missing .env files; environment may be set by the deployment
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(path); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".reelgrab.yaml",
		".reelgrab.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "reelgrab", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "reelgrab", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if port := os.Getenv("PORT"); port != "" {
		var val int
		fmt.Sscanf(port, "%d", &val)
		if val > 0 {
			c.Server.Port = val
		}
	}

	if rpm := os.Getenv("REELGRAB_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if dir := os.Getenv("REELGRAB_DOWNLOAD_DIR"); dir != "" {
		c.Download.Directory = dir
	}

	if retries := os.Getenv("REELGRAB_MAX_RETRIES"); retries != "" {
		var val int
		fmt.Sscanf(retries, "%d", &val)
		if val > 0 {
			c.Extraction.MaxRetries = val
		}
	}

	// Cloudinary credentials use the names the Cloudinary console shows
	if name := os.Getenv("CLOUDINARY_CLOUD_NAME"); name != "" {
		c.Cloudinary.CloudName = name
	}
	if key := os.Getenv("CLOUDINARY_API_KEY"); key != "" {
		c.Cloudinary.APIKey = key
	}
	if secret := os.Getenv("CLOUDINARY_API_SECRET"); secret != "" {
		c.Cloudinary.APISecret = secret
	}

	if logLevel := os.Getenv("REELGRAB_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = strings.ToLower(logLevel)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, errors.New("server port must be between 1 and 65535"))
	}
	if c.Extraction.MinDelay < 0 || c.Extraction.MaxDelay < c.Extraction.MinDelay {
		errs = append(errs, errors.New("extraction delay range is invalid"))
	}
	if c.Extraction.MinStrategyGap < 0 || c.Extraction.MaxStrategyGap < c.Extraction.MinStrategyGap {
		errs = append(errs, errors.New("strategy gap range is invalid"))
	}
	if c.Extraction.SessionTimeout <= 0 {
		errs = append(errs, errors.New("session timeout must be positive"))
	}
	if c.Extraction.MaxRetries <= 0 {
		errs = append(errs, errors.New("max retries must be positive"))
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.Download.Directory == "" {
		errs = append(errs, errors.New("download directory is required"))
	}

	if len(errs) > 0 {
		var sb strings.Builder
		sb.WriteString("configuration validation failed:")
		for _, err := range errs {
			sb.WriteString("\n  - ")
			sb.WriteString(err.Error())
		}
		return errors.New(sb.String())
	}

	return nil
}
