package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultHashtag is searched when no hashtag is configured
	DefaultHashtag = "donaldtrump"

	// DefaultSince is the creation-date lower bound for searches
	DefaultSince = "2018-07-01"

	// MaxPageSize is the largest page the standard search API returns
	MaxPageSize = 100

	// DefaultAPIBaseURL is the root of the Twitter v1.1 REST API
	DefaultAPIBaseURL = "https://api.twitter.com/1.1"
)

// Config holds all configuration options for tweetcsv
type Config struct {
	// Twitter credentials and API settings
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Search criteria
	Search SearchConfig `yaml:"search" json:"search"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds the OAuth secrets and client settings
type TwitterConfig struct {
	ConsumerKey       string        `yaml:"consumer_key" json:"consumer_key"`
	ConsumerSecret    string        `yaml:"consumer_secret" json:"consumer_secret"`
	AccessToken       string        `yaml:"access_token" json:"access_token"`
	AccessTokenSecret string        `yaml:"access_token_secret" json:"access_token_secret"`
	APIBaseURL        string        `yaml:"api_base_url" json:"api_base_url"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
}

// SearchConfig holds the search criteria and rate limiting behaviour
type SearchConfig struct {
	Hashtag         string `yaml:"hashtag" json:"hashtag"`
	Since           string `yaml:"since" json:"since"`
	PageSize        int    `yaml:"page_size" json:"page_size"`
	WaitOnRateLimit bool   `yaml:"wait_on_rate_limit" json:"wait_on_rate_limit"`

	// RequestsPerWindow paces search requests; Window is the API's rate limit window.
	RequestsPerWindow int           `yaml:"requests_per_window" json:"requests_per_window"`
	Window            time.Duration `yaml:"window" json:"window"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			APIBaseURL: DefaultAPIBaseURL,
			Timeout:    30 * time.Second,
		},
		Search: SearchConfig{
			Since:             DefaultSince,
			PageSize:          MaxPageSize,
			WaitOnRateLimit:   true,
			RequestsPerWindow: 180,
			Window:            15 * time.Minute,
		},
		Output: OutputConfig{
			Directory: ".",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables.
// The four credential variables are deliberately not read here; they are a
// fallback owned by auth.Resolve and must not shadow explicit parameters.
func (c *Config) LoadFromEnv() error {
	if hashtag := os.Getenv("TWEETCSV_HASHTAG"); hashtag != "" {
		c.Search.Hashtag = hashtag
	}
	if since := os.Getenv("TWEETCSV_SINCE"); since != "" {
		c.Search.Since = since
	}
	if wait := os.Getenv("TWEETCSV_WAIT_ON_RATE_LIMIT"); wait != "" {
		val, err := strconv.ParseBool(wait)
		if err != nil {
			return fmt.Errorf("TWEETCSV_WAIT_ON_RATE_LIMIT: %w", err)
		}
		c.Search.WaitOnRateLimit = val
	}
	if outputDir := os.Getenv("TWEETCSV_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if baseURL := os.Getenv("TWEETCSV_API_BASE_URL"); baseURL != "" {
		c.Twitter.APIBaseURL = baseURL
	}
	if logLevel := os.Getenv("TWEETCSV_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("TWEETCSV_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}
	return nil
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
	for _, loc := range ConfigLocations() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// ConfigLocations lists the default config file paths in order of precedence
func ConfigLocations() []string {
	home := os.Getenv("HOME")
	return []string{
		".tweetcsv.yaml",
		".tweetcsv.yml",
		filepath.Join(home, ".config", "tweetcsv", "config.yaml"),
		filepath.Join(home, ".config", "tweetcsv", "config.yml"),
		filepath.Join(home, ".tweetcsv.yaml"),
	}
}

// Validate checks if the configuration is valid. Missing credentials are not
// reported here: the resolver decides that after the environment fallback.
func (c *Config) Validate() error {
	var errs []error

	if c.Search.PageSize <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}
	if c.Search.PageSize > MaxPageSize {
		errs = append(errs, fmt.Errorf("page size must not exceed %d", MaxPageSize))
	}
	if c.Search.Since != "" {
		if _, err := time.Parse("2006-01-02", c.Search.Since); err != nil {
			errs = append(errs, fmt.Errorf("since must be a YYYY-MM-DD date: %q", c.Search.Since))
		}
	}
	if c.Search.RequestsPerWindow <= 0 {
		errs = append(errs, errors.New("requests per window must be positive"))
	}
	if c.Search.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}
	if c.Twitter.Timeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Twitter.APIBaseURL == "" {
		errs = append(errs, errors.New("api base url is required"))
	}
	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Masked returns a copy of the configuration with secrets masked for display
func (c *Config) Masked() *Config {
	masked := *c
	masked.Twitter.ConsumerKey = MaskSecret(c.Twitter.ConsumerKey)
	masked.Twitter.ConsumerSecret = MaskSecret(c.Twitter.ConsumerSecret)
	masked.Twitter.AccessToken = MaskSecret(c.Twitter.AccessToken)
	masked.Twitter.AccessTokenSecret = MaskSecret(c.Twitter.AccessTokenSecret)
	return &masked
}

// MaskSecret masks all but the first 4 and last 4 characters of a secret
func MaskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "********"
	default:
		return s[:4] + "..." + s[len(s)-4:]
	}
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only non-zero values override.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["hashtag"].(string); ok && v != "" {
		c.Search.Hashtag = v
	}
	if v, ok := flags["consumer-key"].(string); ok && v != "" {
		c.Twitter.ConsumerKey = v
	}
	if v, ok := flags["consumer-secret"].(string); ok && v != "" {
		c.Twitter.ConsumerSecret = v
	}
	if v, ok := flags["access-token"].(string); ok && v != "" {
		c.Twitter.AccessToken = v
	}
	if v, ok := flags["access-token-secret"].(string); ok && v != "" {
		c.Twitter.AccessTokenSecret = v
	}
	if v, ok := flags["since"].(string); ok && v != "" {
		c.Search.Since = v
	}
	if v, ok := flags["page-size"].(int); ok && v > 0 {
		c.Search.PageSize = v
	}
	if v, ok := flags["wait-on-rate-limit"].(bool); ok {
		c.Search.WaitOnRateLimit = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.Directory = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".tweetcsv.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
