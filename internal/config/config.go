// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Store     StoreConfig
	OpenAI    OpenAIConfig
	SendGrid  SendGridConfig
	WhatsApp  WhatsAppConfig
	Recommend RecommendConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 120s, plan generation waits on the model)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// StoreConfig holds document store configuration.
type StoreConfig struct {
	// Path is the directory for the Badger database.
	Path string
	// SearchPath is the directory for the search index (default: {path}/search).
	SearchPath string
}

// OpenAIConfig holds OpenAI API configuration.
type OpenAIConfig struct {
	APIKey      string
	Model       string        // Chat model (default: gpt-4)
	Temperature float64       // Sampling temperature (default: 0.7)
	MaxTokens   int           // Completion token cap (default: 2000)
	Timeout     time.Duration // Per-request deadline (default: 60s)
}

// SendGridConfig holds SendGrid email configuration.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
}

// WhatsAppConfig holds WhatsApp Cloud API configuration.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	// MessageDelay is the pause between consecutive messages (default: 1s).
	MessageDelay time.Duration
}

// RecommendConfig holds recommendation pipeline configuration.
type RecommendConfig struct {
	// MinCandidates is the catalog pool size the query engine relaxes toward (default: 15).
	MinCandidates int
	// StrictBuckets disables the pad/duplicate policy and allows months with
	// fewer than four books (default: false, matching observed behavior).
	StrictBuckets bool
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	storePath := flag.String("store-path", "", "Directory for the document store")
	searchPath := flag.String("search-path", "", "Directory for the search index")

	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 120s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	openaiModel := flag.String("openai-model", "", "OpenAI chat model (default: gpt-4)")
	openaiTimeout := flag.String("openai-timeout", "", "OpenAI request timeout (default: 60s)")

	minCandidates := flag.String("min-candidates", "", "Minimum catalog candidate pool size (default: 15)")
	strictBuckets := flag.String("strict-buckets", "", "Allow reading-plan months with fewer than 4 books (default: false)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Store: StoreConfig{
			Path:       getConfigValue(*storePath, "STORE_PATH", ""),
			SearchPath: getConfigValue(*searchPath, "SEARCH_PATH", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:      getConfigValue("", "OPENAI_API_KEY", ""),
			Model:       getConfigValue(*openaiModel, "OPENAI_MODEL", "gpt-4"),
			Temperature: getFloatConfigValue("", "OPENAI_TEMPERATURE", 0.7),
			MaxTokens:   getIntConfigValue("", "OPENAI_MAX_TOKENS", 2000),
		},
		SendGrid: SendGridConfig{
			APIKey:    getConfigValue("", "SENDGRID_API_KEY", ""),
			FromEmail: getConfigValue("", "FROM_EMAIL", ""),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   getConfigValue("", "FACEBOOK_ACCESS_TOKEN", ""),
			PhoneNumberID: getConfigValue("", "WHATSAPP_PHONE_NUMBER_ID", ""),
		},
		Recommend: RecommendConfig{
			MinCandidates: getIntConfigValue(*minCandidates, "MIN_CANDIDATES", 15),
			StrictBuckets: getBoolConfigValue(*strictBuckets, "STRICT_BUCKETS", false),
		},
	}

	// Parse durations.
	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "120s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.OpenAI.Timeout, err = parseDurationValue(*openaiTimeout, "OPENAI_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.WhatsApp.MessageDelay, err = parseDurationValue("", "WHATSAPP_MESSAGE_DELAY", "1s"); err != nil {
		return nil, err
	}

	if err := cfg.expandStorePaths(); err != nil {
		return nil, fmt.Errorf("invalid store path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Store.Path == "" {
		return errors.New("store path cannot be empty after expansion")
	}

	if c.Recommend.MinCandidates < 1 {
		return fmt.Errorf("min candidates must be positive, got %d", c.Recommend.MinCandidates)
	}

	// OpenAI, SendGrid and WhatsApp credentials may be absent; the matching
	// features degrade (empty plans / 500 on send) rather than block startup.

	return nil
}

// expandStorePaths expands ~ and makes the store paths absolute.
// The search index defaults to a subdirectory of the store.
func (c *Config) expandStorePaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, ".book-recommendation", "store")

	expanded, err := expandPath(c.Store.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Store.Path = expanded

	expanded, err = expandPath(c.Store.SearchPath, filepath.Join(c.Store.Path, "search"))
	if err != nil {
		return err
	}
	c.Store.SearchPath = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	str := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, str, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
