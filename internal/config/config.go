package config

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file
const (
	EnvBaseURL       = "ATSSIGHT_BASE_URL"
	EnvTokenPath     = "ATSSIGHT_TOKEN_PATH"
	EnvDownloadsDir  = "ATSSIGHT_DOWNLOADS_DIR"
	EnvListenAddr    = "ATSSIGHT_LISTEN_ADDR"
	EnvUploadTimeout = "ATSSIGHT_UPLOAD_TIMEOUT"
	EnvReportTimeout = "ATSSIGHT_REPORT_TIMEOUT"
	EnvExportTopN    = "ATSSIGHT_EXPORT_TOP_N"
)

// Duration is a time.Duration stored as "5m" style text in the config file
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Config holds application configuration
type Config struct {
	BaseURL              string   `json:"base_url"`
	TokenPath            string   `json:"token_path"`
	DownloadsDir         string   `json:"downloads_dir"`
	UploadsDir           string   `json:"uploads_dir"`
	ListenAddr           string   `json:"listen_addr"`
	UploadTimeout        Duration `json:"upload_timeout"`
	ReportTimeout        Duration `json:"report_timeout"`
	ExportTopN           int      `json:"export_top_n"`
	GmailCredentialsPath string   `json:"gmail_credentials_path"`
	GmailTokenPath       string   `json:"gmail_token_path"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "http://localhost:8080",
		DownloadsDir:  "downloads",
		UploadsDir:    "uploads",
		ListenAddr:    "127.0.0.1:8090",
		UploadTimeout: Duration{5 * time.Minute},
		ReportTimeout: Duration{15 * time.Second},
		ExportTopN:    10,
	}
}

// ConfigDir returns the per-user configuration directory
// On Windows: %APPDATA%/ATSSight
// On Unix: ~/.config/ATSSight
func ConfigDir() (string, error) {
	var configDir string

	if os.Getenv("APPDATA") != "" {
		// Windows
		configDir = filepath.Join(os.Getenv("APPDATA"), "ATSSight")
	} else {
		// Unix-like systems
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "ATSSight")
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load loads configuration from the default config path, then applies
// .env and environment overrides
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		return nil, err
	}

	if cfg.TokenPath == "" {
		cfg.TokenPath = filepath.Join(filepath.Dir(configPath), "session.json")
	}
	if cfg.GmailTokenPath == "" {
		cfg.GmailTokenPath = filepath.Join(filepath.Dir(configPath), "gmail_token.json")
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFrom loads configuration from a specific path
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// LoadEnvFile reads KEY=VALUE pairs from a dotenv file into the process
// environment without overriding variables that are already set
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values from ATSSIGHT_* environment variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvTokenPath); v != "" {
		c.TokenPath = v
	}
	if v := os.Getenv(EnvDownloadsDir); v != "" {
		c.DownloadsDir = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(EnvUploadTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvUploadTimeout, err)
		}
		c.UploadTimeout = Duration{d}
	}
	if v := os.Getenv(EnvReportTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvReportTimeout, err)
		}
		c.ReportTimeout = Duration{d}
	}
	if v := os.Getenv(EnvExportTopN); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvExportTopN, err)
		}
		c.ExportTopN = n
	}
	return nil
}

// Save saves the configuration to the default config path
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an http(s) URL, got %q", c.BaseURL)
	}

	if c.UploadTimeout.Duration <= 0 {
		return fmt.Errorf("upload_timeout must be positive")
	}
	if c.ReportTimeout.Duration <= 0 {
		return fmt.Errorf("report_timeout must be positive")
	}
	if c.ExportTopN <= 0 {
		return fmt.Errorf("export_top_n must be positive")
	}

	if c.GmailCredentialsPath != "" {
		if _, err := os.Stat(c.GmailCredentialsPath); err != nil {
			return fmt.Errorf("gmail credentials file not found: %w", err)
		}
	}

	return nil
}

// GmailEnabled reports whether Gmail ingestion is configured
func (c *Config) GmailEnabled() bool {
	return c.GmailCredentialsPath != ""
}
