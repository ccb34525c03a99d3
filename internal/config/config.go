package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Token store backends
const (
	TokenStoreKeyring = "keyring"
	TokenStoreFile    = "file"
)

// UserConfig represents CLI configuration
type UserConfig struct {
	// OAuth 2.0 installed-application settings
	AuthURL    string   `json:"auth_url"`
	TokenURL   string   `json:"token_url"`
	ClientID   string   `json:"client_id"`
	EditScopes []string `json:"edit_scopes"`
	ViewScopes []string `json:"view_scopes"`

	// Maps Engine REST API location: {protocol}://{domain}/{service}/{version}
	APIProtocol      string `json:"api_protocol"`
	APIDomain        string `json:"api_domain"`
	APIService       string `json:"api_service"`
	APIVersion       string `json:"api_version"`
	APICreateVersion string `json:"api_create_version"`
	UploadBaseURL    string `json:"upload_base_url"`

	RequestsPerSecond float64       `json:"requests_per_second"`
	RequestTimeout    time.Duration `json:"request_timeout"`

	TokenStore         string    `json:"token_store"`
	LogLevel           string    `json:"log_level"`
	DebugDumpDir       string    `json:"debug_dump_dir,omitempty"`
	LastUpdateCheck    time.Time `json:"last_update_check"`
	UpdateCheckEnabled bool      `json:"update_check_enabled"`
	ConfigVersion      string    `json:"config_version"`

	// Secrets are never persisted to disk, loaded from env vars only
	ClientSecret string `json:"-"`
	APIKey       string `json:"-"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *UserConfig {
	cfg := &UserConfig{
		AuthURL:  "https://accounts.google.com/o/oauth2/auth",
		TokenURL: "https://accounts.google.com/o/oauth2/token",
		EditScopes: []string{
			"https://www.googleapis.com/auth/mapsengine",
		},
		ViewScopes: []string{
			"https://www.googleapis.com/auth/mapsengine.readonly",
		},
		APIProtocol:        "https",
		APIDomain:          "www.googleapis.com",
		APIService:         "mapsengine",
		APIVersion:         "v1",
		APICreateVersion:   "create_tt",
		UploadBaseURL:      "https://www.googleapis.com/upload/mapsengine/create_tt",
		RequestsPerSecond:  5,
		RequestTimeout:     60 * time.Second,
		TokenStore:         TokenStoreKeyring,
		LogLevel:           "info",
		UpdateCheckEnabled: true,
		ConfigVersion:      "1.0",
	}
	cfg.applyEnv()
	return cfg
}

// Load loads the configuration from disk, or returns default if not found
func Load() (*UserConfig, error) {
	return LoadFrom(GetConfigFile())
}

// LoadFrom loads the configuration from a specific file
func LoadFrom(configFile string) (*UserConfig, error) {
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, err
	}

	// Unset fields keep their defaults
	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configFile, err)
	}

	config.applyEnv()
	return config, nil
}

// applyEnv overlays GME_* environment variables
func (c *UserConfig) applyEnv() {
	c.ClientSecret = os.Getenv("GME_CLIENT_SECRET")
	c.APIKey = os.Getenv("GME_API_KEY")

	if v := os.Getenv("GME_CLIENT_ID"); v != "" {
		c.ClientID = v
	}
	if v := os.Getenv("GME_AUTH_URL"); v != "" {
		c.AuthURL = v
	}
	if v := os.Getenv("GME_TOKEN_URL"); v != "" {
		c.TokenURL = v
	}
	if v := os.Getenv("GME_API_DOMAIN"); v != "" {
		c.APIDomain = v
	}
	if v := os.Getenv("GME_UPLOAD_BASE_URL"); v != "" {
		c.UploadBaseURL = v
	}
	if v := os.Getenv("GME_TOKEN_STORE"); v != "" {
		c.TokenStore = v
	}
	if v := os.Getenv("GME_REQUESTS_PER_SECOND"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			c.RequestsPerSecond = rps
		}
	}
}

// Save saves the configuration to disk with atomic write
func (c *UserConfig) Save() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	return c.SaveTo(GetConfigFile())
}

// SaveTo writes the configuration to configFile via a temp file and rename
func (c *UserConfig) SaveTo(configFile string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	tempFile := configFile + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return err
	}

	if err := os.Rename(tempFile, configFile); err != nil {
		os.Remove(tempFile)
		return err
	}

	return nil
}

// Validate validates the configuration
func (c *UserConfig) Validate() error {
	if c.AuthURL == "" || c.TokenURL == "" {
		return fmt.Errorf("auth_url and token_url are required")
	}
	if c.APIProtocol == "" || c.APIDomain == "" || c.APIService == "" || c.APIVersion == "" {
		return fmt.Errorf("api_protocol, api_domain, api_service and api_version are required")
	}

	switch c.TokenStore {
	case TokenStoreKeyring, TokenStoreFile:
	default:
		return fmt.Errorf("invalid token_store %q (must be %s or %s)", c.TokenStore, TokenStoreKeyring, TokenStoreFile)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative")
	}

	return nil
}

// GetAPIEndpoint returns the versioned REST root, e.g. https://www.googleapis.com/mapsengine/v1
func (c *UserConfig) GetAPIEndpoint() string {
	return c.endpointFor(c.APIVersion)
}

// GetCreateEndpoint returns the REST root used for asset creation
func (c *UserConfig) GetCreateEndpoint() string {
	version := c.APICreateVersion
	if version == "" {
		version = c.APIVersion
	}
	return c.endpointFor(version)
}

func (c *UserConfig) endpointFor(version string) string {
	return c.APIProtocol + "://" + strings.TrimSuffix(c.APIDomain, "/") + "/" + c.APIService + "/" + version
}

// HasClientCredentials checks if the OAuth client is configured
func (c *UserConfig) HasClientCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}
