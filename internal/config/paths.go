package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	if dir := os.Getenv("GME_CONFIG_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, "gme")
}

// GetConfigFile returns the configuration file path
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.json")
}

// GetTokenFile returns the path of the file-backed token store
func GetTokenFile() string {
	return filepath.Join(GetConfigDir(), "credentials.toml")
}

// GetLogsDir returns the logs directory path
func GetLogsDir() string {
	return filepath.Join(GetConfigDir(), "logs")
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(GetConfigDir(), 0700)
}

// EnsureLogsDir creates the logs directory if it doesn't exist
func EnsureLogsDir() error {
	return os.MkdirAll(GetLogsDir(), 0700)
}
