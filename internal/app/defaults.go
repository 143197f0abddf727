package app

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - HV_CONFIG_PATH: config file location (default: <xdg config home>/hv.toml)
//   - HV_HOME: data directory override (default: empty, the platform data directory is resolved later)
func GetDefaults() map[string]string {
	return map[string]string{
		"config_path": getConfigPath(),
		"data_dir":    os.Getenv("HV_HOME"),
	}
}

// getConfigPath returns the config file path, checking HV_CONFIG_PATH env var first,
// then falling back to hv.toml in the XDG config home.
func getConfigPath() string {
	if path := os.Getenv("HV_CONFIG_PATH"); path != "" {
		return path
	}
	return filepath.Join(xdg.ConfigHome, "hv.toml")
}
