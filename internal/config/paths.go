package config

import (
	"os"
	"path/filepath"
)

const appName = "hoardy-web"

// DefaultPath returns the XDG-style default config file path,
// $XDG_CONFIG_HOME/hoardy-web/config.toml, falling back to os.UserConfigDir.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, appName, "config.toml"), nil
}
