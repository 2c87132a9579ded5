package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load resolves the effective Config from defaults, an optional TOML file,
// and environment overrides, in that precedence order (lowest to highest).
// CLI flags are applied on top of the returned Config by the caller — see
// organize_cmd.go's PersistentPreRunE-equivalent wiring.
func Load(explicitPath string) (*Config, error) {
	cfg := Default()

	env := ReadEnvOverrides()

	path := explicitPath
	if path == "" {
		path = env.ConfigPath
	}

	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolving default config path: %w", err)
		}

		path = defaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	} else if explicitPath != "" {
		// An explicitly requested config file that doesn't exist is an
		// error; a missing default path is not.
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if env.Destination != "" {
		cfg.Organize.Destination = env.Destination
	}

	return cfg, nil
}
