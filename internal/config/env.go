package config

import "os"

// EnvOverrides is the subset of Config fields a user may override via
// environment variables, read before CLI flags are applied.
type EnvOverrides struct {
	ConfigPath  string
	Destination string
}

// ReadEnvOverrides reads HOARDY_WEB_CONFIG and HOARDY_WEB_DESTINATION.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:  os.Getenv("HOARDY_WEB_CONFIG"),
		Destination: os.Getenv("HOARDY_WEB_DESTINATION"),
	}
}
