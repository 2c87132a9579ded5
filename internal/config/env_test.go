package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadEnvOverrides_Empty(t *testing.T) {
	t.Setenv("HOARDY_WEB_CONFIG", "")
	t.Setenv("HOARDY_WEB_DESTINATION", "")

	got := ReadEnvOverrides()

	assert.Equal(t, EnvOverrides{}, got)
}

func TestReadEnvOverrides_Populated(t *testing.T) {
	t.Setenv("HOARDY_WEB_CONFIG", "/etc/hoardy-web/config.toml")
	t.Setenv("HOARDY_WEB_DESTINATION", "/archive")

	got := ReadEnvOverrides()

	assert.Equal(t, "/etc/hoardy-web/config.toml", got.ConfigPath)
	assert.Equal(t, "/archive", got.Destination)
}
