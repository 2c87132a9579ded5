package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingDefaultPathReturnsDefaults(t *testing.T) {
	t.Setenv("HOARDY_WEB_CONFIG", "")
	t.Setenv("HOARDY_WEB_DESTINATION", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultAction, cfg.Organize.Action)
}

func TestLoad_ExplicitMissingPathErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.Error(t, err)
}

func TestLoad_ReadsTOMLFile(t *testing.T) {
	t.Setenv("HOARDY_WEB_CONFIG", "")
	t.Setenv("HOARDY_WEB_DESTINATION", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	contents := `
log_level = "debug"

[organize]
action = "copy"
allow_updates = true
destination = "/archive"
output_format = "%(name)s.wrr"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "copy", cfg.Organize.Action)
	assert.True(t, cfg.Organize.AllowUpdates)
	assert.Equal(t, "/archive", cfg.Organize.Destination)
	assert.Equal(t, "%(name)s.wrr", cfg.Organize.OutputFormat)
	// Unset fields in the file fall through to Default()'s zero-value
	// table, not the zero value of the Go struct (confirming Load decodes
	// on top of Default(), not a bare zero Config).
	assert.Equal(t, DefaultMaxSeen, cfg.Organize.MaxSeen)
}

func TestLoad_EnvDestinationOverridesFile(t *testing.T) {
	t.Setenv("HOARDY_WEB_CONFIG", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	contents := `
[organize]
destination = "/from-file"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	t.Setenv("HOARDY_WEB_DESTINATION", "/from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/from-env", cfg.Organize.Destination)
}

func TestLoad_EnvConfigPathUsedWhenNoExplicitPath(t *testing.T) {
	t.Setenv("HOARDY_WEB_DESTINATION", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	contents := `
[organize]
action = "hardlink"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	t.Setenv("HOARDY_WEB_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "hardlink", cfg.Organize.Action)
}
