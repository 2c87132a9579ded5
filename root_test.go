package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidanholm/hoardy-web/internal/config"
)

// --- buildLogger tests ---

func TestBuildLogger_Default(t *testing.T) {
	logger := buildLogger(nil, CLIFlags{})

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelWarn))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
}

func TestBuildLogger_Verbose(t *testing.T) {
	logger := buildLogger(nil, CLIFlags{Verbose: true})

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLogger_Debug(t *testing.T) {
	logger := buildLogger(nil, CLIFlags{Debug: true})

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLogger_Quiet(t *testing.T) {
	logger := buildLogger(nil, CLIFlags{Quiet: true})

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelError))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelWarn))
}

func TestBuildLogger_ConfigLevelIsBaseline(t *testing.T) {
	cfg := &config.Config{LogLevel: "debug"}

	logger := buildLogger(cfg, CLIFlags{})

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLogger_FlagsOverrideConfig(t *testing.T) {
	cfg := &config.Config{LogLevel: "error"}

	logger := buildLogger(cfg, CLIFlags{Verbose: true})

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLogger_UnknownConfigLevelFallsBackToWarn(t *testing.T) {
	cfg := &config.Config{LogLevel: "bogus"}

	logger := buildLogger(cfg, CLIFlags{})

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelWarn))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
}

// --- cliContextFrom / mustCLIContext tests ---

func TestCliContextFrom_NilContext(t *testing.T) {
	cc := cliContextFrom(context.Background())
	assert.Nil(t, cc)
}

func TestCliContextFrom_WithCLIContext(t *testing.T) {
	expected := &CLIContext{
		Cfg:    &config.Config{Organize: config.OrganizeConfig{Destination: "/test"}},
		Logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
	ctx := context.WithValue(context.Background(), cliContextKey{}, expected)

	cc := cliContextFrom(ctx)
	require.NotNil(t, cc)
	assert.Equal(t, "/test", cc.Cfg.Organize.Destination)
}

func TestMustCLIContext_Panics(t *testing.T) {
	assert.Panics(t, func() { mustCLIContext(context.Background()) })
}

func TestMustCLIContext_Returns(t *testing.T) {
	expected := &CLIContext{Logger: slog.New(slog.NewTextHandler(os.Stderr, nil))}
	ctx := context.WithValue(context.Background(), cliContextKey{}, expected)

	cc := mustCLIContext(ctx)
	assert.Same(t, expected, cc)
}

// --- Cobra structure tests ---

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	expected := []string{"organize", "import", "pprint", "get", "find", "stream"}
	for _, name := range expected {
		_, _, err := cmd.Find([]string{name})
		assert.NoError(t, err, "expected subcommand %q to be registered", name)
	}
}

func TestNewRootCmd_PersistentFlags(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"config", "json", "verbose", "debug", "quiet"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "expected persistent flag %q not found", name)
	}
}

func TestNewRootCmd_MutualExclusivity(t *testing.T) {
	pairs := [][]string{
		{"--verbose", "--debug"},
		{"--verbose", "--quiet"},
		{"--debug", "--quiet"},
	}

	for _, flags := range pairs {
		t.Run(flags[0]+"_"+flags[1], func(t *testing.T) {
			dir := t.TempDir()
			cmd := newRootCmd()
			cmd.SetArgs(append(append([]string{}, flags...), "pprint", dir))

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "none of the others can be")
		})
	}
}

func TestNewRootCmd_StubCommandsSkipConfig(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"pprint", "get", "find", "stream"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)

			sub.SetContext(context.Background())

			err = cmd.PersistentPreRunE(sub, nil)
			assert.NoError(t, err, "%s should skip config loading", name)

			cc := cliContextFrom(sub.Context())
			assert.NotNil(t, cc, "CLIContext should be populated for %s", name)
			assert.NotNil(t, cc.Logger)
			assert.Nil(t, cc.Cfg, "Cfg should stay nil for out-of-scope stub %s", name)
		})
	}
}

func TestNewRootCmd_OrganizeRequiresConfig(t *testing.T) {
	cmd := newRootCmd()

	sub, _, err := cmd.Find([]string{"organize"})
	require.NoError(t, err)
	assert.Empty(t, sub.Annotations[skipConfigAnnotation])
}

// --- loadCLIContext tests ---

func TestLoadCLIContext_PopulatesConfigForOrganize(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[organize]
destination = "`+filepath.ToSlash(tmpDir)+`"
`), 0o644))

	cmd := newRootCmd()
	cmd.SetContext(context.Background())

	flagConfigPath = cfgPath
	defer func() { flagConfigPath = "" }()

	sub, _, err := cmd.Find([]string{"organize"})
	require.NoError(t, err)
	sub.SetContext(context.Background())

	require.NoError(t, cmd.PersistentPreRunE(sub, nil))

	cc := cliContextFrom(sub.Context())
	require.NotNil(t, cc)
	require.NotNil(t, cc.Cfg)
	assert.Equal(t, tmpDir, cc.Cfg.Organize.Destination)
}

func TestLoadCLIContext_InvalidConfigFileErrors(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{{not valid toml"), 0o644))

	cmd := newRootCmd()
	cmd.SetContext(context.Background())

	flagConfigPath = cfgPath
	defer func() { flagConfigPath = "" }()

	sub, _, err := cmd.Find([]string{"organize"})
	require.NoError(t, err)
	sub.SetContext(context.Background())

	err = cmd.PersistentPreRunE(sub, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}
