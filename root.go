package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aidanholm/hoardy-web/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagVerbose    bool
	flagDebug      bool
	flagQuiet      bool
	flagJSON       bool
)

// skipConfigAnnotation marks commands that handle config loading themselves
// or that never need it (out-of-scope CLI stubs).
const skipConfigAnnotation = "skipConfig"

// CLIContext bundles resolved config and logger. Created once in
// PersistentPreRunE; eliminates redundant buildLogger calls in RunE handlers.
type CLIContext struct {
	Cfg    *config.Config
	Env    config.EnvOverrides
	Flags  CLIFlags
	Logger *slog.Logger
}

// CLIFlags captures the persistent flags as seen by PersistentPreRunE, for
// commands (and tests) that need them without re-reading cobra's FlagSet.
type CLIFlags struct {
	ConfigPath string
	Verbose    bool
	Debug      bool
	Quiet      bool
	JSON       bool
}

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// cliContextFrom extracts the CLIContext from the command's context.
// Returns nil if none was stored.
func cliContextFrom(ctx context.Context) *CLIContext {
	cc, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok {
		return nil
	}

	return cc
}

// mustCLIContext extracts the CLIContext or panics with an actionable
// message. Panics here are always programmer errors: PersistentPreRunE
// guarantees the context is populated before any RunE executes.
func mustCLIContext(ctx context.Context) *CLIContext {
	cc := cliContextFrom(ctx)
	if cc == nil {
		panic("BUG: CLIContext not found in context — PersistentPreRunE did not run")
	}

	return cc
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hoardy-web",
		Short:   "Organize on-disk archives of HTTP request/response pairs",
		Long:    "hoardy-web manages on-disk archives of HTTP request/response pairs (reqres), placing each one at a path computed from its metadata.",
		Version: version,
		// Silence Cobra's default error/usage printing — we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadCLIContext(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output a JSON summary instead of plain text (summary only; the reporting channel is always byte-exact)")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "show detailed output")
	cmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.MarkFlagsMutuallyExclusive("verbose", "debug", "quiet")

	cmd.AddCommand(newOrganizeCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newPprintCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newFindCmd())
	cmd.AddCommand(newStreamCmd())

	return cmd
}

// loadCLIContext resolves the effective configuration and logger, storing
// both (plus the raw flags and env overrides) in the command's context for
// use by subcommands. Commands carrying skipConfigAnnotation (the
// out-of-scope stubs) skip config loading; every other subcommand gets the
// same resolved Config.
func loadCLIContext(cmd *cobra.Command) error {
	flags := CLIFlags{
		ConfigPath: flagConfigPath,
		Verbose:    flagVerbose,
		Debug:      flagDebug,
		Quiet:      flagQuiet,
		JSON:       flagJSON,
	}

	env := config.ReadEnvOverrides()

	logger := buildLogger(nil, flags)

	if cmd.Annotations[skipConfigAnnotation] == "true" {
		ctx := contextOrBackground(cmd)
		cmd.SetContext(context.WithValue(ctx, cliContextKey{}, &CLIContext{Env: env, Flags: flags, Logger: logger}))

		return nil
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	finalLogger := buildLogger(cfg, flags)

	cc := &CLIContext{Cfg: cfg, Env: env, Flags: flags, Logger: finalLogger}

	ctx := contextOrBackground(cmd)
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cc))

	return nil
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

// buildLogger creates an slog.Logger configured by the resolved config and
// CLI flags. Pass nil for pre-config bootstrap (no config-file log level).
// Config-file log level provides the baseline; --verbose, --debug, and
// --quiet override it because CLI flags always win. The flags are mutually
// exclusive (enforced by Cobra).
func buildLogger(cfg *config.Config, flags CLIFlags) *slog.Logger {
	level := slog.LevelWarn

	if cfg != nil {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	if flags.Verbose {
		level = slog.LevelInfo
	}

	if flags.Debug {
		level = slog.LevelDebug
	}

	if flags.Quiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
