package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanholm/hoardy-web/internal/config"
	"github.com/aidanholm/hoardy-web/internal/organize"
	"github.com/aidanholm/hoardy-web/internal/report"
	"github.com/aidanholm/hoardy-web/internal/reqres"
	"github.com/aidanholm/hoardy-web/internal/walk"
)

// organizeFlags mirrors config.OrganizeConfig, one field per row, so every
// knob that can live in the TOML file except `quiet` can also be set or
// overridden on the command line; flags win over config, which wins over
// defaults.
type organizeFlags struct {
	action       string
	allowUpdates bool
	dryRun       bool
	errorsPolicy string
	terminator   string

	maxSeen     int
	maxCached   int
	maxDeferred int
	maxBatched  int
	maxMemory   string
	lazy        bool

	outputFormat string
	destination  string

	walkOrder string
	watch     bool
	reportWS  string
}

func newOrganizeCmd() *cobra.Command {
	var f organizeFlags

	cmd := &cobra.Command{
		Use:   "organize SOURCE",
		Short: "Place reqres files from SOURCE at paths derived from their metadata",
		Long: `organize walks SOURCE (a directory of reqres files) and moves, copies,
hardlinks, or symlinks each one to a path computed from an --output template,
deferring and batching filesystem actions to bound memory use while the walk
is still in progress.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganize(cmd, args[0], f)
		},
	}

	bindOrganizeFlags(cmd, &f)

	return cmd
}

func bindOrganizeFlags(cmd *cobra.Command, f *organizeFlags) {
	cmd.Flags().StringVar(&f.action, "action", "", "move, copy, hardlink, or symlink (default: config value or \"move\")")
	cmd.Flags().BoolVar(&f.allowUpdates, "allow-updates", false, "replace an existing destination with a newer source")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "log planned actions without touching the filesystem")
	cmd.Flags().StringVar(&f.errorsPolicy, "errors", "", "fail, skip, or ignore record-local failures (default: config value or \"fail\")")
	cmd.Flags().StringVar(&f.terminator, "terminator", "", "separator appended to each reported destination (default: config value or newline)")

	cmd.Flags().IntVar(&f.maxSeen, "max-seen", 0, "track at most this many distinct --output values")
	cmd.Flags().IntVar(&f.maxCached, "max-cached", 0, "cache stat(2) info for at most this many files")
	cmd.Flags().IntVar(&f.maxDeferred, "max-deferred", 0, "defer at most this many filesystem actions")
	cmd.Flags().IntVar(&f.maxBatched, "max-batched", 0, "allow this many extra deferred actions once the above are all within budget")
	cmd.Flags().StringVar(&f.maxMemory, "max-memory", "", "total memory budget for the above caches, e.g. 64MiB")
	cmd.Flags().BoolVar(&f.lazy, "lazy", false, "disable all budgets; flush only at the end of the run")

	cmd.Flags().StringVar(&f.outputFormat, "output", "", "output path template")
	cmd.Flags().StringVar(&f.destination, "destination", "", "root directory --output paths are resolved under")

	cmd.Flags().StringVar(&f.walkOrder, "walk-order", "", "native, sorted-asc, or sorted-desc")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "keep watching SOURCE for new files instead of exiting after one pass")
	cmd.Flags().StringVar(&f.reportWS, "report-ws", "", "listen address (host:port) mirroring the reporting channel over websocket")
}

// applyOrganizeFlags overlays only the flags the user actually set onto
// the loaded config, so an unset flag never clobbers a config-file or
// default value with its own zero value.
func applyOrganizeFlags(cmd *cobra.Command, oc *config.OrganizeConfig, f organizeFlags) {
	changed := cmd.Flags().Changed

	if changed("action") {
		oc.Action = f.action
	}

	if changed("allow-updates") {
		oc.AllowUpdates = f.allowUpdates
	}

	if changed("dry-run") {
		oc.DryRun = f.dryRun
	}

	if changed("errors") {
		oc.Errors = f.errorsPolicy
	}

	if changed("terminator") {
		oc.Terminator = f.terminator
	}

	if changed("max-seen") {
		oc.MaxSeen = f.maxSeen
	}

	if changed("max-cached") {
		oc.MaxCached = f.maxCached
	}

	if changed("max-deferred") {
		oc.MaxDeferred = f.maxDeferred
	}

	if changed("max-batched") {
		oc.MaxBatched = f.maxBatched
	}

	if changed("max-memory") {
		oc.MaxMemory = f.maxMemory
	}

	if changed("lazy") {
		oc.Lazy = f.lazy
	}

	if changed("output") {
		oc.OutputFormat = f.outputFormat
	}

	if changed("destination") {
		oc.Destination = f.destination
	}

	if changed("walk-order") {
		oc.WalkOrder = f.walkOrder
	}

	if changed("watch") {
		oc.Watch = f.watch
	}

	if changed("report-ws") {
		oc.ReportWS = f.reportWS
	}
}

func runOrganize(cmd *cobra.Command, source string, f organizeFlags) error {
	cc := mustCLIContext(cmd.Context())

	oc := cc.Cfg.Organize
	applyOrganizeFlags(cmd, &oc, f)

	opts, err := oc.ToEngineOptions()
	if err != nil {
		return fmt.Errorf("organize: %w", err)
	}

	order, err := walk.ParseOrder(oc.WalkOrder)
	if err != nil {
		return fmt.Errorf("organize: %w", err)
	}

	ctx := shutdownContext(cmd.Context(), cc.Logger)

	engine := organize.NewEngine(opts, buildReportWriter(ctx, opts, oc.ReportWS), cc.Logger)
	engine.SetActionLogger(report.NewLogger(os.Stderr, opts.Quiet))

	var stats runStats

	start := time.Now()

	producer := func(entry walk.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		src := &organize.SourceInfo{AbsPath: entry.AbsPath, Stat: entry.Stat}
		metadata := reqres.FromEntry(entry)

		if err := engine.Emit(ctx, src, metadata); err != nil {
			return err
		}

		stats.add(entry.Stat.Size, entry.Stat.ModTime)

		return nil
	}

	if oc.Watch {
		err = walk.Watch(ctx, source, producer)
	} else {
		err = walk.Walk(ctx, source, order, producer)
	}
	if err != nil {
		_ = engine.Close(ctx)

		return fmt.Errorf("organize: %w", err)
	}

	if err := engine.Close(ctx); err != nil {
		return fmt.Errorf("organize: %w", err)
	}

	printRunSummary(cc, "organized", stats, time.Since(start))

	return nil
}

// buildReportWriter assembles the reporting channel (stdout, optionally
// mirrored over a websocket). Returns a nil
// io.Writer (not a typed nil) when reporting is disabled, since a typed
// nil *report.Tee stored in an io.Writer would compare non-nil and then
// panic on first Write.
func buildReportWriter(ctx context.Context, opts organize.Options, wsAddr string) io.Writer {
	if opts.Terminator == nil {
		return nil
	}

	ch := report.NewChannel(os.Stdout)

	var ws *report.WSMirror
	if wsAddr != "" {
		ws = report.NewWSMirror()
		ws.Serve(ctx, wsAddr)
	}

	return report.NewTee(ctx, ch, ws)
}
