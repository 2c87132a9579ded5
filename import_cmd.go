package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanholm/hoardy-web/internal/organize"
	"github.com/aidanholm/hoardy-web/internal/report"
	"github.com/aidanholm/hoardy-web/internal/reqres"
	"github.com/aidanholm/hoardy-web/internal/walk"
)

// newImportCmd is organize fed by a different producer: instead of moving
// files already in the archive, it writes each input's bytes into place.
// Real reqres parsing of foreign dump formats
// (mitmproxy, etc.) is out of scope, so this reads each input file's raw
// bytes and derives the same stat-based fields `organize` itself uses,
// exercising Engine.EmitBytes and the write-from-bytes intent instead of
// the move/copy/hardlink/symlink family.
func newImportCmd() *cobra.Command {
	var f organizeFlags

	cmd := &cobra.Command{
		Use:   "import SOURCE",
		Short: "Import foreign-format files into the archive via the same placement engine as organize",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], f)
		},
	}

	bindOrganizeFlags(cmd, &f)

	return cmd
}

func runImport(cmd *cobra.Command, source string, f organizeFlags) error {
	cc := mustCLIContext(cmd.Context())

	oc := cc.Cfg.Organize
	applyOrganizeFlags(cmd, &oc, f)

	opts, err := oc.ToEngineOptions()
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	order, err := walk.ParseOrder(oc.WalkOrder)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	ctx := shutdownContext(cmd.Context(), cc.Logger)

	engine := organize.NewEngine(opts, buildReportWriter(ctx, opts, oc.ReportWS), cc.Logger)
	engine.SetActionLogger(report.NewLogger(os.Stderr, opts.Quiet))

	var stats runStats

	start := time.Now()

	walkErr := walk.Walk(ctx, source, order, func(entry walk.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		content, err := os.ReadFile(entry.AbsPath)
		if err != nil {
			return err
		}

		metadata := reqres.FromEntry(entry)

		if err := engine.EmitBytes(ctx, content, metadata); err != nil {
			return err
		}

		stats.add(int64(len(content)), entry.Stat.ModTime)

		return nil
	})
	if walkErr != nil {
		_ = engine.Close(ctx)

		return fmt.Errorf("import: %w", walkErr)
	}

	if err := engine.Close(ctx); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	printRunSummary(cc, "imported", stats, time.Since(start))

	return nil
}
