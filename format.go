package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// statusf prints a status message to stderr unless quiet mode is set.
func statusf(quiet bool, format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// Statusf prints a status message to stderr unless quiet mode is set.
// Method form of statusf — avoids threading `quiet bool` through call chains.
func (cc *CLIContext) Statusf(format string, args ...any) {
	statusf(cc.Flags.Quiet, format, args...)
}

// formatSize returns a human-readable size string (e.g. "1.2 MiB"), using
// IEC (binary) units to match the `max_memory` config option's own "MiB"
// units (internal/config/size.go).
func formatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}

// formatTime returns a compact timestamp for display.
func formatTime(t time.Time) string {
	now := time.Now()

	// Same calendar year: show "Jan  2 15:04"
	if t.Year() == now.Year() {
		return t.Format("Jan _2 15:04")
	}

	// Different year: show "Jan  2  2006"
	return t.Format("Jan _2  2006")
}

// printTable writes aligned columns to the given writer.
// headers and each row must have the same length.
func printTable(w io.Writer, headers []string, rows [][]string) {
	// Compute column widths.
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Print header.
	printRow(w, headers, widths)

	// Print rows.
	for _, row := range rows {
		printRow(w, row, widths)
	}
}

// printRow writes a single padded row.
func printRow(w io.Writer, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}

	fmt.Fprintln(w, strings.Join(parts, "  "))
}

// runStats accumulates per-run totals for the end-of-run summary.
type runStats struct {
	records int
	bytes   int64
	newest  time.Time
}

func (s *runStats) add(size int64, mtime time.Time) {
	s.records++
	s.bytes += size

	if mtime.After(s.newest) {
		s.newest = mtime
	}
}

// printRunSummary writes the end-of-run summary to stderr, keeping stdout
// byte-exact for the reporting channel: a one-liner by default, a stats
// table under --verbose, a JSON object under --json, nothing under --quiet.
func printRunSummary(cc *CLIContext, verb string, stats runStats, elapsed time.Duration) {
	elapsed = elapsed.Round(time.Millisecond)

	if cc.Flags.JSON {
		out, err := json.Marshal(map[string]any{
			"records": stats.records,
			"bytes":   stats.bytes,
			"elapsed": elapsed.String(),
		})
		if err == nil {
			fmt.Fprintln(os.Stderr, string(out))
		}

		return
	}

	if cc.Flags.Verbose {
		newest := "-"
		if !stats.newest.IsZero() {
			newest = formatTime(stats.newest)
		}

		printTable(os.Stderr,
			[]string{"records", "bytes", "elapsed", "newest"},
			[][]string{{fmt.Sprintf("%d", stats.records), formatSize(stats.bytes), elapsed.String(), newest}},
		)

		return
	}

	cc.Statusf("%s %d records (%s) in %s\n", verb, stats.records, formatSize(stats.bytes), elapsed)
}
