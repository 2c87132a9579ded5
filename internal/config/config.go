// Package config resolves the on-disk, environment, and CLI-flag layers of
// hoardy-web's configuration into the Options the organize engine needs.
package config

// Config is the on-disk configuration file, decoded from TOML. Only the
// `organize` table is structured; LogLevel is the ambient logging knob
// every subcommand shares.
type Config struct {
	LogLevel string         `toml:"log_level"`
	Organize OrganizeConfig `toml:"organize"`
}

// OrganizeConfig holds every knob the organize engine recognizes, plus
// the walker/reporting additions (WalkOrder, Watch, ReportWS).
type OrganizeConfig struct {
	Action       string `toml:"action"`
	AllowUpdates bool   `toml:"allow_updates"`
	DryRun       bool   `toml:"dry_run"`
	Quiet        bool   `toml:"quiet"`
	Errors       string `toml:"errors"`
	Terminator   string `toml:"terminator"`

	MaxSeen     int    `toml:"max_seen"`
	MaxCached   int    `toml:"max_cached"`
	MaxDeferred int    `toml:"max_deferred"`
	MaxBatched  int    `toml:"max_batched"`
	MaxMemory   string `toml:"max_memory"`
	Lazy        bool   `toml:"lazy"`

	OutputFormat string `toml:"output_format"`
	Destination  string `toml:"destination"`

	// WalkOrder selects the walker adapter's iteration order (component H):
	// "native", "sorted-asc", or "sorted-desc".
	WalkOrder string `toml:"walk_order"`
	// Watch enables the fsnotify-based live-feed walker instead of a single
	// directory pass.
	Watch bool `toml:"watch"`
	// ReportWS, if set, mirrors completed destinations to a websocket
	// listener in addition to the stdout reporting channel.
	ReportWS string `toml:"report_ws"`
}
