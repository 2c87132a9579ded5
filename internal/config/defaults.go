package config

// Default values for the `organize` table, chosen to sit on the safe side
// of every knob: move is the cheapest action but refuses to clobber
// anything without allow_updates, and the budgets are small enough to
// exercise the flush controller's grace margin on any reasonably sized
// input stream.
const (
	DefaultAction       = "move"
	DefaultErrors       = "fail"
	DefaultTerminator   = "\n"
	DefaultMaxSeen      = 1024
	DefaultMaxCached    = 1024
	DefaultMaxDeferred  = 256
	DefaultMaxBatched   = 256
	DefaultMaxMemory    = "64MiB"
	DefaultOutputFormat = "%(year)s/%(month)s/%(day)s/%(stime)s_%(num)d.wrr"
	DefaultWalkOrder    = "native"
)

// Default returns a Config populated with the defaults above. Load layers
// a config file, then environment, then CLI flags on top of this.
func Default() *Config {
	return &Config{
		LogLevel: "warn",
		Organize: OrganizeConfig{
			Action:       DefaultAction,
			Errors:       DefaultErrors,
			Terminator:   DefaultTerminator,
			MaxSeen:      DefaultMaxSeen,
			MaxCached:    DefaultMaxCached,
			MaxDeferred:  DefaultMaxDeferred,
			MaxBatched:   DefaultMaxBatched,
			MaxMemory:    DefaultMaxMemory,
			OutputFormat: DefaultOutputFormat,
			WalkOrder:    DefaultWalkOrder,
		},
	}
}
