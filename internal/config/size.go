package config

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// ParseSize parses a human-readable byte count such as "64MiB" or "256MB"
// for the `max_memory` option. go-humanize accepts both IEC and SI
// suffixes, which is friendlier for a config file a human edits by hand.
func ParseSize(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("parsing size %q: %w", s, err)
	}

	return int64(n), nil
}
