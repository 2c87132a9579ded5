package config

import (
	"fmt"

	"github.com/aidanholm/hoardy-web/internal/organize"
)

// ToEngineOptions validates the OrganizeConfig and converts it into
// organize.Options, failing only on values the engine structurally cannot
// run at all: an empty destination or output template, or an unparsable
// action/errors/max-memory string.
func (c OrganizeConfig) ToEngineOptions() (organize.Options, error) {
	action, err := organize.ParseAction(c.Action)
	if err != nil {
		return organize.Options{}, err
	}

	errPolicy, err := organize.ParseErrorPolicy(c.Errors)
	if err != nil {
		return organize.Options{}, err
	}

	maxMemory, err := ParseSize(c.MaxMemory)
	if err != nil {
		return organize.Options{}, err
	}

	if c.OutputFormat == "" {
		return organize.Options{}, fmt.Errorf("organize: output_format must not be empty")
	}

	if c.Destination == "" {
		return organize.Options{}, fmt.Errorf("organize: destination must not be empty")
	}

	var terminator []byte
	if c.Terminator != "" {
		terminator = []byte(c.Terminator)
	}

	return organize.Options{
		Action:       action,
		AllowUpdates: c.AllowUpdates,
		DryRun:       c.DryRun,
		Quiet:        c.Quiet,
		Errors:       errPolicy,
		Terminator:   terminator,
		MaxSeen:      c.MaxSeen,
		MaxCached:    c.MaxCached,
		MaxDeferred:  c.MaxDeferred,
		MaxBatched:   c.MaxBatched,
		MaxMemory:    maxMemory,
		Lazy:         c.Lazy,
		OutputFormat: c.OutputFormat,
		Destination:  c.Destination,
	}, nil
}
