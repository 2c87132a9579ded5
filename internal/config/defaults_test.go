package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_PopulatesOrganizeTable(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, DefaultAction, cfg.Organize.Action)
	assert.Equal(t, DefaultErrors, cfg.Organize.Errors)
	assert.Equal(t, DefaultTerminator, cfg.Organize.Terminator)
	assert.Equal(t, DefaultMaxSeen, cfg.Organize.MaxSeen)
	assert.Equal(t, DefaultMaxCached, cfg.Organize.MaxCached)
	assert.Equal(t, DefaultMaxDeferred, cfg.Organize.MaxDeferred)
	assert.Equal(t, DefaultMaxBatched, cfg.Organize.MaxBatched)
	assert.Equal(t, DefaultMaxMemory, cfg.Organize.MaxMemory)
	assert.Equal(t, DefaultOutputFormat, cfg.Organize.OutputFormat)
	assert.Equal(t, DefaultWalkOrder, cfg.Organize.WalkOrder)
	assert.False(t, cfg.Organize.AllowUpdates)
	assert.False(t, cfg.Organize.Lazy)
}

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	a := Default()
	b := Default()

	a.Organize.Action = "copy"

	assert.Equal(t, DefaultAction, b.Organize.Action)
}
