package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize_Empty(t *testing.T) {
	n, err := ParseSize("")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestParseSize_IECSuffix(t *testing.T) {
	n, err := ParseSize("64MiB")
	require.NoError(t, err)
	assert.Equal(t, int64(64*1024*1024), n)
}

func TestParseSize_SISuffix(t *testing.T) {
	n, err := ParseSize("1MB")
	require.NoError(t, err)
	assert.Equal(t, int64(1000*1000), n)
}

func TestParseSize_Invalid(t *testing.T) {
	_, err := ParseSize("not-a-size")
	assert.Error(t, err)
}
