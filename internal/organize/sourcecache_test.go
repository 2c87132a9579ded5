package organize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceCache_SetGetPop(t *testing.T) {
	var account int

	c := NewSourceCache(func(d int) { account += d })

	info := &SourceInfo{AbsPath: "/a/b"}
	c.Set("/a/b", info)

	assert.Equal(t, info.ApproxSize(), account)

	got, ok := c.Get("/a/b")
	require.True(t, ok)
	assert.Same(t, info, got)

	popped, ok := c.Pop("/a/b")
	require.True(t, ok)
	assert.Same(t, info, popped)
	assert.Equal(t, 0, account)
	assert.Equal(t, 0, c.Len())
}

func TestSourceCache_SetReplacementAccountsDelta(t *testing.T) {
	var account int

	c := NewSourceCache(func(d int) { account += d })

	c.Set("/x", &SourceInfo{AbsPath: "/x"})
	first := account

	c.Set("/x", &SourceInfo{AbsPath: "/much/longer/path/x"})

	assert.Greater(t, account, first)
	assert.Equal(t, 1, c.Len())
}

func TestSourceCache_PopOldestFIFO(t *testing.T) {
	c := NewSourceCache(nil)

	c.Set("/a", &SourceInfo{AbsPath: "/a"})
	c.Set("/b", &SourceInfo{AbsPath: "/b"})

	path, info, ok := c.PopOldest()
	require.True(t, ok)
	assert.Equal(t, "/a", path)
	assert.Equal(t, "/a", info.AbsPath)
	assert.Equal(t, 1, c.Len())
}

func TestLstat_MissingPath(t *testing.T) {
	info, err := Lstat("/definitely/does/not/exist/ever")
	require.NoError(t, err)
	assert.Nil(t, info)
}
