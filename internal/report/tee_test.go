package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTee_WriteWithNilMirrorWritesThroughToChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	ch := NewChannel(f)
	tee := NewTee(context.Background(), ch, nil)

	_, err = tee.Write([]byte("dest/a.wrr\n"))
	require.NoError(t, err)
	require.NoError(t, tee.Sync())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dest/a.wrr\n", string(content))
}

func TestTee_WriteBroadcastsToMirror(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	ch := NewChannel(f)
	mirror := NewWSMirror()
	tee := NewTee(context.Background(), ch, mirror)

	// No connected clients: Broadcast must be a no-op, not a panic or block.
	_, err = tee.Write([]byte("dest/a.wrr\n"))
	require.NoError(t, err)
}
