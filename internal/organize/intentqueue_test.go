package organize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentQueue_SetGetPop(t *testing.T) {
	var account int

	q := NewIntentQueue(func(d int) { account += d })

	source := &SourceInfo{AbsPath: "/src"}
	intent := newIntent(ActionCopy, "/dst", source, false)

	q.Set("/dst", intent)
	assert.Equal(t, intent.ApproxSize(), account)
	assert.True(t, q.Has("/dst"))

	got, ok := q.Get("/dst")
	require.True(t, ok)
	assert.Same(t, intent, got)

	popped, ok := q.Pop("/dst")
	require.True(t, ok)
	assert.Same(t, intent, popped)
	assert.Equal(t, 0, account)
	assert.False(t, q.Has("/dst"))
}

func TestIntentQueue_PopOldestExecutesInFIFOOrder(t *testing.T) {
	q := NewIntentQueue(nil)

	q.Set("/a", newIntent(ActionCopy, "/a", &SourceInfo{AbsPath: "/src-a"}, false))
	q.Set("/b", newIntent(ActionCopy, "/b", &SourceInfo{AbsPath: "/src-b"}, false))

	dest, intent, ok := q.PopOldest()
	require.True(t, ok)
	assert.Equal(t, "/a", dest)
	assert.Equal(t, "/src-a", intent.FormatSource())

	assert.Equal(t, 1, q.Len())
}
