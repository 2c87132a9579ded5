package walk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("")
	require.NoError(t, err)
	assert.Equal(t, OrderNative, o)

	o, err = ParseOrder("native")
	require.NoError(t, err)
	assert.Equal(t, OrderNative, o)

	o, err = ParseOrder("sorted-asc")
	require.NoError(t, err)
	assert.Equal(t, OrderSortedAsc, o)

	o, err = ParseOrder("sorted-desc")
	require.NoError(t, err)
	assert.Equal(t, OrderSortedDesc, o)

	_, err = ParseOrder("bogus")
	assert.Error(t, err)
}

func TestWalk_SortedAscVisitsLexicographically(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.wrr"), "b")
	writeFile(t, filepath.Join(root, "a.wrr"), "a")
	writeFile(t, filepath.Join(root, "c.wrr"), "c")

	var seen []string

	err := Walk(context.Background(), root, OrderSortedAsc, func(e Entry) error {
		seen = append(seen, e.RelPath)

		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.wrr", "b.wrr", "c.wrr"}, seen)
}

func TestWalk_SortedDescReversesOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.wrr"), "b")
	writeFile(t, filepath.Join(root, "a.wrr"), "a")
	writeFile(t, filepath.Join(root, "c.wrr"), "c")

	var seen []string

	err := Walk(context.Background(), root, OrderSortedDesc, func(e Entry) error {
		seen = append(seen, e.RelPath)

		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"c.wrr", "b.wrr", "a.wrr"}, seen)
}

func TestWalk_SkipsPartFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "done.wrr"), "done")
	writeFile(t, filepath.Join(root, "inflight.wrr.part"), "partial")

	var seen []string

	err := Walk(context.Background(), root, OrderSortedAsc, func(e Entry) error {
		seen = append(seen, e.RelPath)

		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"done.wrr"}, seen)
}

func TestWalk_StopsOnCanceledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.wrr"), "a")
	writeFile(t, filepath.Join(root, "b.wrr"), "b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Walk(ctx, root, OrderSortedAsc, func(e Entry) error {
		t.Fatal("fn should not be called once the context is already canceled")

		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalk_PropagatesProducerError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.wrr"), "a")

	sentinel := assert.AnError

	err := Walk(context.Background(), root, OrderNative, func(e Entry) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestWalk_EntryCarriesStat(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.wrr"), "hello")

	var got Entry

	err := Walk(context.Background(), root, OrderNative, func(e Entry) error {
		got = e

		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), got.Stat.Size)
	assert.Equal(t, filepath.Join(root, "a.wrr"), got.AbsPath)
}
