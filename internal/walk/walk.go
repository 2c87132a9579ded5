// Package walk iterates input paths in a defined order and feeds them to
// a producer, which parses each one into a (source, metadata) pair and
// calls Engine.Emit. Record parsing itself lives outside this package;
// Walk only ever hands back raw filesystem entries.
package walk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aidanholm/hoardy-web/internal/organize"
)

// Order selects the iteration order the walker visits files in.
type Order int

// Order values.
const (
	// OrderNative visits files in whatever order the filesystem's
	// directory-entry enumeration returns them.
	OrderNative Order = iota
	OrderSortedAsc
	OrderSortedDesc
)

// ParseOrder parses the `--walk-order` flag / `walk_order` config value.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "native":
		return OrderNative, nil
	case "sorted-asc":
		return OrderSortedAsc, nil
	case "sorted-desc":
		return OrderSortedDesc, nil
	default:
		return 0, fmt.Errorf("unknown walk order %q (want native, sorted-asc, or sorted-desc)", s)
	}
}

// Entry is one file the walker has found, paired with its stat record so
// callers never need a second syscall just to learn inode/size/mtime.
type Entry struct {
	AbsPath string
	RelPath string
	Stat    organize.StatRecord
}

// isPartFile reports whether path is an in-progress write the walker must
// skip.
func isPartFile(path string) bool {
	return strings.HasSuffix(path, ".part")
}

// Walk visits every regular file under root in the given Order, calling fn
// once per file. It stops and returns ctx.Err() if ctx is canceled between
// files, so cancellation is polled between records rather than mid-copy.
func Walk(ctx context.Context, root string, order Order, fn func(Entry) error) error {
	if order == OrderNative {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if d.IsDir() || isPartFile(path) {
				return nil
			}

			return visit(root, path, fn)
		})
	}

	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || isPartFile(path) {
			return nil
		}

		paths = append(paths, path)

		return nil
	})
	if err != nil {
		return err
	}

	sort.Strings(paths)

	if order == OrderSortedDesc {
		for i, j := 0, len(paths)-1; i < j; i, j = i+1, j-1 {
			paths[i], paths[j] = paths[j], paths[i]
		}
	}

	for _, path := range paths {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err := visit(root, path, fn); err != nil {
			return err
		}
	}

	return nil
}

func visit(root, path string, fn func(Entry) error) error {
	fi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Raced with a concurrent removal between the directory read
			// and the stat; skip rather than fail the whole walk.
			return nil
		}

		return err
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	return fn(Entry{AbsPath: path, RelPath: rel, Stat: organize.NewStatRecord(fi)})
}
