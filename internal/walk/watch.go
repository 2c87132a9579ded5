package walk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/aidanholm/hoardy-web/internal/organize"
)

// Watch is the live-feed walker adapter for the `--watch` flag: after an
// initial native Walk of root, it keeps watching root (and any directories created under
// it) and calls fn for every Create or Write event on a file without the
// `.part` suffix. Events are not debounced: a file written in several steps
// is passed to fn once per event, the first time as soon as it is created.
// Watch returns when ctx is canceled.
func Watch(ctx context.Context, root string, fn func(Entry) error) error {
	if err := Walk(ctx, root, OrderNative, fn); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, root); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if err := handleEvent(watcher, root, event, fn); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			return fmt.Errorf("watching %s: %w", root, err)
		}
	}
}

func handleEvent(watcher *fsnotify.Watcher, root string, event fsnotify.Event, fn func(Entry) error) error {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return nil
	}

	if isPartFile(event.Name) {
		return nil
	}

	fi, err := os.Lstat(event.Name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	if fi.IsDir() {
		return addRecursive(watcher, event.Name)
	}

	rel, err := filepath.Rel(root, event.Name)
	if err != nil {
		rel = event.Name
	}

	return fn(Entry{AbsPath: event.Name, RelPath: rel, Stat: organize.NewStatRecord(fi)})
}

func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return watcher.Add(path)
		}

		return nil
	})
}
