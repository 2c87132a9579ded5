package organize

import (
	"fmt"
	"os"
)

// SyncLog collects fsync targets and post-success cleanups, to be run
// atomically by the flush controller.
//
// Sync() fsyncs every pending data and directory file; Finish() runs the
// post-success actions (e.g. unlinking a move's source after a cross-device
// copy). Both are idempotent and safe to call on an empty log.
type SyncLog struct {
	dataFiles []*os.File
	dirPaths  map[string]struct{}
	actions   []func() error
}

// NewSyncLog creates an empty SyncLog.
func NewSyncLog() *SyncLog {
	return &SyncLog{dirPaths: make(map[string]struct{})}
}

// AddDataFsync queues f to be fsynced (and closed) by Sync. The engine
// never reports a destination as complete before this fsync has run:
// the reporting channel emits a destination path only after its content
// and parent directory are durable.
func (l *SyncLog) AddDataFsync(f *os.File) {
	l.dataFiles = append(l.dataFiles, f)
}

// AddDirFsync queues the parent directory at dirPath to be fsynced by
// Sync. Deduplicated — multiple files landing in the same new directory
// within one batch share a single directory fsync.
func (l *SyncLog) AddDirFsync(dirPath string) {
	l.dirPaths[dirPath] = struct{}{}
}

// AddPostSuccess queues fn to run only after Sync has succeeded — used for
// the source unlink half of an EXDEV move-as-copy.
func (l *SyncLog) AddPostSuccess(fn func() error) {
	l.actions = append(l.actions, fn)
}

// Sync fsyncs (and closes) every queued data file, then fsyncs every queued
// directory, and clears both queues. Post-success actions stay queued until
// Finish.
func (l *SyncLog) Sync() error {
	for _, f := range l.dataFiles {
		if err := f.Sync(); err != nil {
			_ = f.Close()

			return fmt.Errorf("fsync %s: %w", f.Name(), err)
		}

		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", f.Name(), err)
		}
	}

	l.dataFiles = nil

	for dir := range l.dirPaths {
		df, err := os.Open(dir)
		if err != nil {
			return fmt.Errorf("opening directory %s for fsync: %w", dir, err)
		}

		err = df.Sync()

		closeErr := df.Close()
		if err != nil {
			return fmt.Errorf("fsync directory %s: %w", dir, err)
		}

		if closeErr != nil {
			return fmt.Errorf("close directory %s: %w", dir, closeErr)
		}
	}

	l.dirPaths = make(map[string]struct{})

	return nil
}

// Finish runs every queued post-success action, in order, and clears the
// queue. Must only be called after a successful Sync.
func (l *SyncLog) Finish() error {
	actions := l.actions
	l.actions = nil

	for _, fn := range actions {
		if err := fn(); err != nil {
			return err
		}
	}

	return nil
}
