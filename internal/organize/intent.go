package organize

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
)

// Intent is one pending filesystem mutation, keyed by its destination path
// in the IntentQueue. The set of concrete implementations
// (moveIntent/copyIntent/hardlinkIntent/symlinkIntent/writeIntent) is
// closed and small, so they share this interface rather than a sum type.
type Intent interface {
	// UpdateFrom decides the disposition when a later Emit re-targets this
	// intent's destination. Returns the source the intent should now carry
	// forward and whether the update is permitted.
	UpdateFrom(allowUpdates bool, newSource *SourceInfo) (*SourceInfo, bool, error)
	// ApproxSize estimates the memory footprint for accounting.
	ApproxSize() int
	// FormatSource returns a display string for the logging channel.
	FormatSource() string
	// Gerund names the pending operation for the logging channel's
	// "<gerund>: `source` -> `dest`" line.
	Gerund() string
	// Run performs the syscall(s) for this intent at dest, queuing fsync
	// and post-success obligations into log. On success it returns a
	// SourceInfo describing dest's new on-disk state.
	Run(dest string, log *SyncLog, dryRun bool) (*SourceInfo, error)
}

// readFile reads an entire file's content for the actions that compare
// on-disk data before deciding whether an update is a noop.
func readFile(path string) ([]byte, error) {
	return os.ReadFile(path) //nolint:gosec // path comes from the archive being organized, not untrusted input
}

// contentEqual implements the data-comparison half of update_from: it
// reads old's on-disk bytes and compares them against newContent.
func contentEqual(old *SourceInfo, newContent []byte) (bool, error) {
	oldContent, err := readFile(old.AbsPath)
	if err != nil {
		return false, fmt.Errorf("reading %s for dedup comparison: %w", old.AbsPath, err)
	}

	return bytes.Equal(oldContent, newContent), nil
}

// decideUpdate implements the update-resolution rules shared by all actions,
// used both by Defer (when it has just synthesized `old` from a stat) and
// by every concrete Intent.UpdateFrom. newContent is read lazily (only
// when a byte comparison is actually required) via newContentFn, so
// samestat/same-path noops never touch disk.
//
// Returns (chosen, permitted, noop, err). chosen is the source the caller
// should carry forward (old or newSource); permitted is false only when
// content differs and updates are not allowed, in which case err is
// ErrUpdatesNotAllowed wrapped with the destination path; noop is true
// when the destination already holds newSource's content.
func decideUpdate(
	action Action,
	allowUpdates bool,
	dest string,
	old, newSource *SourceInfo,
	newContentFn func() ([]byte, error),
) (chosen *SourceInfo, permitted, noop bool, err error) {
	if action == ActionSymlink && old.AbsPath == newSource.AbsPath {
		return old, true, true, nil
	}

	if sameStat(old.Stat, newSource.Stat) {
		return old, true, true, nil
	}

	equal := false

	if action != ActionSymlink {
		newContent, cErr := newContentFn()
		if cErr != nil {
			return nil, false, false, wrapFatal(cErr)
		}

		equal, err = contentEqual(old, newContent)
		if err != nil {
			return nil, false, false, wrapFatal(err)
		}
	}

	if equal {
		return old, true, true, nil
	}

	if !allowUpdates {
		// Not wrapped fatal: the engine's retry loop gets a chance to find
		// a fresh `num` before this becomes an unrecoverable diagnostic —
		// see Engine.Emit.
		return old, false, false, pathError(ErrUpdatesNotAllowed, dest)
	}

	if newSource.Stime() > old.Stime() {
		return newSource, true, false, nil
	}

	return old, true, false, nil
}

// Stime returns the source-time cached on s, or 0 when none is set.
// SourceInfo doesn't carry a Reqres, so newer-wins comparisons rely on the
// engine passing the Reqres's Stime() in via CachedStime before calling
// into the intent protocol. See the withStime helper in this file.
func (s *SourceInfo) Stime() int64 {
	if s == nil || s.CachedStime == nil {
		return 0
	}

	return *s.CachedStime
}

// withStime returns a shallow copy of info with CachedStime set, so the
// engine can thread a reqres's source-time through SourceInfo without
// mutating a caller's copy.
func withStime(info *SourceInfo, stime int64) *SourceInfo {
	if info == nil {
		return nil
	}

	cp := *info
	v := stime
	cp.CachedStime = &v

	return &cp
}

// lstatResolved inspects dest: absent, a symlink
// (resolved — and refused unless action is itself symlink), or a regular
// file/other target. destExists reports whether *something* is present at
// dest, even a dangling symlink we can't stat through.
func lstatResolved(action Action, dest string) (old *SourceInfo, destExists bool, err error) {
	fi, statErr := os.Lstat(dest)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return nil, false, nil
		}

		return nil, false, wrapFatal(fmt.Errorf("lstat %s: %w", dest, statErr))
	}

	if fi.Mode()&os.ModeSymlink == 0 {
		return &SourceInfo{AbsPath: dest, Stat: statRecordFrom(fi)}, true, nil
	}

	if action != ActionSymlink {
		return nil, true, wrapFatal(pathError(ErrSymlinkClash, dest))
	}

	target, readErr := os.Readlink(dest)
	if readErr != nil {
		return nil, true, wrapFatal(fmt.Errorf("readlink %s: %w", dest, readErr))
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(dest), target)
	}

	targetFi, targetErr := os.Lstat(target)
	if targetErr != nil {
		// Dangling symlink: treat the resolved path as the current source
		// but with a zero stat, so sameStat can never spuriously match.
		return &SourceInfo{AbsPath: target}, true, nil
	}

	return &SourceInfo{AbsPath: target, Stat: statRecordFrom(targetFi)}, true, nil
}

// deferIntent decides the initial disposition for a destination the intent
// queue does not yet know about.
func deferIntent(action Action, allowUpdates bool, dest string, old, newSource *SourceInfo) (Intent, *SourceInfo, bool, error) {
	if newSource.AbsPath == dest {
		return nil, newSource, true, nil
	}

	existed := old != nil

	if old == nil {
		resolved, destExists, err := lstatResolved(action, dest)
		if err != nil {
			return nil, nil, false, err
		}

		if !destExists {
			intent := newIntent(action, dest, newSource, false)

			return intent, newSource, true, nil
		}

		old = resolved
		existed = true
	}

	chosen, permitted, noop, err := decideUpdate(action, allowUpdates, dest, old, newSource, func() ([]byte, error) {
		return readFile(newSource.AbsPath)
	})
	if err != nil {
		return nil, old, false, err
	}

	if !permitted {
		return nil, old, false, nil
	}

	if noop {
		if action == ActionMove {
			return newDedupMoveIntent(dest, newSource), chosen, true, nil
		}

		return nil, chosen, true, nil
	}

	if chosen == old {
		// Updates are allowed but the incoming source lost (older stime):
		// nothing to do at the filesystem level.
		return nil, chosen, true, nil
	}

	intent := newIntent(action, dest, chosen, existed)

	return intent, chosen, true, nil
}

// newIntent constructs the concrete Intent for a replace/create placement.
func newIntent(action Action, dest string, source *SourceInfo, existed bool) Intent {
	base := intentBase{cur: source, dest: dest, existedAtQueueTime: existed}

	switch action {
	case ActionMove:
		return &moveIntent{intentBase: base}
	case ActionCopy:
		return &copyIntent{intentBase: base}
	case ActionHardlink:
		return &hardlinkIntent{intentBase: base}
	case ActionSymlink:
		return &symlinkIntent{intentBase: base}
	default:
		return &copyIntent{intentBase: base}
	}
}

// intentBase holds the state shared by every concrete Intent: the source
// currently intended to be placed and whether something already occupied
// the destination when the intent was created.
type intentBase struct {
	cur                *SourceInfo
	dest               string
	existedAtQueueTime bool
	dedupOnly          bool
}

func (b *intentBase) ApproxSize() int      { return b.cur.ApproxSize() }
func (b *intentBase) FormatSource() string { return b.cur.AbsPath }

// updateFrom is the shared UpdateFrom body for move/copy/hardlink/symlink
// intents, parameterized only by action (for the data-comparison rule).
func (b *intentBase) updateFrom(action Action, allowUpdates bool, newSource *SourceInfo) (*SourceInfo, bool, error) {
	chosen, permitted, noop, err := decideUpdate(action, allowUpdates, b.dest, b.cur, newSource, func() ([]byte, error) {
		return readFile(newSource.AbsPath)
	})
	if err != nil {
		return nil, false, err
	}

	if !permitted {
		return b.cur, false, nil
	}

	b.dedupOnly = noop && action == ActionMove
	b.cur = chosen

	return chosen, true, nil
}

// dedupUnlink is shared between move's noop-content case (property 4) and
// its EXDEV copy+unlink fallback.
func dedupUnlink(path string, log *SyncLog) {
	log.AddPostSuccess(func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing duplicate source %s: %w", path, err)
		}

		return nil
	})
}

// ---------------------------------------------------------------------------
// move
// ---------------------------------------------------------------------------

type moveIntent struct {
	intentBase
	superseded []string // earlier sources a newer one replaced; unlinked once Run succeeds
}

func newDedupMoveIntent(dest string, source *SourceInfo) *moveIntent {
	return &moveIntent{intentBase: intentBase{cur: source, dest: dest, existedAtQueueTime: true, dedupOnly: true}}
}

func (m *moveIntent) Gerund() string { return "moving" }

func (m *moveIntent) UpdateFrom(allowUpdates bool, newSource *SourceInfo) (*SourceInfo, bool, error) {
	prev := m.cur

	chosen, permitted, err := m.updateFrom(ActionMove, allowUpdates, newSource)
	if err == nil && permitted && chosen != prev {
		m.superseded = append(m.superseded, prev.AbsPath)
	}

	return chosen, permitted, err
}

func (m *moveIntent) Run(dest string, log *SyncLog, dryRun bool) (*SourceInfo, error) {
	if m.dedupOnly {
		if !dryRun {
			dedupUnlink(m.cur.AbsPath, log)
		}

		return Lstat(dest)
	}

	if dryRun {
		return &SourceInfo{AbsPath: dest, Stat: m.cur.Stat}, nil
	}

	if err := ensureParentDir(dest, log); err != nil {
		return nil, err
	}

	err := os.Rename(m.cur.AbsPath, dest)
	if isExdev(err) {
		return m.runCrossDevice(dest, log)
	}

	if err != nil {
		return nil, classifyOSError(err, dest)
	}

	log.AddDirFsync(filepath.Dir(dest))

	for _, p := range m.superseded {
		dedupUnlink(p, log)
	}

	return Lstat(dest)
}

// runCrossDevice decomposes an EXDEV move into copy-to-temp + atomic
// rename + deferred source unlink.
func (m *moveIntent) runCrossDevice(dest string, log *SyncLog) (*SourceInfo, error) {
	if err := copyToDestViaTemp(m.cur.AbsPath, dest, log); err != nil {
		return nil, err
	}

	dedupUnlink(m.cur.AbsPath, log)

	for _, p := range m.superseded {
		dedupUnlink(p, log)
	}

	return Lstat(dest)
}

// ---------------------------------------------------------------------------
// copy
// ---------------------------------------------------------------------------

type copyIntent struct {
	intentBase
}

func (c *copyIntent) Gerund() string { return "copying" }

func (c *copyIntent) UpdateFrom(allowUpdates bool, newSource *SourceInfo) (*SourceInfo, bool, error) {
	return c.updateFrom(ActionCopy, allowUpdates, newSource)
}

func (c *copyIntent) Run(dest string, log *SyncLog, dryRun bool) (*SourceInfo, error) {
	if dryRun {
		return &SourceInfo{AbsPath: dest, Stat: c.cur.Stat}, nil
	}

	if err := ensureParentDir(dest, log); err != nil {
		return nil, err
	}

	if err := copyToDestViaTemp(c.cur.AbsPath, dest, log); err != nil {
		return nil, err
	}

	return Lstat(dest)
}

// ---------------------------------------------------------------------------
// hardlink
// ---------------------------------------------------------------------------

type hardlinkIntent struct {
	intentBase
}

func (h *hardlinkIntent) Gerund() string { return "hardlinking" }

func (h *hardlinkIntent) UpdateFrom(allowUpdates bool, newSource *SourceInfo) (*SourceInfo, bool, error) {
	return h.updateFrom(ActionHardlink, allowUpdates, newSource)
}

func (h *hardlinkIntent) Run(dest string, log *SyncLog, dryRun bool) (*SourceInfo, error) {
	if dryRun {
		return &SourceInfo{AbsPath: dest, Stat: h.cur.Stat}, nil
	}

	if err := ensureParentDir(dest, log); err != nil {
		return nil, err
	}

	tmp := tempSiblingPath(dest)
	if err := os.Link(h.cur.AbsPath, tmp); err != nil {
		return nil, classifyOSError(err, dest)
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)

		return nil, classifyOSError(err, dest)
	}

	log.AddDirFsync(filepath.Dir(dest))

	return Lstat(dest)
}

// ---------------------------------------------------------------------------
// symlink
// ---------------------------------------------------------------------------

type symlinkIntent struct {
	intentBase
}

func (s *symlinkIntent) Gerund() string { return "symlinking" }

func (s *symlinkIntent) UpdateFrom(allowUpdates bool, newSource *SourceInfo) (*SourceInfo, bool, error) {
	return s.updateFrom(ActionSymlink, allowUpdates, newSource)
}

func (s *symlinkIntent) Run(dest string, log *SyncLog, dryRun bool) (*SourceInfo, error) {
	if dryRun {
		return &SourceInfo{AbsPath: dest, Stat: s.cur.Stat}, nil
	}

	if err := ensureParentDir(dest, log); err != nil {
		return nil, err
	}

	tmp := tempSiblingPath(dest)
	if err := os.Symlink(s.cur.AbsPath, tmp); err != nil {
		return nil, classifyOSError(err, dest)
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)

		return nil, classifyOSError(err, dest)
	}

	log.AddDirFsync(filepath.Dir(dest))

	fi, err := os.Lstat(dest)
	if err != nil {
		return nil, wrapFatal(fmt.Errorf("lstat %s after symlink: %w", dest, err))
	}

	return &SourceInfo{AbsPath: dest, Stat: statRecordFrom(fi)}, nil
}

// ---------------------------------------------------------------------------
// write (the file-write-from-bytes variant)
// ---------------------------------------------------------------------------

// writeIntent places raw content that does not yet exist as an on-disk
// file — the producer side of the `import` command.
type writeIntent struct {
	content []byte
	stime   int64
	source  string // display string for FormatSource/logging
}

func newWriteIntent(content []byte, stime int64, source string) *writeIntent {
	return &writeIntent{content: content, stime: stime, source: source}
}

func (w *writeIntent) ApproxSize() int      { return approxSourceInfoOverhead + len(w.content) }
func (w *writeIntent) FormatSource() string { return w.source }
func (w *writeIntent) Gerund() string       { return "writing" }

func (w *writeIntent) UpdateFrom(_ bool, newSource *SourceInfo) (*SourceInfo, bool, error) {
	// write intents are only created directly by Engine.EmitBytes, which
	// never re-targets an existing writeIntent with a SourceInfo-based
	// new source; a second EmitBytes call for the same key is handled by
	// the engine re-invoking EmitBytes's own dedup check instead.
	return newSource, true, nil
}

func (w *writeIntent) Run(dest string, log *SyncLog, dryRun bool) (*SourceInfo, error) {
	if dryRun {
		return &SourceInfo{AbsPath: dest}, nil
	}

	if err := ensureParentDir(dest, log); err != nil {
		return nil, err
	}

	tmp := tempSiblingPath(dest)

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec // archive files are not secrets
	if err != nil {
		return nil, classifyOSError(err, dest)
	}

	if _, err := f.Write(w.content); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)

		return nil, classifyOSError(err, tmp)
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)

		return nil, classifyOSError(err, dest)
	}

	log.AddDataFsync(f)
	log.AddDirFsync(filepath.Dir(dest))

	return Lstat(dest)
}

// ---------------------------------------------------------------------------
// shared filesystem helpers
// ---------------------------------------------------------------------------

func ensureParentDir(dest string, log *SyncLog) error {
	dir := filepath.Dir(dest)

	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // archive directories are not secrets
		return classifyOSError(err, dir)
	}

	log.AddDirFsync(dir)

	return nil
}

func tempSiblingPath(dest string) string {
	return dest + ".organize-" + uuid.NewString() + ".part"
}

// copyToDestViaTemp copies srcPath's content to a temp file beside dest,
// queues its fsync, and atomically renames it onto dest.
func copyToDestViaTemp(srcPath, dest string, log *SyncLog) error {
	src, err := os.Open(srcPath) //nolint:gosec // archive files are not secrets
	if err != nil {
		return classifyOSError(err, srcPath)
	}
	defer src.Close()

	tmp := tempSiblingPath(dest)

	dst, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec
	if err != nil {
		return classifyOSError(err, dest)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(tmp)

		return classifyOSError(err, srcPath)
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = dst.Close()
		_ = os.Remove(tmp)

		return classifyOSError(err, dest)
	}

	log.AddDataFsync(dst)

	return nil
}

func isExdev(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

// classifyOSError wraps an OS error. ENAMETOOLONG and an
// unexpected EEXIST are safety failures and are always
// fatal. Everything else (disk full, permission denied, source vanished
// mid-run, ...) is left as a plain record-local failure, so the
// `errors` policy (fail/skip/ignore) around the whole Emit call still
// gets to decide its fate — see flush.go's executeIntent.
func classifyOSError(err error, path string) error {
	if errors.Is(err, syscall.ENAMETOOLONG) {
		return wrapFatal(fmt.Errorf("%w: %s", ErrNameTooLong, path))
	}

	if errors.Is(err, syscall.EEXIST) {
		return wrapFatal(fmt.Errorf("%s: unexpected EEXIST: %w", path, err))
	}

	return fmt.Errorf("%s: %w", path, err)
}
