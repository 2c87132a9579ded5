// Package organize implements the bounded-memory, deferred, batching
// file-placement engine that is the core of hoardy-web: given a stream of
// (source, metadata) pairs, it renames/moves/copies/hardlinks/symlinks each
// one to a path derived from its metadata, deduplicating identical content
// and refusing unsafe overwrites.
package organize

import (
	"fmt"
	"time"
)

// Action selects which intent family Emit creates for new destinations.
type Action int

// Action values, matching the `action` config option.
const (
	ActionMove Action = iota
	ActionCopy
	ActionHardlink
	ActionSymlink
)

func (a Action) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionCopy:
		return "copy"
	case ActionHardlink:
		return "hardlink"
	case ActionSymlink:
		return "symlink"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ParseAction parses the `action` config/flag value.
func ParseAction(s string) (Action, error) {
	switch s {
	case "move":
		return ActionMove, nil
	case "copy":
		return ActionCopy, nil
	case "hardlink":
		return ActionHardlink, nil
	case "symlink":
		return ActionSymlink, nil
	default:
		return 0, fmt.Errorf("unknown action %q (want move, copy, hardlink, or symlink)", s)
	}
}

// ErrorPolicy selects how Emit reacts to a record-local failure.
type ErrorPolicy int

// ErrorPolicy values, matching the `errors` config option.
const (
	ErrorFail ErrorPolicy = iota
	ErrorSkip
	ErrorIgnore
)

func (p ErrorPolicy) String() string {
	switch p {
	case ErrorFail:
		return "fail"
	case ErrorSkip:
		return "skip"
	case ErrorIgnore:
		return "ignore"
	default:
		return fmt.Sprintf("ErrorPolicy(%d)", int(p))
	}
}

// ParseErrorPolicy parses the `errors` config/flag value.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch s {
	case "fail":
		return ErrorFail, nil
	case "skip":
		return ErrorSkip, nil
	case "ignore":
		return ErrorIgnore, nil
	default:
		return 0, fmt.Errorf("unknown errors policy %q (want fail, skip, or ignore)", s)
	}
}

// approxSourceInfoOverhead is the fixed cost per SourceInfo attributed to
// the stat record and bookkeeping, on top of the path itself.
const approxSourceInfoOverhead = 128

// StatRecord is the subset of os.FileInfo/syscall.Stat_t the engine needs
// to decide inode equality (samestat) and symlink/regular-file disposition.
// It is populated from os.Lstat, never os.Stat, so a symlink target is
// visible to the caller rather than silently followed.
type StatRecord struct {
	Dev     uint64
	Ino     uint64
	Size    int64
	ModTime time.Time
	Mode    uint32 // os.FileMode bits, including os.ModeSymlink
}

// IsSymlink reports whether the stat'd path is itself a symlink.
func (s StatRecord) IsSymlink() bool {
	return s.Mode&uint32(modeSymlinkBit) != 0
}

// sameStat reports whether two stat records describe the same inode on the
// same device. This is the sole source of truth for "this is the same
// file"; mtimes and sizes are never compared for identity.
func sameStat(a, b StatRecord) bool {
	return a.Dev == b.Dev && a.Ino == b.Ino
}

// SourceInfo identifies the file currently believed to live on disk at some
// path. It is produced by the walker, synthesized from an existing target
// file during intent setup, or returned by a successful Intent.Run.
type SourceInfo struct {
	AbsPath     string
	Stat        StatRecord
	CachedStime *int64
}

// ApproxSize estimates the memory footprint of a SourceInfo for the
// engine's memory accounting.
func (s *SourceInfo) ApproxSize() int {
	if s == nil {
		return 0
	}

	return approxSourceInfoOverhead + len(s.AbsPath)
}

// Reqres is the opaque metadata the engine passes through to the path
// formatter. Concrete reqres parsing lives outside this package; tests
// and minor producers use StaticReqres below.
type Reqres interface {
	// Stime returns the source-time used to compare "newer" records.
	Stime() int64
	// FormatSource returns a display string for logs.
	FormatSource() string
	// Field returns the named template field's string value, if the
	// metadata has one. Used by the path formatter (component A).
	Field(name string) (string, bool)
}

// StaticReqres is a minimal in-memory Reqres, used by tests and by the
// `import` command's metadata reader.
type StaticReqres struct {
	StimeValue  int64
	Source      string
	FieldValues map[string]string
}

// Stime implements Reqres.
func (r *StaticReqres) Stime() int64 { return r.StimeValue }

// FormatSource implements Reqres.
func (r *StaticReqres) FormatSource() string { return r.Source }

// Field implements Reqres.
func (r *StaticReqres) Field(name string) (string, bool) {
	v, ok := r.FieldValues[name]

	return v, ok
}
