package organize

import (
	"errors"
	"fmt"
)

// Safety-failure sentinels. Each is wrapped with the offending path before
// being returned to the caller.
var (
	// ErrUpdatesNotAllowed is returned when a non-identical newer source
	// would overwrite an existing destination but allow_updates=false.
	ErrUpdatesNotAllowed = errors.New("destination already exists and updates are not allowed to prevent data loss")

	// ErrVarianceHelp is returned when the output template does not vary
	// with `num`, so the collision retry loop cannot find a fresh
	// destination for two distinct sources that collide on the same key.
	ErrVarianceHelp = errors.New("destination already exists (did you forget %(num)d in --output?)")

	// ErrSymlinkClash is returned when the action is not `symlink` but the
	// existing target at a destination is itself a symlink.
	ErrSymlinkClash = errors.New("destination exists and is a symlink, but action is not symlink")

	// ErrNameTooLong wraps ENAMETOOLONG with the offending path.
	ErrNameTooLong = errors.New("path too long")

	// ErrDestinationBusy names the invariant violation of a second intent
	// being queued for a destination that already has one. No code path in
	// this package returns it: Emit pops a destination's queued intent
	// before queuing another.
	ErrDestinationBusy = errors.New("organize: invariant violation: destination already has a queued intent")

	// ErrMemoryAccountingDrift is raised by tests (and, as a safety net, by
	// Engine.CheckInvariants) when the live memory account does not match
	// the sum of tracked collections.
	ErrMemoryAccountingDrift = errors.New("organize: invariant violation: memory accounting drift")
)

// ErrorTier classifies an error for the `errors` policy dispatch.
type ErrorTier int

// ErrorTier values.
const (
	// TierFatal errors abort the run regardless of the `errors` policy.
	// Engine invariant violations are always fatal.
	TierFatal ErrorTier = iota
	// TierRecordLocal errors are classified per the `errors` policy
	// (fail/skip/ignore).
	TierRecordLocal
)

// fatalError wraps an error to mark it as a TierFatal failure — an engine
// invariant violation or unrecoverable I/O condition that must never be
// silently dropped, no matter what the `errors` policy says.
type fatalError struct {
	err error
}

func (f *fatalError) Error() string { return f.err.Error() }
func (f *fatalError) Unwrap() error { return f.err }

func wrapFatal(err error) error {
	if err == nil {
		return nil
	}

	return &fatalError{err: err}
}

// classify returns the error's tier. Errors wrapped with wrapFatal are
// always TierFatal; everything else is a TierRecordLocal failure subject
// to the configured ErrorPolicy.
func classify(err error) ErrorTier {
	var fe *fatalError
	if errors.As(err, &fe) {
		return TierFatal
	}

	return TierRecordLocal
}

// pathError formats a diagnostic naming both the path and the violated
// rule.
func pathError(rule error, path string) error {
	return fmt.Errorf("%s: %w", path, rule)
}
