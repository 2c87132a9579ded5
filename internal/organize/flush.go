package organize

import (
	"context"
	"errors"
	"fmt"
)

// flush implements the flush controller: drain the three
// bounded collections in the mandated order, coalescing fsyncs through a
// single SyncLog, and reporting completed destinations only after they are
// durable.
func (e *Engine) flush(ctx context.Context, final bool) error {
	maxSeen, maxCached, maxDeferred, maxBatched, maxMemory := e.opts.maxSeen(), e.opts.maxCached(), e.opts.maxDeferred(), e.opts.maxBatched(), e.opts.maxMemory()

	if final {
		maxSeen, maxCached, maxDeferred, maxBatched = 0, 0, 0, 0
		maxMemory = 0
	}

	if !e.overBudget(maxSeen, maxCached, maxDeferred, maxMemory) {
		return nil
	}

	completed := make([]string, 0)

	// Step 2: drain the seen counter, executing any intent that was
	// already queued for a key before its base key is forgotten — doing
	// this in the opposite order would let a later placement compute a
	// stale `num` and overwrite a file the engine thinks is still pending.
	for e.seen.Len() > maxSeen || int64(e.consumption) > maxMemory {
		key, _, ok := e.seen.Pop()
		if !ok {
			break
		}

		if intent, ok := e.intents.Get(key); ok {
			e.intents.Pop(key)

			if err := e.executeIntent(ctx, key, intent, &completed); err != nil {
				return err
			}
		}
	}

	// Step 3: grace margin / hysteresis.
	if !final && e.intents.Len() <= maxDeferred+maxBatched && int64(e.consumption) <= maxMemory {
		maxDeferred += maxBatched
	}

	// Step 4: drain the intent queue.
	for e.intents.Len() > maxDeferred || int64(e.consumption) > maxMemory {
		dest, intent, ok := e.intents.PopOldest()
		if !ok {
			break
		}

		if err := e.executeIntent(ctx, dest, intent, &completed); err != nil {
			return err
		}
	}

	// Step 5: sync.
	if err := e.syncLog.Sync(); err != nil {
		return wrapFatal(err)
	}

	// Step 6: report completed destinations, then fsync the reporting
	// channel so downstream readers only ever see durably-placed content.
	if e.report != nil {
		for _, dest := range completed {
			if err := e.reportDest(dest); err != nil {
				return wrapFatal(err)
			}
		}

		if syncer, ok := e.report.(interface{ Sync() error }); ok {
			if err := syncer.Sync(); err != nil {
				return wrapFatal(err)
			}
		}
	}

	// Step 7: finish (post-success cleanups, e.g. EXDEV move's deferred unlink).
	if err := e.syncLog.Finish(); err != nil {
		return wrapFatal(err)
	}

	// Step 8: drain the source cache.
	for e.cache.Len() > maxCached || int64(e.consumption) > maxMemory {
		if _, _, ok := e.cache.PopOldest(); !ok {
			break
		}
	}

	return nil
}

func (e *Engine) overBudget(maxSeen, maxCached, maxDeferred int, maxMemory int64) bool {
	return e.seen.Len() > maxSeen ||
		e.cache.Len() > maxCached ||
		e.intents.Len() > maxDeferred ||
		int64(e.consumption) > maxMemory
}

// executeIntent runs one intent to completion. completed collects
// destinations whose report line is due only after the batch's fsyncs
// succeed, so a crash between
// execution and sync never causes a path to be reported as done before it
// is durable.
func (e *Engine) executeIntent(ctx context.Context, dest string, intent Intent, completed *[]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !e.opts.Quiet {
		if e.actions != nil {
			e.actions.Action(intent.Gerund(), intent.FormatSource(), dest)
		} else {
			e.log.Info("organizing", "source", intent.FormatSource(), "dest", dest)
		}
	}

	updated, err := intent.Run(dest, e.syncLog, e.opts.DryRun)
	if err != nil {
		switch classify(err) {
		case TierFatal:
			return err
		case TierRecordLocal:
			switch e.opts.Errors {
			case ErrorFail:
				return err
			case ErrorSkip:
				e.log.Warn("skipping after error", "dest", dest, "error", err)

				return nil
			case ErrorIgnore:
				return nil
			}
		}

		return err
	}

	if updated != nil {
		e.cache.Set(dest, updated)
	}

	*completed = append(*completed, dest)

	return nil
}

// ErrCanceled is the sentinel checkCanceled wraps a context cancellation
// in. It is deliberately not a fatalError. Emit, Close and the flush
// controller do not use it: on cancellation they return ctx.Err() as is.
var ErrCanceled = errors.New("organize: canceled")

// checkCanceled is a small helper callers can use between records, the
// same poll the walker performs between files and the flush controller
// performs before each intent execution.
func checkCanceled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrCanceled, ctx.Err())
	default:
		return nil
	}
}
