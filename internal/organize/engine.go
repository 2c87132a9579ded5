package organize

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
)

// Options configures an Engine, one field per `organize` config knob.
type Options struct {
	Action       Action
	AllowUpdates bool
	DryRun       bool
	Quiet        bool
	Errors       ErrorPolicy

	// Terminator is appended to each reported destination path. A nil slice
	// disables reporting entirely.
	Terminator []byte

	MaxSeen     int
	MaxCached   int
	MaxDeferred int
	MaxBatched  int
	MaxMemory   int64 // bytes, already converted from the MiB config value

	// Lazy sets every budget above to +∞ (math.MaxInt / MaxInt64), so flush
	// only ever drains on Close.
	Lazy bool

	OutputFormat string
	Destination  string
}

const infiniteBudget = int(^uint(0) >> 1)

func (o Options) maxSeen() int {
	if o.Lazy {
		return infiniteBudget
	}

	return o.MaxSeen
}

func (o Options) maxCached() int {
	if o.Lazy {
		return infiniteBudget
	}

	return o.MaxCached
}

func (o Options) maxDeferred() int {
	if o.Lazy {
		return infiniteBudget
	}

	return o.MaxDeferred
}

func (o Options) maxBatched() int {
	if o.Lazy {
		return infiniteBudget
	}

	return o.MaxBatched
}

func (o Options) maxMemory() int64 {
	if o.Lazy {
		return int64(^uint64(0) >> 1)
	}

	return o.MaxMemory
}

// Engine is the bounded-memory, deferred, batching file-placement
// pipeline. It owns all of its state exclusively; there is no concurrency
// inside it, and throughput comes from batching rather than threads.
type Engine struct {
	opts      Options
	formatter *Formatter

	seen    *SeenCounter
	cache   *SourceCache
	intents *IntentQueue
	syncLog *SyncLog

	consumption int

	report  io.Writer
	log     *slog.Logger
	actions ActionLogger

	finished bool
}

// ActionLogger receives one line per planned placement on the logging
// channel, in the "<gerund>: `source` -> `dest`" shape. The engine calls it
// only when Quiet is off; a nil ActionLogger falls back to the structured
// logger.
type ActionLogger interface {
	Action(gerund, source, dest string)
}

// SetActionLogger installs the logging-channel writer for per-action lines.
func (e *Engine) SetActionLogger(l ActionLogger) { e.actions = l }

// NewEngine constructs an Engine. report may be nil when Options.Terminator
// is nil (reporting disabled); log may be nil to discard log lines (callers
// normally pass a slog.Logger writing to stderr, per the CLI's logging
// channel).
func NewEngine(opts Options, report io.Writer, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &Engine{
		opts:      opts,
		formatter: NewFormatter(filepath.Join(opts.Destination, opts.OutputFormat)),
		report:    report,
		log:       log,
	}

	e.seen = NewSeenCounter(e.account)
	e.cache = NewSourceCache(e.account)
	e.intents = NewIntentQueue(e.account)
	e.syncLog = NewSyncLog()

	return e
}

func (e *Engine) account(delta int) { e.consumption += delta }

// Consumption returns the current memory account, for tests asserting
// property 1 (memory accounting).
func (e *Engine) Consumption() int { return e.consumption }

// recomputeConsumption walks every live collection and sums approx_size(),
// the reference computation property 1's tests check against Consumption.
func (e *Engine) recomputeConsumption() int {
	total := 0

	for _, k := range e.seen.m.Keys() {
		total += len(k)
	}

	for _, k := range e.cache.m.Keys() {
		v, _ := e.cache.m.Get(k)
		total += v.ApproxSize()
	}

	for _, k := range e.intents.m.Keys() {
		v, _ := e.intents.m.Get(k)
		total += v.ApproxSize()
	}

	return total
}

// CheckInvariants recomputes the memory account from scratch and compares
// it against the live running total. The tests call it after each
// operation; the CLI does not.
func (e *Engine) CheckInvariants() error {
	if got, want := e.consumption, e.recomputeConsumption(); got != want {
		return fmt.Errorf("%w: running total %d, recomputed %d", ErrMemoryAccountingDrift, got, want)
	}

	return nil
}

// Emit places source at a destination derived from metadata, retrying
// with an incremented collision counter until a destination accepts it.
func (e *Engine) Emit(ctx context.Context, source *SourceInfo, metadata Reqres) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	source = withStime(source, metadata.Stime())

	baseKey, err := e.formatter.BaseKey(metadata)
	if err != nil {
		return wrapFatal(err)
	}

	var prev string

	havePrev := false

	for {
		num := e.seen.Count(baseKey)

		dest, err := e.formatter.Expand(metadata, num)
		if err != nil {
			return wrapFatal(err)
		}

		old, _ := e.cache.Pop(dest)

		var (
			intent    Intent
			updated   *SourceInfo
			permitted bool
		)

		var refusal error

		if queued, ok := e.intents.Pop(dest); ok {
			updated, permitted, refusal = queued.UpdateFrom(e.opts.AllowUpdates, source)
			intent = queued
		} else {
			intent, updated, permitted, refusal = deferIntent(e.opts.Action, e.opts.AllowUpdates, dest, old, source)
		}

		// A genuine I/O failure (as opposed to a retry-eligible
		// allow_updates refusal) is always wrapped fatal and propagates
		// immediately: retrying with a new `num` cannot fix a read error.
		if refusal != nil && classify(refusal) == TierFatal {
			return refusal
		}

		if intent != nil {
			e.intents.Set(dest, intent)
		}

		if updated != nil {
			e.cache.Set(dest, updated)
		}

		if permitted {
			if intent == nil && e.report != nil {
				if err := e.reportDest(dest); err != nil {
					return wrapFatal(err)
				}
			}

			break
		}

		if havePrev && dest == prev {
			// The retry loop is stuck: the same destination came back
			// twice. If the template never varies with `num`, that's the
			// root cause regardless of why permitted was false (S4); only
			// surface the allow_updates diagnostic when the template does
			// vary and the destination is still, genuinely, occupied.
			if !e.formatter.HasNum() {
				return wrapFatal(pathError(ErrVarianceHelp, dest))
			}

			return wrapFatal(refusal)
		}

		prev = dest
		havePrev = true
	}

	if !e.opts.Lazy {
		return e.flush(ctx, false)
	}

	return nil
}

// EmitBytes is the write-from-bytes producer entry point used by the
// `import` command: the content is supplied directly instead of already
// living at an on-disk source path. It draws a single `num` from the seen
// counter and, unlike Emit, does not retry with the next one: a
// destination already holding different content is refused unless
// allow_updates is set, in which case it is replaced without comparing
// stimes.
func (e *Engine) EmitBytes(ctx context.Context, content []byte, metadata Reqres) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	baseKey, err := e.formatter.BaseKey(metadata)
	if err != nil {
		return wrapFatal(err)
	}

	num := e.seen.Count(baseKey)

	dest, err := e.formatter.Expand(metadata, num)
	if err != nil {
		return wrapFatal(err)
	}

	old, _ := e.cache.Pop(dest)

	if old == nil {
		resolved, exists, lerr := lstatResolved(e.opts.Action, dest)
		if lerr != nil {
			return lerr
		}

		if exists {
			old = resolved
		}
	}

	if old != nil {
		existing, rerr := readFile(old.AbsPath)
		if rerr == nil && bytes.Equal(existing, content) {
			e.cache.Set(dest, old)

			if e.report != nil {
				return wrapFatal(e.reportDest(dest))
			}

			return nil
		}

		if !e.opts.AllowUpdates {
			return wrapFatal(pathError(ErrUpdatesNotAllowed, dest))
		}
	}

	intent := newWriteIntent(content, metadata.Stime(), metadata.FormatSource())
	e.intents.Set(dest, intent)

	if !e.opts.Lazy {
		return e.flush(ctx, false)
	}

	return nil
}

func (e *Engine) reportDest(dest string) error {
	if _, err := io.WriteString(e.report, dest); err != nil {
		return err
	}

	if len(e.opts.Terminator) > 0 {
		if _, err := e.report.Write(e.opts.Terminator); err != nil {
			return err
		}
	}

	return nil
}

// Close performs the final flush, draining every queued intent, and must
// be called on every exit path, including cancellation. Idempotent.
func (e *Engine) Close(ctx context.Context) error {
	if e.finished {
		return nil
	}

	e.finished = true

	return e.flush(ctx, true)
}
