package report

import "context"

// Tee combines the stdout reporting Channel with an optional WSMirror, so
// the organize engine can write to a single io.Writer while still getting
// both the durable stdout stream and a best-effort live mirror.
type Tee struct {
	ch  *Channel
	ws  *WSMirror
	ctx context.Context //nolint:containedctx // bound at construction to the CLI command's run context
}

// NewTee wraps ch; ws may be nil to disable the mirror.
func NewTee(ctx context.Context, ch *Channel, ws *WSMirror) *Tee {
	return &Tee{ch: ch, ws: ws, ctx: ctx}
}

// Write implements io.Writer, writing through to the stdout channel and
// best-effort broadcasting the same bytes to the websocket mirror.
func (t *Tee) Write(p []byte) (int, error) {
	n, err := t.ch.Write(p)

	if t.ws != nil {
		t.ws.Broadcast(t.ctx, string(p))
	}

	return n, err
}

// Sync implements the engine's optional Sync() interface by delegating to
// the underlying Channel.
func (t *Tee) Sync() error {
	return t.ch.Sync()
}
