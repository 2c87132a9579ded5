package report

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// WSMirror mirrors completed destination paths to every connected
// websocket client, for the optional `--report-ws` reporting-channel
// mirror. It is not
// part of the engine's durability contract — the stdout Channel remains
// the source of truth; WSMirror is a best-effort live tail for external
// tooling (e.g. a dashboard watching an in-progress organize run).
type WSMirror struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewWSMirror creates an empty WSMirror.
func NewWSMirror() *WSMirror {
	return &WSMirror{clients: make(map[*websocket.Conn]struct{})}
}

// Handler returns an http.Handler that accepts a websocket connection and
// registers it to receive future Broadcast calls until it disconnects.
func (m *WSMirror) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}

		m.mu.Lock()
		m.clients[conn] = struct{}{}
		m.mu.Unlock()

		defer m.remove(conn)

		// Block until the client disconnects; this handler only ever
		// sends, via Broadcast, so reads exist solely to detect closure.
		for {
			if _, _, err := conn.Read(r.Context()); err != nil {
				return
			}
		}
	})
}

// Serve starts an HTTP listener at addr (e.g. "127.0.0.1:8089") whose only
// route accepts websocket clients for this mirror. The listener shuts down
// when ctx is canceled; listen errors are dropped, consistent with the
// mirror's best-effort contract.
func (m *WSMirror) Serve(ctx context.Context, addr string) {
	srv := &http.Server{Addr: addr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	go func() { _ = srv.ListenAndServe() }()
}

func (m *WSMirror) remove(conn *websocket.Conn) {
	m.mu.Lock()
	delete(m.clients, conn)
	m.mu.Unlock()

	_ = conn.Close(websocket.StatusNormalClosure, "")
}

// Broadcast sends dest to every currently connected client. Errors from
// individual clients are ignored — a slow or gone dashboard must never
// slow down or fail an organize run.
func (m *WSMirror) Broadcast(ctx context.Context, dest string) {
	m.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(m.clients))

	for c := range m.clients {
		conns = append(conns, c)
	}
	m.mu.Unlock()

	for _, c := range conns {
		_ = c.Write(ctx, websocket.MessageText, []byte(dest))
	}
}
