package report

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWSMirror_BroadcastReachesConnectedClient(t *testing.T) {
	mirror := NewWSMirror()

	srv := httptest.NewServer(mirror.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Give the server a moment to register the client before broadcasting.
	time.Sleep(50 * time.Millisecond)

	mirror.Broadcast(ctx, "dest/a.wrr")

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dest/a.wrr", string(data))
}

func TestWSMirror_BroadcastWithNoClientsIsNoop(t *testing.T) {
	mirror := NewWSMirror()

	assert.NotPanics(t, func() {
		mirror.Broadcast(context.Background(), "dest/a.wrr")
	})
}

func TestWSMirror_RemovesClientOnDisconnect(t *testing.T) {
	mirror := NewWSMirror()

	srv := httptest.NewServer(mirror.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	mirror.mu.Lock()
	before := len(mirror.clients)
	mirror.mu.Unlock()
	require.Equal(t, 1, before)

	conn.Close(websocket.StatusNormalClosure, "")

	assert.Eventually(t, func() bool {
		mirror.mu.Lock()
		defer mirror.mu.Unlock()

		return len(mirror.clients) == 0
	}, 2*time.Second, 20*time.Millisecond)
}
