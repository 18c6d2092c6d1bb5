package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// fakeBackend records frames from stations and can push frames back
type fakeBackend struct {
	t        *testing.T
	mu       sync.Mutex
	received []string
	conns    []*websocket.Conn
	accepted chan struct{}
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	b := &fakeBackend{t: t, accepted: make(chan struct{}, 8)}
	srv := httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.t.Errorf("upgrade failed: %v", err)
		return
	}
	b.mu.Lock()
	b.conns = append(b.conns, conn)
	b.mu.Unlock()
	b.accepted <- struct{}{}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		b.mu.Lock()
		b.received = append(b.received, string(data))
		b.mu.Unlock()
	}
}

func (b *fakeBackend) frames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.received...)
}

func (b *fakeBackend) latest() *websocket.Conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conns[len(b.conns)-1]
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func waitAccepted(t *testing.T, b *fakeBackend) {
	t.Helper()
	select {
	case <-b.accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("backend never saw a connection")
	}
}

func TestChannelRoundTrip(t *testing.T) {
	backend, srv := newFakeBackend(t)

	ch, err := New(Config{URL: wsURL(srv), ReconnectInterval: 20 * time.Millisecond}, quietLogger(), quartz.NewReal())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ch.Run(ctx) }()
	waitAccepted(t, backend)

	require.Eventually(t, ch.Connected, time.Second, 5*time.Millisecond)

	require.NoError(t, ch.Send([]byte(`{"event":"game_add_player","cardId":"A1B2"}`)))
	require.Eventually(t, func() bool { return len(backend.frames()) == 1 }, time.Second, 5*time.Millisecond)
	assert.JSONEq(t, `{"event":"game_add_player","cardId":"A1B2"}`, backend.frames()[0])

	require.NoError(t, backend.latest().WriteMessage(websocket.TextMessage, []byte(`{"event":"game_start"}`)))

	var got []byte
	require.Eventually(t, func() bool {
		frame, ok := ch.TryReceive()
		if ok {
			got = frame
		}
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.JSONEq(t, `{"event":"game_start"}`, string(got))
}

func TestChannelReconnectsAndDeliversQueuedFrames(t *testing.T) {
	backend, srv := newFakeBackend(t)

	ch, err := New(Config{URL: wsURL(srv), ReconnectInterval: 20 * time.Millisecond}, quietLogger(), quartz.NewReal())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ch.Run(ctx) }()
	waitAccepted(t, backend)

	// drop the connection from the backend side
	require.NoError(t, backend.latest().Close())
	require.Eventually(t, func() bool { return !ch.Connected() }, time.Second, 5*time.Millisecond)

	require.NoError(t, ch.Send([]byte(`{"event":"game_update","action":"fold","amount":0,"cardId":"A1B2"}`)))

	waitAccepted(t, backend)
	require.Eventually(t, func() bool { return len(backend.frames()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, backend.frames()[0], `"fold"`)
}

func TestChannelSendNeverBlocks(t *testing.T) {
	ch, err := New(Config{URL: "ws://127.0.0.1:1/ws", BufferSize: 1}, quietLogger(), nil)
	require.NoError(t, err)

	require.NoError(t, ch.Send([]byte("one")))
	assert.ErrorIs(t, ch.Send([]byte("two")), ErrSendBufferFull)

	_, ok := ch.TryReceive()
	assert.False(t, ok)
	assert.False(t, ch.Connected())
}

func TestNewNormalizesScheme(t *testing.T) {
	ch, err := New(Config{URL: "http://table.local:3000/"}, quietLogger(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ws://table.local:3000/", ch.URL())

	_, err = New(Config{URL: "ftp://table.local"}, quietLogger(), nil)
	assert.Error(t, err)
}
