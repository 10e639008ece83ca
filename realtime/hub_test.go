package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// newTestConn dials a throwaway websocket server and returns the server-side
// connection, which is what the hub holds in production.
func newTestConn(t *testing.T) *websocket.Conn {
	t.Helper()

	conns := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return <-conns
}

func TestRegisterAndSend(t *testing.T) {
	hub := NewHub()
	c := NewClient(7, newTestConn(t))
	hub.Register(c)

	if !hub.IsOnline(7) {
		t.Fatal("user 7 should be online")
	}
	if hub.OnlineCount() != 1 {
		t.Fatalf("online count = %d", hub.OnlineCount())
	}
	if !hub.Send(7, EventReceiveMessage, "hello") {
		t.Error("send to an online user should enqueue")
	}
	if hub.Send(8, EventReceiveMessage, "hello") {
		t.Error("send to an offline user should report false")
	}
}

func TestRegisterLastConnectionWins(t *testing.T) {
	hub := NewHub()
	first := NewClient(7, newTestConn(t))
	second := NewClient(7, newTestConn(t))

	hub.Register(first)
	hub.Register(second)

	if hub.OnlineCount() != 1 {
		t.Fatalf("online count = %d, reconnect must replace", hub.OnlineCount())
	}
	if first.Enqueue(EventReceiveMessage, "x") {
		t.Error("the replaced connection should be closed")
	}
	if !second.Enqueue(EventReceiveMessage, "x") {
		t.Error("the fresh connection should accept frames")
	}
}

func TestUnregisterStaleConnection(t *testing.T) {
	hub := NewHub()
	first := NewClient(7, newTestConn(t))
	second := NewClient(7, newTestConn(t))

	hub.Register(first)
	hub.Register(second)

	// the old connection's deferred cleanup runs after the reconnect
	hub.Unregister(first)
	if !hub.IsOnline(7) {
		t.Fatal("a stale disconnect must not evict the fresh connection")
	}

	hub.Unregister(second)
	if hub.IsOnline(7) {
		t.Fatal("user 7 should be offline")
	}
}

func TestEnqueueDropsWhenBufferFull(t *testing.T) {
	c := NewClient(7, newTestConn(t))

	// no WritePump draining, so the buffer fills up
	for i := 0; i < sendBufferSize; i++ {
		if !c.Enqueue(EventReceiveMessage, i) {
			t.Fatalf("frame %d should fit in the buffer", i)
		}
	}
	if c.Enqueue(EventReceiveMessage, "overflow") {
		t.Error("a full buffer must drop, not block")
	}
}

func TestHubConcurrentAccess(t *testing.T) {
	hub := NewHub()
	conn := newTestConn(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := NewClient(uint(i), conn)
			hub.Register(c)
			hub.Send(uint(i), EventUserTyping, nil)
			hub.IsOnline(uint(i))
			hub.Unregister(c)
		}()
	}
	wg.Wait()

	if hub.OnlineCount() != 0 {
		t.Fatalf("online count = %d after all unregistered", hub.OnlineCount())
	}
}
