package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"backoffice/internal/api"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(hub.HandleSubscribe))
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial hub: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func TestBroadcastFromConcurrentMutations(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	conn := dialHub(t, hub)

	// Each mutation handler broadcasts on its own goroutine; the
	// per-connection write lock must serialize them onto the socket.
	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			hub.Broadcast(api.ChangeEvent{
				Action:   api.ChangeUpdated,
				Customer: api.Customer{ID: id, Name: "Grace"},
			})
		}(int64(i + 1))
	}
	wg.Wait()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	seen := make(map[int64]bool)
	for i := 0; i < writers; i++ {
		var event api.ChangeEvent
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("read event %d: %v", i, err)
		}
		if event.Action != api.ChangeUpdated {
			t.Errorf("event action = %q, want %q", event.Action, api.ChangeUpdated)
		}
		seen[event.Customer.ID] = true
	}
	if len(seen) != writers {
		t.Errorf("received %d distinct events, want %d", len(seen), writers)
	}
}

func TestBroadcastDropsClosedSubscriber(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	conn := dialHub(t, hub)
	conn.Close()

	// The reader goroutine notices the close; the subscriber count must
	// eventually reach zero and a broadcast must not reinstate it.
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("closed subscriber never dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast(api.ChangeEvent{Action: api.ChangeCreated})
	if n := hub.Subscribers(); n != 0 {
		t.Errorf("subscribers after broadcast = %d, want 0", n)
	}
}
