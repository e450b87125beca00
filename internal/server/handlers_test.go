package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"backoffice/internal/api"
)

func newTestServer(t *testing.T, store *Store) *httptest.Server {
	t.Helper()
	root := chi.NewRouter()
	root.Mount("/api", NewHandler(store, NewHub(), "/api").Routes())
	ts := httptest.NewServer(root)
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestListEnvelope(t *testing.T) {
	store := seedStore(t, "a", "b", "c")
	store.SetPageSize(2)
	ts := newTestServer(t, store)

	var page api.CustomerPage
	getJSON(t, ts.URL+"/api/customers/", &page)

	if page.Count != 3 || len(page.Results) != 2 {
		t.Fatalf("count %d, %d results; want 3 and 2", page.Count, len(page.Results))
	}
	if page.Next == nil || *page.Next != "/api/customers/?page=2" {
		t.Fatalf("next = %v, want /api/customers/?page=2", page.Next)
	}
	if page.Previous != nil {
		t.Errorf("previous = %v, want absent on page one", *page.Previous)
	}

	// The emitted cursor is followable against the same host.
	var second api.CustomerPage
	getJSON(t, ts.URL+*page.Next, &second)
	if len(second.Results) != 1 || second.Previous == nil {
		t.Errorf("page 2 = %d results, previous %v; want 1 result with a previous cursor",
			len(second.Results), second.Previous)
	}
}

func TestListSearchCarriedInCursors(t *testing.T) {
	store := NewStore()
	for i := 0; i < 3; i++ {
		store.Create(api.Customer{Name: fmt.Sprintf("Acme %d", i)})
	}
	store.Create(api.Customer{Name: "Other"})
	store.SetPageSize(2)
	ts := newTestServer(t, store)

	var page api.CustomerPage
	getJSON(t, ts.URL+"/api/customers/?search=acme", &page)

	if page.Count != 3 {
		t.Fatalf("count = %d, want only matching records counted", page.Count)
	}
	if page.Next == nil || !strings.Contains(*page.Next, "search=acme") {
		t.Errorf("next = %v, the search term must ride along in cursors", page.Next)
	}
}

func TestGetCustomer(t *testing.T) {
	ts := newTestServer(t, seedStore(t, "Ada"))

	var c api.Customer
	resp := getJSON(t, ts.URL+"/api/customers/1/", &c)
	if resp.StatusCode != http.StatusOK || c.Name != "Ada" {
		t.Errorf("status %d, name %q; want 200 and Ada", resp.StatusCode, c.Name)
	}

	resp = getJSON(t, ts.URL+"/api/customers/42/", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d for a missing id, want 404", resp.StatusCode)
	}

	resp = getJSON(t, ts.URL+"/api/customers/abc/", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d for a non-numeric id, want 404", resp.StatusCode)
	}
}

func TestCreateCustomer(t *testing.T) {
	store := NewStore()
	ts := newTestServer(t, store)

	body := bytes.NewBufferString(`{"name":"Jane","email":"jane@example.com","is_active":true}`)
	resp, err := http.Post(ts.URL+"/api/customers/", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var created api.Customer
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.ID != 1 || created.Name != "Jane" {
		t.Errorf("created = %+v, want id 1 and the posted fields", created)
	}
	if store.Count() != 1 {
		t.Errorf("store count = %d, want 1", store.Count())
	}
}

func TestUpdateCustomer(t *testing.T) {
	ts := newTestServer(t, seedStore(t, "Ada"))

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/customers/1/",
		bytes.NewBufferString(`{"name":"Ada Lovelace","is_active":true}`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var updated api.Customer
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Ada Lovelace" {
		t.Errorf("Name = %q, want the updated value", updated.Name)
	}
}

func TestChangeFeedBroadcastsMutations(t *testing.T) {
	store := NewStore()
	hub := NewHub()
	root := chi.NewRouter()
	root.Mount("/api", NewHandler(store, hub, "/api").Routes())
	feedServer := httptest.NewServer(root)
	defer feedServer.Close()

	wsURL := "ws" + strings.TrimPrefix(feedServer.URL, "http") + "/api" + api.WatchPath
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial change feed: %v", err)
	}
	defer conn.Close()

	// The handshake completes slightly before the hub registers the
	// subscriber; wait for registration so the broadcast cannot miss it.
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	body := bytes.NewBufferString(`{"name":"Jane"}`)
	resp, err := http.Post(feedServer.URL+"/api/customers/", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	var event api.ChangeEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read change event: %v", err)
	}
	if event.Action != api.ChangeCreated || event.Customer.Name != "Jane" {
		t.Errorf("event = %+v, want a created event carrying the record", event)
	}
}
