package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const mockListResponse = `{
	"count": 3,
	"next": "/customers/?page=2",
	"previous": null,
	"results": [
		{"id": 1, "name": "Ada Lovelace", "email": "ada@acme.test", "phone": "+254700000001", "company": "Acme", "source": "referral", "total_orders": 4, "total_spent": "1200.50", "is_active": true},
		{"id": 2, "name": "Grace Hopper", "email": "grace@navy.test", "phone": "", "company": "Navy", "source": "web", "total_orders": 0, "total_spent": 0, "is_active": false}
	]
}`

func TestList(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, mockListResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	page, err := client.List(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if gotPath != "/customers/" {
		t.Errorf("request path = %s, want /customers/", gotPath)
	}
	if page.Count != 3 {
		t.Errorf("Count = %d, want 3", page.Count)
	}
	if len(page.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(page.Results))
	}
	if !page.HasNext() {
		t.Error("HasNext() = false, want true")
	}
	if page.HasPrevious() {
		t.Error("HasPrevious() = true, want false")
	}
	if page.Results[0].Name != "Ada Lovelace" {
		t.Errorf("Results[0].Name = %s, want Ada Lovelace", page.Results[0].Name)
	}
}

func TestListSearchTerm(t *testing.T) {
	var gotSearch string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSearch = r.URL.Query().Get("search")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"count": 0, "next": null, "previous": null, "results": []}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	page, err := client.List(context.Background(), ListOptions{Search: "acme corp"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if gotSearch != "acme corp" {
		t.Errorf("search param = %q, want %q", gotSearch, "acme corp")
	}
	if page.Results == nil {
		t.Error("Results should be non-nil for empty lists")
	}
}

func TestFetchPageUsesCursorVerbatim(t *testing.T) {
	var gotURI string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"count": 3, "next": null, "previous": "/customers/?search=x", "results": []}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	// Relative cursor resolves against the base.
	if _, err := client.FetchPage(context.Background(), "/customers/?page=2&search=x"); err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if gotURI != "/customers/?page=2&search=x" {
		t.Errorf("request URI = %s, want /customers/?page=2&search=x", gotURI)
	}

	// Absolute cursor is fetched as-is.
	if _, err := client.FetchPage(context.Background(), server.URL+"/customers/?page=3"); err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if gotURI != "/customers/?page=3" {
		t.Errorf("request URI = %s, want /customers/?page=3", gotURI)
	}
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/customers/42/" {
			t.Errorf("request path = %s, want /customers/42/", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": 42, "name": "Ada Lovelace", "total_spent": "99.99", "is_active": true}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	record, err := client.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.ID != 42 {
		t.Errorf("ID = %d, want 42", record.ID)
	}
	if record.TotalSpent.String() != "99.99" {
		t.Errorf("TotalSpent = %s, want 99.99", record.TotalSpent)
	}
}

func TestGetNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "Not found."}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Get(context.Background(), 999)
	if err == nil {
		t.Fatal("Get should fail for missing record")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
}

func TestCreateOmitsServerOwnedFields(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := jsonDecode(r, &body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": 7, "name": "New Co", "total_spent": "0", "is_active": true}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	record, err := client.Create(context.Background(), Customer{Name: "New Co", IsActive: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if record.ID != 7 {
		t.Errorf("ID = %d, want 7", record.ID)
	}
	for _, field := range []string{"id", "total_orders", "total_spent"} {
		if _, present := body[field]; present {
			t.Errorf("request body should not carry %q", field)
		}
	}
}

func TestUpdate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if r.URL.Path != "/customers/5/" {
			t.Errorf("request path = %s, want /customers/5/", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": 5, "name": "Renamed", "total_spent": "10", "is_active": false}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	record, err := client.Update(context.Background(), Customer{ID: 5, Name: "Renamed"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if record.Name != "Renamed" {
		t.Errorf("Name = %s, want Renamed", record.Name)
	}
}

func TestBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"count": 0, "next": null, "previous": null, "results": []}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetToken("sekrit")
	if _, err := client.List(context.Background(), ListOptions{}); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if gotAuth != "Bearer sekrit" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer sekrit")
	}
}

func TestAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.List(context.Background(), ListOptions{})
	if err == nil {
		t.Fatal("List should fail with 401")
	}
	if !IsAuth(err) {
		t.Errorf("IsAuth(%v) = false, want true", err)
	}
}

func TestNetworkError(t *testing.T) {
	// Point at a closed port.
	client := NewClient("http://127.0.0.1:1")
	client.SetTimeout(500 * time.Millisecond)

	_, err := client.List(context.Background(), ListOptions{})
	if err == nil {
		t.Fatal("List should fail against a closed port")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Kind != KindNetwork && apiErr.Kind != KindTimeout {
		t.Errorf("Kind = %v, want network or timeout", apiErr.Kind)
	}
}

func TestDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>not json</html>`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.List(context.Background(), ListOptions{})
	if err == nil {
		t.Fatal("List should fail on a non-JSON body")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Kind != KindDecode {
		t.Errorf("Kind = %v, want %v", apiErr.Kind, KindDecode)
	}
}

func jsonDecode(r *http.Request, out any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(out)
}
