package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"backoffice/internal/api"
	"backoffice/internal/logging"
)

// Handler serves the customer REST API and the change feed under a single
// path prefix.
type Handler struct {
	store    *Store
	hub      *Hub
	basePath string
}

// NewHandler creates the API handler. basePath is the mount prefix used in
// pagination cursor URLs, e.g. "/api".
func NewHandler(store *Store, hub *Hub, basePath string) *Handler {
	return &Handler{store: store, hub: hub, basePath: basePath}
}

// Routes builds the chi router for the handler.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/customers/", h.listCustomers)
	r.Post("/customers/", h.createCustomer)
	r.Get("/customers/{id}/", h.getCustomer)
	r.Put("/customers/{id}/", h.updateCustomer)
	r.Get(api.WatchPath, h.hub.HandleSubscribe)

	return r
}

// requestLogger logs one line per request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// listCustomers serves GET /customers/ with optional search and page query
// parameters, in the count/next/previous/results pagination envelope.
func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusNotFound, "invalid page")
			return
		}
		page = n
	}

	result := h.store.List(search, page)

	envelope := api.CustomerPage{
		Count:   result.Total,
		Results: result.Results,
	}
	if result.NextPage != 0 {
		u := h.pageURL(search, result.NextPage)
		envelope.Next = &u
	}
	if result.PrevPage != 0 {
		u := h.pageURL(search, result.PrevPage)
		envelope.Previous = &u
	}

	writeJSON(w, http.StatusOK, envelope)
}

// getCustomer serves GET /customers/{id}/.
func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.customerID(w, r)
	if !ok {
		return
	}
	customer, ok := h.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// createCustomer serves POST /customers/. The stored record is broadcast on
// the change feed and echoed back with its assigned identifier.
func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var payload api.Customer
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created := h.store.Create(payload)
	logging.Info("Customer created",
		zap.Int64("id", created.ID),
		zap.String("name", created.Name),
	)
	h.hub.Broadcast(api.ChangeEvent{Action: api.ChangeCreated, Customer: created})

	writeJSON(w, http.StatusCreated, created)
}

// updateCustomer serves PUT /customers/{id}/.
func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.customerID(w, r)
	if !ok {
		return
	}

	var payload api.Customer
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, ok := h.store.Update(id, payload)
	if !ok {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	logging.Info("Customer updated",
		zap.Int64("id", updated.ID),
		zap.String("name", updated.Name),
	)
	h.hub.Broadcast(api.ChangeEvent{Action: api.ChangeUpdated, Customer: updated})

	writeJSON(w, http.StatusOK, updated)
}

// customerID parses the id path parameter, writing a 404 on failure.
func (h *Handler) customerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusNotFound, "customer not found")
		return 0, false
	}
	return id, true
}

// pageURL builds a rooted cursor URL for a page of results. The base path
// is included so clients can resolve the cursor against the server host.
func (h *Handler) pageURL(search string, page int) string {
	values := url.Values{}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	if search != "" {
		values.Set("search", search)
	}
	u := h.basePath + "/customers/"
	if len(values) > 0 {
		u += "?" + values.Encode()
	}
	return u
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
