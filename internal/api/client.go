package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"backoffice/internal/logging"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// customersPath is the collection endpoint for customer records
	customersPath = "/customers/"
)

// Client is an HTTP client for the customers API.
//
// All operations take a context and return *APIError on failure. The client
// performs no automatic retries: a failed call surfaces immediately and the
// caller decides how to recover (the TUI's save-reconciliation cascade, for
// example, has its own explicit fallback order).
type Client struct {
	// BaseURL is the API root, without a trailing slash
	// (e.g. "http://localhost:8432/api").
	BaseURL string

	// Token is an optional bearer token sent with every request.
	Token string

	// HTTPClient is the underlying HTTP client.
	HTTPClient *http.Client

	tracer oteltrace.Tracer
}

// NewClient creates a customers API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		tracer:     otel.Tracer("backoffice/api"),
	}
}

// SetTimeout sets the HTTP request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.Token = token
}

// ListOptions controls a list query. The zero value fetches the first page
// with no filter.
type ListOptions struct {
	// Search filters the list server-side over name, email, and company.
	Search string
}

// List fetches the first page of customers, filtered by opts.Search when
// non-empty.
func (c *Client) List(ctx context.Context, opts ListOptions) (*CustomerPage, error) {
	u := c.BaseURL + customersPath
	if opts.Search != "" {
		u += "?search=" + url.QueryEscape(opts.Search)
	}

	var page CustomerPage
	if err := c.do(ctx, "customers.list", http.MethodGet, u, nil, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []Customer{}
	}
	return &page, nil
}

// FetchPage fetches a previously returned cursor URL verbatim. The cursor
// already encodes the page and any search filter, so no additional query
// parameters are applied. Relative cursors are resolved against BaseURL.
func (c *Client) FetchPage(ctx context.Context, cursor string) (*CustomerPage, error) {
	u, err := c.resolveCursor(cursor)
	if err != nil {
		return nil, &APIError{Kind: KindDecode, Message: "invalid cursor URL", Err: err}
	}

	var page CustomerPage
	if err := c.do(ctx, "customers.page", http.MethodGet, u, nil, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []Customer{}
	}
	return &page, nil
}

// Get fetches the single authoritative record for a customer by identifier.
func (c *Client) Get(ctx context.Context, id int64) (*Customer, error) {
	u := fmt.Sprintf("%s%s%d/", c.BaseURL, customersPath, id)

	var record Customer
	if err := c.do(ctx, "customers.get", http.MethodGet, u, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create registers a new customer and returns the record as stored by the
// backend, including its assigned identifier.
func (c *Client) Create(ctx context.Context, customer Customer) (*Customer, error) {
	u := c.BaseURL + customersPath

	var record Customer
	if err := c.do(ctx, "customers.create", http.MethodPost, u, writePayload(customer), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Update replaces an existing customer record and returns the stored result.
func (c *Client) Update(ctx context.Context, customer Customer) (*Customer, error) {
	u := fmt.Sprintf("%s%s%d/", c.BaseURL, customersPath, customer.ID)

	var record Customer
	if err := c.do(ctx, "customers.update", http.MethodPut, u, writePayload(customer), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// customerWrite is the request body for create/update. Identifier and
// aggregate fields are backend-owned and never sent.
type customerWrite struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Source   string `json:"source"`
	IsActive bool   `json:"is_active"`
}

func writePayload(c Customer) customerWrite {
	return customerWrite{
		Name:     c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		Company:  c.Company,
		Source:   c.Source,
		IsActive: c.IsActive,
	}
}

// resolveCursor turns a cursor reference into an absolute URL. The backend
// may return absolute URLs or rooted paths; either is accepted.
func (c *Client) resolveCursor(cursor string) (string, error) {
	ref, err := url.Parse(cursor)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return cursor, nil
	}
	base, err := url.Parse(c.BaseURL + "/")
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// do executes a single request and decodes the JSON response into out.
// A span is recorded per request when tracing is configured.
func (c *Client) do(ctx context.Context, op, method, rawURL string, body any, out any) error {
	ctx, span := c.tracer.Start(ctx, op, oteltrace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", rawURL),
	))
	defer span.End()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return c.fail(span, method, rawURL, newDecodeError("failed to encode request body", err))
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return c.fail(span, method, rawURL, &APIError{Kind: KindNetwork, Message: "failed to create request", Err: err})
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	logging.LogAPIRequest(method, rawURL)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return c.fail(span, method, rawURL, classifyTransportError("request failed", err))
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return c.fail(span, method, rawURL, newStatusError(resp.StatusCode,
			fmt.Sprintf("unexpected status code: %d", resp.StatusCode)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return c.fail(span, method, rawURL, newDecodeError("failed to decode response body", err))
		}
	}

	logging.LogAPIResponse(method, rawURL, resp.StatusCode, nil)
	return nil
}

// fail records the error on the span and the log, then returns it.
func (c *Client) fail(span oteltrace.Span, method, rawURL string, err *APIError) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Kind.String())
	logging.LogAPIResponse(method, rawURL, err.StatusCode, err)
	return err
}
