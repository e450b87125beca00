// Package api provides an HTTP client for the backoffice customers API.
//
// The backend exposes a paginated collection of customer records:
//
//	GET  /customers/               list (first page)
//	GET  /customers/?search=<term> list, filtered server-side
//	GET  /customers/{id}/          single record
//	POST /customers/               create
//	PUT  /customers/{id}/          update
//
// List responses use the envelope {count, next, previous, results} where
// next and previous are opaque cursor URLs. A cursor already encodes the
// page and any search filter; FetchPage fetches it verbatim rather than
// reconstructing the query.
//
// # Usage Example
//
//	client := api.NewClient("http://localhost:8432/api")
//
//	page, err := client.List(ctx, api.ListOptions{Search: "acme"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if page.HasNext() {
//	    page, err = client.FetchPage(ctx, *page.Next)
//	}
//
// # Error Handling
//
// Every operation returns *APIError with a Kind classifying the failure
// (network, timeout, auth, not found, HTTP, decode). The client never
// retries; recovery policy belongs to the caller.
//
// # Change Feed
//
// Watch subscribes to the server's websocket change feed and delivers
// ChangeEvent values as records are created or updated. The feed is optional
// infrastructure for live refresh; all reads remain possible without it.
package api
