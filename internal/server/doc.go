// Package server implements the development customer API server.
//
// This is the backend the TUI and CLI talk to when no real deployment is
// available: an in-memory customer store behind the same REST surface and
// pagination envelope the production API serves. It exists for local
// development, demos, and end-to-end testing; nothing here persists across
// restarts.
//
// # Endpoints
//
// All endpoints are mounted under a configurable prefix (default /api):
//
//	GET  /customers/        list customers; ?search= filters, ?page= pages
//	POST /customers/        create a customer, echoing back the stored record
//	GET  /customers/{id}/   fetch one customer
//	PUT  /customers/{id}/   update a customer
//	GET  /ws/customers      websocket change feed
//
// List responses use the count/next/previous/results envelope. The cursor
// URLs in next and previous are rooted paths including the mount prefix, so
// clients can follow them against the same host without rewriting.
//
// # Change Feed
//
// Every create and update is broadcast to websocket subscribers as a JSON
// change event carrying the action and the full stored record. Slow or
// disconnected subscribers are dropped; the feed never blocks a mutation.
//
// # Seeding
//
// The store can be populated at startup from a YAML fixture:
//
//	customers:
//	  - name: Jane Doe
//	    email: jane@example.com
//	    company: Acme Ltd
//	    total_orders: 4
//	    total_spent: "120.50"
//
// # Discovery
//
// With announcement enabled the server advertises itself over mDNS using
// the discovery package's service type, so clients on the same network can
// find it without configuration.
package server
