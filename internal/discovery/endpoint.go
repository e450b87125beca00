package discovery

import (
	"fmt"
	"time"
)

// Endpoint represents a discovered backoffice API server on the local network.
type Endpoint struct {
	// Instance is the advertised service instance name (e.g., "backoffice-dev")
	Instance string

	// Hostname is the mDNS hostname (e.g., "devbox.local")
	Hostname string

	// IP is the IPv4 address
	IP string

	// Port is the HTTP port
	Port int

	// Metadata contains additional mDNS TXT record data. The server
	// advertises "path=<api root>" so clients can build the base URL.
	Metadata map[string]string

	// DiscoveredAt is when the endpoint was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable description of the endpoint.
func (e *Endpoint) String() string {
	return fmt.Sprintf("backoffice API %q at %s:%d", e.Instance, e.IP, e.Port)
}

// BaseURL returns the API base URL for the endpoint, honoring an advertised
// "path" TXT record when present.
func (e *Endpoint) BaseURL() string {
	base := fmt.Sprintf("http://%s:%d", e.IP, e.Port)
	if path := e.GetMetadata("path"); path != "" && path != "/" {
		return base + path
	}
	return base
}

// GetMetadata retrieves a TXT record value by key, or "" if not found.
func (e *Endpoint) GetMetadata(key string) string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata[key]
}
