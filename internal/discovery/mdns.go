package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type advertised by backoffice API
	// servers.
	ServiceType = "_backoffice-api._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for endpoint discovery
	DefaultScanTimeout = 5 * time.Second
)

// Scanner handles mDNS discovery of backoffice API servers.
type Scanner struct {
	// Timeout is the maximum time to wait for discovery
	Timeout time.Duration
}

// NewScanner creates an mDNS scanner with default settings.
func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout}
}

// Scan discovers all backoffice API servers on the local network.
func (s *Scanner) Scan(ctx context.Context) ([]*Endpoint, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	endpoints := make([]*Endpoint, 0)
	done := make(chan struct{})

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		defer close(done)
		for entry := range entries {
			if endpoint := parseServiceEntry(entry); endpoint != nil {
				endpoints = append(endpoints, endpoint)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-done

	return endpoints, nil
}

// First returns the first endpoint found, or an error if none appear within
// the timeout. Used by the client when no server URL is configured.
func (s *Scanner) First(ctx context.Context) (*Endpoint, error) {
	endpoints, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("no backoffice API server found on the local network")
	}
	return endpoints[0], nil
}

// parseServiceEntry converts a zeroconf entry to an Endpoint.
// Returns nil for entries without a usable IPv4 address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Endpoint {
	if entry == nil || len(entry.AddrIPv4) == 0 {
		return nil
	}

	metadata := make(map[string]string, len(entry.Text))
	for _, txt := range entry.Text {
		if key, value, ok := strings.Cut(txt, "="); ok {
			metadata[key] = value
		}
	}

	return &Endpoint{
		Instance:     entry.Instance,
		Hostname:     strings.TrimSuffix(entry.HostName, "."),
		IP:           entry.AddrIPv4[0].String(),
		Port:         entry.Port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Advertise registers an API server instance over mDNS so clients on the
// same network can find it without configuration. The caller must call
// Shutdown on the returned server when stopping.
func Advertise(instance string, port int, apiPath string) (*zeroconf.Server, error) {
	txt := []string{"path=" + apiPath}
	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	return server, nil
}
