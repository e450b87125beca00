// Package discovery provides mDNS/DNS-SD discovery of backoffice API servers
// on the local network.
//
// Development servers advertise themselves as "_backoffice-api._tcp" services
// with a "path" TXT record carrying the API root. The client browses for
// these when it has no server URL configured, so `backoffice` against a
// locally running `backoffice-server` needs zero setup.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	endpoint, err := scanner.First(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := api.NewClient(endpoint.BaseURL())
package discovery
