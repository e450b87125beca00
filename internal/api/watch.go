package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"backoffice/internal/logging"
)

// WatchPath is the websocket endpoint for the customer change feed.
const WatchPath = "/ws/customers"

// Watcher is a live subscription to customer mutations on the server. Events
// arrive on Events until the connection drops or Close is called, at which
// point the channel is closed.
type Watcher struct {
	Events <-chan ChangeEvent

	conn   *websocket.Conn
	cancel context.CancelFunc
}

// Watch opens a change-feed subscription against the server. The feed is
// best-effort: callers should treat a closed Events channel as "live updates
// unavailable" and fall back to manual refresh, not as a fatal error.
func (c *Client) Watch(ctx context.Context) (*Watcher, error) {
	wsURL, err := c.watchURL()
	if err != nil {
		return nil, &APIError{Kind: KindDecode, Message: "invalid server URL", Err: err}
	}

	header := http.Header{}
	if c.Token != "" {
		header.Set("Authorization", "Bearer "+c.Token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, newStatusError(resp.StatusCode, "change feed rejected")
		}
		return nil, classifyTransportError("change feed unavailable", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	events := make(chan ChangeEvent)
	w := &Watcher{Events: events, conn: conn, cancel: cancel}

	// Reader goroutine owns the connection and the events channel.
	go func() {
		defer close(events)
		defer func() { _ = conn.Close() }()
		for {
			var event ChangeEvent
			if err := conn.ReadJSON(&event); err != nil {
				if ctx.Err() == nil {
					logging.Warn("Change feed closed", zap.Error(err))
				}
				return
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Unblock the reader when the context is cancelled.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	logging.Info("Change feed connected", zap.String("url", wsURL))
	return w, nil
}

// Close terminates the subscription. The Events channel is closed shortly
// after.
func (w *Watcher) Close() {
	w.cancel()
}

// watchURL derives the websocket URL for the change feed from BaseURL.
func (c *Client) watchURL() (string, error) {
	u, err := url.Parse(c.BaseURL + WatchPath)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.String(), nil
}
