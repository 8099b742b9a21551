package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/rl1809/micro-shop/internal/core/domain"
)

func (c *Client) eventsURL() (string, error) {
	u, err := url.Parse(c.baseURL + "/admin/events/")
	if err != nil {
		return "", fmt.Errorf("events url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("token", c.token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// WatchEvents follows the admin order-event feed and calls fn for each event
// until ctx is done or the server closes the stream. A server-side close
// returns nil.
func (c *Client) WatchEvents(ctx context.Context, fn func(domain.OrderEvent)) error {
	target, err := c.eventsURL()
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			defer resp.Body.Close()
			return fmt.Errorf("watch events: %w", decodeError(resp))
		}
		return fmt.Errorf("watch events: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var event domain.OrderEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("watch events: %w", err)
		}
		fn(event)
	}
}
