package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Start opens the push channel in the background and keeps it open with
// exponential backoff until ctx is done or Close is called. Calling Start
// more than once has no effect.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.started {
		return nil
	}
	if c.cfg.WebSocketURL == "" {
		c.logger.Warn("no websocket url configured, push channel disabled")
		c.started = true
		return nil
	}
	c.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.connectionLoop(loopCtx)
	}()
	return nil
}

// connectionLoop manages connection and reconnection.
func (c *Client) connectionLoop(ctx context.Context) {
	delay := c.cfg.ReconnectDelay

	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := c.dial(ctx)
		if err != nil {
			c.logger.Warn("websocket connection failed", "err", err, "retry_in", delay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = min(delay*2, c.cfg.MaxReconnectDelay)
			continue
		}

		delay = c.cfg.ReconnectDelay
		c.logger.Info("websocket connected")
		c.setConnected(ctx, conn, true)

		c.runConnection(ctx, conn)

		c.setConnected(ctx, nil, false)
		c.logger.Info("websocket disconnected")
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(c.cfg.WebSocketURL)
	if err != nil {
		return nil, fmt.Errorf("parsing websocket url: %w", err)
	}
	q := u.Query()
	q.Set("client_id", c.cfg.ClientID)
	u.RawQuery = q.Encode()

	header := http.Header{}
	c.setHeaders(header)

	conn, _, err := c.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	return conn, nil
}

func (c *Client) setConnected(ctx context.Context, conn *websocket.Conn, connected bool) {
	c.mu.Lock()
	changed := c.connected != connected
	c.connected = connected
	c.conn = conn
	c.mu.Unlock()

	if changed {
		c.publish(ctx, ConnectionChanged{Connected: connected})
	}
}

// runConnection handles read/write on an established connection until
// either side fails or ctx is done.
func (c *Client) runConnection(ctx context.Context, conn *websocket.Conn) {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer cancel()
		c.readLoop(connCtx, conn)
	}()

	go func() {
		defer wg.Done()
		defer cancel()
		c.writeLoop(connCtx, conn)
	}()

	<-connCtx.Done()
	conn.Close()
	wg.Wait()
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	pongWait := 2 * c.cfg.PingInterval
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && ctx.Err() == nil {
				c.logger.Warn("websocket read error", "err", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		c.handleMessage(ctx, message)
	}
}

// writeLoop sends application-level pings so idle connections stay open.
func (c *Client) writeLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(Envelope{Type: MessagePing, Timestamp: time.Now().UTC()}); err != nil {
				c.logger.Warn("websocket ping error", "err", err)
				return
			}
		}
	}
}

func (c *Client) handleMessage(ctx context.Context, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn("failed to parse push message", "err", err)
		return
	}

	ev, ok, err := DecodeEvent(env)
	if err != nil {
		c.logger.Warn("dropping push message", "type", env.Type, "err", err)
		return
	}
	if !ok {
		if env.Type != MessagePong {
			c.logger.Debug("ignoring push message", "type", env.Type)
		}
		return
	}

	switch ev.(type) {
	case OrderChanged, OrderCreated:
		// Cached order lists are stale once an order moves.
		c.cache.clear()
	}
	c.publish(ctx, ev)
}

// publish delivers ev to every subscriber in order, waiting for slow
// subscribers rather than dropping events.
func (c *Client) publish(ctx context.Context, ev Event) {
	c.mu.Lock()
	subs := make([]*subscriber, 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, s := range subs {
		select {
		case s.ch <- ev:
		case <-s.done:
		case <-ctx.Done():
			return
		}
	}
}
