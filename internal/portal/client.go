// Package portal is the REST and WebSocket client for the order administration portal.
package portal

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	// ErrRequestFailed is returned when the portal answers with a non-2xx
	// status or a body with success=false.
	ErrRequestFailed = errors.New("portal request failed")

	// ErrClosed is returned by operations on a closed client.
	ErrClosed = errors.New("portal client closed")
)

// Config holds connection details for one portal.
type Config struct {
	BaseURL            string
	WebSocketURL       string
	APIKey             string
	InsecureSkipVerify bool

	// RequestTimeout bounds each REST request at the HTTP client level.
	RequestTimeout time.Duration
	// CacheTTL is how long GET responses for order lists and the dashboard
	// are reused. Zero disables the response cache.
	CacheTTL time.Duration

	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	PingInterval      time.Duration

	// ClientID is sent with every request; a random id is used when empty.
	ClientID string
}

func (c *Config) applyDefaults() {
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 15 * time.Second
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = time.Second
	}
	if c.MaxReconnectDelay == 0 {
		c.MaxReconnectDelay = 30 * time.Second
	}
	if c.PingInterval == 0 {
		c.PingInterval = 25 * time.Second
	}
	if c.ClientID == "" {
		c.ClientID = uuid.NewString()
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// Client talks to the portal's REST API and push channel.
type Client struct {
	cfg    Config
	http   *http.Client
	dialer *websocket.Dialer
	cache  *responseCache
	logger *log.Logger

	mu        sync.Mutex
	subs      map[uint64]*subscriber
	nextSub   uint64
	connected bool
	started   bool
	closed    bool
	conn      *websocket.Conn
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

type subscriber struct {
	ch   chan Event
	done chan struct{}
}

// NewClient creates a portal client. Call Start to open the push channel.
func NewClient(cfg Config, logger *log.Logger) *Client {
	cfg.applyDefaults()
	if logger == nil {
		logger = log.New(io.Discard)
	}
	tlsCfg := &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: &http.Transport{TLSClientConfig: tlsCfg, Proxy: http.ProxyFromEnvironment},
		},
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
			TLSClientConfig:  tlsCfg,
			Proxy:            http.ProxyFromEnvironment,
		},
		cache:  newResponseCache(cfg.CacheTTL),
		logger: logger.WithPrefix("portal"),
		subs:   make(map[uint64]*subscriber),
	}
}

// ClientID returns the id this client identifies itself with.
func (c *Client) ClientID() string {
	return c.cfg.ClientID
}

// GetFullDashboard fetches counters and daily stats.
func (c *Client) GetFullDashboard(ctx context.Context) (*Dashboard, error) {
	v, err := c.cache.get(ctx, "dashboard", func(ctx context.Context) (any, error) {
		var d Dashboard
		if err := c.getJSON(ctx, "/api/dashboard", nil, &d); err != nil {
			return nil, fmt.Errorf("dashboard: %w", err)
		}
		d.Counters = d.Counters.Clamp()
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	d := v.(Dashboard)
	return &d, nil
}

// GetOrdersByStatus lists the orders with the given upper-case status.
// Entries that are not orders at all are skipped.
func (c *Client) GetOrdersByStatus(ctx context.Context, status string) ([]Order, error) {
	status = strings.ToUpper(status)
	v, err := c.cache.get(ctx, "orders:"+status, func(ctx context.Context) (any, error) {
		var resp ordersResponse
		q := url.Values{"status": []string{status}}
		if err := c.getJSON(ctx, "/api/orders", q, &resp); err != nil {
			return nil, fmt.Errorf("orders %s: %w", status, err)
		}
		orders := make([]Order, 0, len(resp.Orders))
		for i, raw := range resp.Orders {
			var o Order
			if err := json.Unmarshal(raw, &o); err != nil {
				c.logger.Warn("skipping malformed order", "status", status, "index", i, "err", err)
				continue
			}
			if o.ID == "" {
				c.logger.Warn("skipping order without id", "status", status, "index", i)
				continue
			}
			orders = append(orders, o)
		}
		return orders, nil
	})
	if err != nil {
		return nil, err
	}
	orders := v.([]Order)
	out := make([]Order, len(orders))
	copy(out, orders)
	return out, nil
}

// GetCounters fetches the current counters. Counters are never served from
// the response cache.
func (c *Client) GetCounters(ctx context.Context) (Counters, error) {
	var counters Counters
	if err := c.getJSON(ctx, "/api/dashboard/counters", nil, &counters); err != nil {
		return Counters{}, fmt.Errorf("counters: %w", err)
	}
	return counters.Clamp(), nil
}

// ClearCache invalidates cached responses.
func (c *Client) ClearCache() {
	c.cache.clear()
}

// getJSON fetches path and decodes the response body into out after checking
// its success flag.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req.Header)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s", ErrRequestFailed, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var header envelopeHeader
	if err := json.Unmarshal(body, &header); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	if !header.Success {
		msg := header.Message
		if msg == "" {
			msg = "success=false"
		}
		return fmt.Errorf("%w: %s: %s", ErrRequestFailed, path, msg)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func (c *Client) setHeaders(h http.Header) {
	if c.cfg.APIKey != "" {
		h.Set("X-API-Key", c.cfg.APIKey)
	}
	h.Set("X-Client-ID", c.cfg.ClientID)
}

// Subscribe returns the ordered push event stream. If the push channel is
// already connected the first event is ConnectionChanged{Connected: true}.
// The subscription is closed when ctx is done.
func (c *Client) Subscribe(ctx context.Context) (*Subscription[Event], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	s := &subscriber{
		ch:   make(chan Event, 64),
		done: make(chan struct{}),
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = s
	if c.connected {
		s.ch <- ConnectionChanged{Connected: true}
	}

	sub := NewSubscription[Event](s.ch, func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
		close(s.done)
	})
	context.AfterFunc(ctx, sub.Close)
	return sub, nil
}

// Connected reports whether the push channel is currently up.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Close stops the push channel and releases the client. Subscriber channels
// are closed. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	cancel := c.cancel
	conn := c.conn
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
	c.wg.Wait()

	c.mu.Lock()
	for id, s := range c.subs {
		close(s.ch)
		delete(c.subs, id)
	}
	c.mu.Unlock()

	c.http.CloseIdleConnections()
	c.cache.clear()
	return nil
}
