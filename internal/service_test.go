package internal_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/deevus/orders-tui/config"
	"github.com/deevus/orders-tui/dashboard"
	"github.com/deevus/orders-tui/internal"
	"github.com/deevus/orders-tui/internal/portal"
)

type listRenderer struct {
	mu     sync.Mutex
	lists  map[dashboard.Tab][]portal.Order
	loaded chan dashboard.Tab
}

func newListRenderer() *listRenderer {
	return &listRenderer{lists: map[dashboard.Tab][]portal.Order{}, loaded: make(chan dashboard.Tab, 8)}
}

func (r *listRenderer) UpdateCounters(portal.Counters)                 {}
func (r *listRenderer) UpdateDailyStats(portal.Dashboard)              {}
func (r *listRenderer) UpdateTabUI(_, _ dashboard.Tab)                 {}
func (r *listRenderer) RenderOrdersError(dashboard.Tab, error)         {}
func (r *listRenderer) UpdateOrdersList(dashboard.Tab, []portal.Order) {}
func (r *listRenderer) UpdateConnectionStatus(bool)                    {}
func (r *listRenderer) ShowLoadingIndicator(bool)                      {}

func (r *listRenderer) RenderOrdersList(tab dashboard.Tab, orders []portal.Order) {
	r.mu.Lock()
	r.lists[tab] = orders
	r.mu.Unlock()
	r.loaded <- tab
}

func portalServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dashboard", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"urgentCount":1,"pendingCount":1}`))
	})
	mux.HandleFunc("/api/dashboard/counters", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"urgentCount":1,"pendingCount":1}`))
	})
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("status") {
		case "PENDING":
			_, _ = w.Write([]byte(`{"success":true,"orders":[{"id":"P-1","status":"PENDING"}]}`))
		default:
			_, _ = w.Write([]byte(`{"success":true,"orders":[{"id":"U-1","status":"URGENT","clientName":"Bistro"}]}`))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientConfig(t *testing.T) {
	pc := config.PortalConfig{
		BaseURL:        "https://portal.example.com",
		WebSocketURL:   "wss://portal.example.com/ws",
		APIKey:         "secret",
		FetchTimeout:   3 * time.Second,
		CacheTTL:       5 * time.Second,
		ReconnectDelay: 2 * time.Second,
	}

	cfg := internal.ClientConfig(pc)
	if cfg.BaseURL != pc.BaseURL || cfg.APIKey != "secret" {
		t.Errorf("unexpected connection fields: %+v", cfg)
	}
	if cfg.WebSocketURL != pc.WebSocketURL {
		t.Errorf("expected websocket url %s, got %s", pc.WebSocketURL, cfg.WebSocketURL)
	}
	if cfg.RequestTimeout != 3*time.Second || cfg.CacheTTL != 5*time.Second || cfg.ReconnectDelay != 2*time.Second {
		t.Errorf("unexpected durations: %+v", cfg)
	}

	pc.DisablePush = true
	if got := internal.ClientConfig(pc).WebSocketURL; got != "" {
		t.Errorf("expected push disabled, got websocket url %q", got)
	}
}

func TestServices_StartLoadsInitialTab(t *testing.T) {
	srv := portalServer(t)
	r := newListRenderer()
	svc := internal.NewServices("kitchen", config.PortalConfig{
		BaseURL:     srv.URL,
		DisablePush: true,
		InitialTab:  "pending",
	}, r, nil, nil)
	t.Cleanup(func() { _ = svc.Close() })

	if svc.Name != "kitchen" {
		t.Errorf("expected name kitchen, got %s", svc.Name)
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case tab := <-r.loaded:
		if tab != dashboard.TabPending {
			t.Fatalf("expected pending tab loaded first, got %s", tab)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for initial orders")
	}

	r.mu.Lock()
	orders := r.lists[dashboard.TabPending]
	r.mu.Unlock()
	if len(orders) != 1 || orders[0].ID != "P-1" {
		t.Errorf("unexpected pending orders: %+v", orders)
	}
	if got := svc.Dashboard.Snapshot().Current; got != dashboard.TabPending {
		t.Errorf("expected current tab pending, got %s", got)
	}
}

func TestServices_CloseClosesClient(t *testing.T) {
	srv := portalServer(t)
	svc := internal.NewServices("kitchen", config.PortalConfig{BaseURL: srv.URL, DisablePush: true}, newListRenderer(), nil, nil)

	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	_, err := svc.Client.GetCounters(context.Background())
	if !errors.Is(err, portal.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := svc.Start(context.Background()); err == nil {
		t.Error("expected Start after Close to fail")
	}
}
