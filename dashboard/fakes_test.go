package dashboard

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/deevus/orders-tui/internal/portal"
	"github.com/stretchr/testify/require"
)

// fakeTransport is a Transport with overridable funcs and call counting.
type fakeTransport struct {
	mu     sync.Mutex
	calls  map[string]int
	events chan portal.Event
	closed int

	SubscribeFunc    func(ctx context.Context) (*portal.Subscription[portal.Event], error)
	GetDashboardFunc func(ctx context.Context) (*portal.Dashboard, error)
	GetOrdersFunc    func(ctx context.Context, status string) ([]portal.Order, error)
	GetCountersFunc  func(ctx context.Context) (portal.Counters, error)
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		calls:  make(map[string]int),
		events: make(chan portal.Event, 16),
	}
}

func (f *fakeTransport) count(key string) {
	f.mu.Lock()
	f.calls[key]++
	f.mu.Unlock()
}

func (f *fakeTransport) Calls(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

// NetworkCalls returns the number of calls that would hit the network.
func (f *fakeTransport) NetworkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for k, v := range f.calls {
		if k != "ClearCache" && k != "Subscribe" && k != "Close" {
			n += v
		}
	}
	return n
}

func (f *fakeTransport) GetFullDashboard(ctx context.Context) (*portal.Dashboard, error) {
	f.count("GetFullDashboard")
	if f.GetDashboardFunc != nil {
		return f.GetDashboardFunc(ctx)
	}
	return &portal.Dashboard{}, nil
}

func (f *fakeTransport) GetOrdersByStatus(ctx context.Context, status string) ([]portal.Order, error) {
	f.count("orders:" + status)
	if f.GetOrdersFunc != nil {
		return f.GetOrdersFunc(ctx, status)
	}
	return nil, nil
}

func (f *fakeTransport) GetCounters(ctx context.Context) (portal.Counters, error) {
	f.count("GetCounters")
	if f.GetCountersFunc != nil {
		return f.GetCountersFunc(ctx)
	}
	return portal.Counters{}, nil
}

func (f *fakeTransport) ClearCache() {
	f.count("ClearCache")
}

func (f *fakeTransport) Subscribe(ctx context.Context) (*portal.Subscription[portal.Event], error) {
	f.count("Subscribe")
	if f.SubscribeFunc != nil {
		return f.SubscribeFunc(ctx)
	}
	return portal.NewSubscription[portal.Event](f.events, func() {}), nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	return nil
}

type renderCall struct {
	Method   string
	Tab      Tab
	Previous Tab
	Orders   []portal.Order
	Counters portal.Counters
	On       bool
}

// recordingRenderer records every command it receives.
type recordingRenderer struct {
	mu    sync.Mutex
	calls []renderCall
}

func (r *recordingRenderer) add(c renderCall) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

func (r *recordingRenderer) Calls() []renderCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

func (r *recordingRenderer) Find(method string) []renderCall {
	var out []renderCall
	for _, c := range r.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (r *recordingRenderer) Has(method string, tab Tab) bool {
	for _, c := range r.Find(method) {
		if c.Tab == tab {
			return true
		}
	}
	return false
}

func (r *recordingRenderer) UpdateCounters(c portal.Counters) {
	r.add(renderCall{Method: "UpdateCounters", Counters: c})
}

func (r *recordingRenderer) UpdateDailyStats(d portal.Dashboard) {
	r.add(renderCall{Method: "UpdateDailyStats", Counters: d.Counters})
}

func (r *recordingRenderer) UpdateTabUI(newTab, previousTab Tab) {
	r.add(renderCall{Method: "UpdateTabUI", Tab: newTab, Previous: previousTab})
}

func (r *recordingRenderer) RenderOrdersList(tab Tab, orders []portal.Order) {
	r.add(renderCall{Method: "RenderOrdersList", Tab: tab, Orders: orders})
}

func (r *recordingRenderer) RenderOrdersError(tab Tab, err error) {
	r.add(renderCall{Method: "RenderOrdersError", Tab: tab})
}

func (r *recordingRenderer) UpdateOrdersList(tab Tab, orders []portal.Order) {
	r.add(renderCall{Method: "UpdateOrdersList", Tab: tab, Orders: orders})
}

func (r *recordingRenderer) UpdateConnectionStatus(connected bool) {
	r.add(renderCall{Method: "UpdateConnectionStatus", On: connected})
}

func (r *recordingRenderer) ShowLoadingIndicator(on bool) {
	r.add(renderCall{Method: "ShowLoadingIndicator", On: on})
}

type note struct {
	Level string
	Msg   string
}

// recordingNotifier records notifications.
type recordingNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (n *recordingNotifier) add(level, msg string) {
	n.mu.Lock()
	n.notes = append(n.notes, note{Level: level, Msg: msg})
	n.mu.Unlock()
}

func (n *recordingNotifier) Notes() []note {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.notes)
}

func (n *recordingNotifier) Levels(level string) []string {
	var out []string
	for _, nt := range n.Notes() {
		if nt.Level == level {
			out = append(out, nt.Msg)
		}
	}
	return out
}

func (n *recordingNotifier) Success(msg string) { n.add("success", msg) }
func (n *recordingNotifier) Warning(msg string) { n.add("warning", msg) }
func (n *recordingNotifier) Error(msg string)   { n.add("error", msg) }

type harness struct {
	m        *Manager
	tr       *fakeTransport
	renderer *recordingRenderer
	notifier *recordingNotifier
	ticks    chan time.Time
}

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// newHarness builds a manager with a manual fallback ticker. configure may
// adjust the transport before Initialize.
func newHarness(t *testing.T, configure func(tr *fakeTransport)) *harness {
	t.Helper()
	tr := newFakeTransport()
	if configure != nil {
		configure(tr)
	}
	h := &harness{
		tr:       tr,
		renderer: &recordingRenderer{},
		notifier: &recordingNotifier{},
		ticks:    make(chan time.Time),
	}
	h.m = New(Params{
		Transport:    tr,
		Renderer:     h.renderer,
		Notifier:     h.notifier,
		FetchTimeout: time.Second,
	})
	h.m.poller.newTicker = func(time.Duration) (<-chan time.Time, func()) {
		return h.ticks, func() {}
	}
	t.Cleanup(func() { _ = h.m.Destroy() })
	return h
}

// start initializes the manager and waits for the initial load to finish.
func (h *harness) start(t *testing.T) {
	t.Helper()
	require.NoError(t, h.m.Initialize(context.Background()))
	require.Eventually(t, func() bool {
		return len(h.renderer.Find("UpdateDailyStats")) == 1 &&
			(h.renderer.Has("RenderOrdersList", TabUrgent) || h.renderer.Has("RenderOrdersError", TabUrgent))
	}, waitFor, tick)
	h.m.Snapshot()
}

// push delivers an event and waits until the manager has handled it.
func (h *harness) push(t *testing.T, ev portal.Event) {
	t.Helper()
	h.tr.events <- ev
	require.Eventually(t, func() bool { return len(h.tr.events) == 0 }, waitFor, tick)
	// The pump may still hold the event; a second snapshot after a short
	// delay guarantees it was queued and processed.
	time.Sleep(10 * time.Millisecond)
	h.m.Snapshot()
}

func order(id string, status string, client string) portal.Order {
	return portal.Order{ID: portal.OrderID(id), Status: status, ClientName: client}
}

func ids(orders []portal.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, string(o.ID))
	}
	return out
}
