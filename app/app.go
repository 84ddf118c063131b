package app

import (
	"sync"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"git.sr.ht/~rockorager/vaxis/vxfw/richtext"
	"github.com/deevus/orders-tui/dashboard"
	"github.com/deevus/orders-tui/internal/portal"
	"github.com/deevus/orders-tui/views"
	"github.com/deevus/orders-tui/widgets"
)

const keyHint = "1-4 tabs  r refresh  q quit"

// Controller receives the user's navigation requests. *dashboard.Manager
// implements it.
type Controller interface {
	SwitchTab(tab dashboard.Tab)
	RefreshDashboard()
}

// Params holds configuration for creating an App.
type Params struct {
	PortalName string
	// ToastTTL defaults to views.DefaultToastTTL.
	ToastTTL time.Duration
	// HistoryLen is the number of urgent counts kept for the sparkline.
	HistoryLen int
}

// App is the root vxfw widget for orders-tui. It renders the dashboard's
// state: the manager drives it through the dashboard.Renderer and
// dashboard.Notifier methods, which may be called from any goroutine.
type App struct {
	portalName string
	toastTTL   time.Duration

	mu         sync.Mutex
	tabBar     *widgets.TabBar
	controller Controller
	postEvent  func(vaxis.Event)

	orders   map[dashboard.Tab]*views.OrdersView
	counters *views.CountersView
	status   *views.StatusBar
}

var (
	_ dashboard.Renderer = (*App)(nil)
	_ dashboard.Notifier = (*App)(nil)
)

// New creates the root App widget.
func New(p Params) *App {
	labels := make([]string, len(dashboard.Tabs))
	orders := make(map[dashboard.Tab]*views.OrdersView, len(dashboard.Tabs))
	for i, tab := range dashboard.Tabs {
		labels[i] = tab.Label()
		orders[tab] = views.NewOrdersView(string(tab))
	}
	ttl := p.ToastTTL
	if ttl <= 0 {
		ttl = views.DefaultToastTTL
	}
	historyLen := p.HistoryLen
	if historyLen <= 0 {
		historyLen = 60
	}

	tabBar := widgets.NewTabBar(labels)
	tabBar.Alert = map[int]bool{dashboard.TabUrgent.Index(): true}
	status := views.NewStatusBar(keyHint)
	status.TTL = ttl

	return &App{
		portalName: p.PortalName,
		toastTTL:   ttl,
		tabBar:     tabBar,
		orders:     orders,
		counters:   views.NewCountersView(historyLen),
		status:     status,
	}
}

// SetController sets the receiver of navigation requests.
func (a *App) SetController(c Controller) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.controller = c
}

// SetPostEvent sets the function used to post events to the vaxis event loop.
func (a *App) SetPostEvent(fn func(vaxis.Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.postEvent = fn
}

// PortalName returns the connected portal profile name.
func (a *App) PortalName() string {
	return a.portalName
}

// ActiveTab returns the tab the tab bar shows as active.
func (a *App) ActiveTab() dashboard.Tab {
	a.mu.Lock()
	defer a.mu.Unlock()
	return dashboard.Tabs[a.tabBar.Active()]
}

// OrdersView returns the view of tab.
func (a *App) OrdersView(tab dashboard.Tab) *views.OrdersView {
	return a.orders[tab]
}

// Counters returns the counters panel.
func (a *App) Counters() *views.CountersView {
	return a.counters
}

// Status returns the status line.
func (a *App) Status() *views.StatusBar {
	return a.status
}

// Badge returns the count shown on tab's badge.
func (a *App) Badge(tab dashboard.Tab) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tabBar.Badge(tab.Index())
}

func (a *App) post(ev vaxis.Event) {
	a.mu.Lock()
	post := a.postEvent
	a.mu.Unlock()
	if post != nil {
		post(ev)
	}
}

func (a *App) redraw() {
	a.post(views.ViewUpdated{})
}

// UpdateCounters implements dashboard.Renderer.
func (a *App) UpdateCounters(c portal.Counters) {
	a.counters.SetCounters(c)
	a.mu.Lock()
	for _, tab := range dashboard.Tabs {
		a.tabBar.SetBadge(tab.Index(), dashboard.CountFor(c, tab))
	}
	a.mu.Unlock()
	a.redraw()
}

// UpdateDailyStats implements dashboard.Renderer.
func (a *App) UpdateDailyStats(d portal.Dashboard) {
	a.counters.SetDailyStats(d.DailyStats)
	a.redraw()
}

// UpdateTabUI implements dashboard.Renderer.
func (a *App) UpdateTabUI(newTab, _ dashboard.Tab) {
	a.mu.Lock()
	a.tabBar.SetActive(newTab.Index())
	a.mu.Unlock()
	a.redraw()
}

// RenderOrdersList implements dashboard.Renderer.
func (a *App) RenderOrdersList(tab dashboard.Tab, orders []portal.Order) {
	a.setOrders(tab, orders)
}

// UpdateOrdersList implements dashboard.Renderer.
func (a *App) UpdateOrdersList(tab dashboard.Tab, orders []portal.Order) {
	a.setOrders(tab, orders)
}

func (a *App) setOrders(tab dashboard.Tab, orders []portal.Order) {
	if ov, ok := a.orders[tab]; ok {
		ov.SetOrders(orders)
		a.redraw()
	}
}

// RenderOrdersError implements dashboard.Renderer.
func (a *App) RenderOrdersError(tab dashboard.Tab, err error) {
	if ov, ok := a.orders[tab]; ok {
		ov.SetError(err)
		a.redraw()
	}
}

// UpdateConnectionStatus implements dashboard.Renderer.
func (a *App) UpdateConnectionStatus(connected bool) {
	a.status.SetConnected(connected)
	a.redraw()
}

// ShowLoadingIndicator implements dashboard.Renderer.
func (a *App) ShowLoadingIndicator(on bool) {
	a.status.SetLoading(on)
	a.redraw()
}

// Success implements dashboard.Notifier.
func (a *App) Success(msg string) { a.toast(views.SeveritySuccess, msg) }

// Warning implements dashboard.Notifier.
func (a *App) Warning(msg string) { a.toast(views.SeverityWarning, msg) }

// Error implements dashboard.Notifier.
func (a *App) Error(msg string) { a.toast(views.SeverityError, msg) }

func (a *App) toast(sev views.Severity, msg string) {
	t := a.status.Push(sev, msg)
	a.redraw()
	time.AfterFunc(a.toastTTL, func() {
		a.post(views.ToastExpired{ID: t.ID})
	})
}

func (a *App) activeView() *views.OrdersView {
	return a.orders[a.ActiveTab()]
}

// Draw renders the tab bar, counters panel, active orders view and status line.
func (a *App) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, a)
	if ctx.Max.Height < 3 {
		return s, nil
	}
	rowCtx := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1})

	// Title and tab bar
	title := richtext.New([]vaxis.Segment{
		{Text: " " + a.portalName + " ", Style: vaxis.Style{Attribute: vaxis.AttrBold | vaxis.AttrReverse}},
	})
	titleSurf, err := title.Draw(rowCtx)
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(0, 0, titleSurf)
	titleWidth := len(a.portalName) + 3

	a.mu.Lock()
	tabSurf, err := a.tabBar.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width - min(ctx.Max.Width, uint16(titleWidth)), Height: 1}))
	a.mu.Unlock()
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(titleWidth, 0, tabSurf)
	row := 1

	// Counters panel, when there is room for it above the orders
	bottom := int(ctx.Max.Height) - 1
	if ch := int(a.counters.Height()); bottom-row > ch+4 {
		countersSurf, err := a.counters.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: uint16(ch)}))
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, row, countersSurf)
		row += ch + 1
	}

	// Active orders view
	if remaining := bottom - row; remaining > 0 {
		viewSurf, err := a.activeView().Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: uint16(remaining)}))
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, row, viewSurf)
	}

	statusSurf, err := a.status.Draw(rowCtx)
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(0, bottom, statusSurf)

	return s, nil
}

// CaptureEvent handles global keybindings before views process them.
func (a *App) CaptureEvent(ev vaxis.Event) (vxfw.Command, error) {
	key, ok := ev.(vaxis.Key)
	if !ok {
		return nil, nil
	}

	a.mu.Lock()
	ctrl := a.controller
	active := a.tabBar.Active()
	a.mu.Unlock()

	n := len(dashboard.Tabs)
	target := -1
	switch {
	case key.Matches('q'), key.Matches('c', vaxis.ModCtrl):
		return vxfw.QuitCmd{}, nil
	case key.Matches('r'):
		if ctrl != nil {
			ctrl.RefreshDashboard()
		}
		return vxfw.ConsumeAndRedraw(), nil
	case key.Matches('1'):
		target = 0
	case key.Matches('2'):
		target = 1
	case key.Matches('3'):
		target = 2
	case key.Matches('4'):
		target = 3
	case key.Matches(vaxis.KeyTab, vaxis.ModShift):
		target = (active - 1 + n) % n
	case key.Matches(vaxis.KeyTab):
		target = (active + 1) % n
	default:
		return nil, nil
	}

	if ctrl != nil && target != active {
		ctrl.SwitchTab(dashboard.Tabs[target])
	}
	return vxfw.ConsumeAndRedraw(), nil
}

// HandleEvent redraws on view updates and delegates the rest to the active view.
func (a *App) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	switch ev := ev.(type) {
	case views.ViewUpdated:
		return vxfw.RedrawCmd{}, nil
	case views.ToastExpired:
		if a.status.Expire(ev.ID) {
			return vxfw.RedrawCmd{}, nil
		}
		return nil, nil
	default:
		return a.activeView().HandleEvent(ev, phase)
	}
}
