package dashboard

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/deevus/orders-tui/internal/portal"
)

var (
	// ErrAlreadyInitialized is returned by a second Initialize.
	ErrAlreadyInitialized = errors.New("dashboard already initialized")
	// ErrDestroyed is returned by Initialize after Destroy.
	ErrDestroyed = errors.New("dashboard destroyed")
)

// Transport is the portal client the manager pulls from and subscribes to.
type Transport interface {
	GetFullDashboard(ctx context.Context) (*portal.Dashboard, error)
	GetOrdersByStatus(ctx context.Context, status string) ([]portal.Order, error)
	GetCounters(ctx context.Context) (portal.Counters, error)
	ClearCache()
	Subscribe(ctx context.Context) (*portal.Subscription[portal.Event], error)
	Close() error
}

// Renderer receives fire-and-forget view commands. Calls arrive from the
// manager's owner goroutine, one at a time.
type Renderer interface {
	UpdateCounters(c portal.Counters)
	UpdateDailyStats(d portal.Dashboard)
	UpdateTabUI(newTab, previousTab Tab)
	// RenderOrdersList shows a freshly loaded list. An empty list is the
	// "no orders" state, not an error.
	RenderOrdersList(tab Tab, orders []portal.Order)
	RenderOrdersError(tab Tab, err error)
	// UpdateOrdersList refreshes a list after a push event changed it.
	UpdateOrdersList(tab Tab, orders []portal.Order)
	UpdateConnectionStatus(connected bool)
	ShowLoadingIndicator(on bool)
}

// Notifier shows short user-facing messages.
type Notifier interface {
	Success(msg string)
	Warning(msg string)
	Error(msg string)
}

// nopNotifier stands in when no notifier is supplied.
type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Warning(string) {}
func (nopNotifier) Error(string)   {}

// LogNotifier writes notifications to a logger. It serves headless runs
// where there is no status line to show them on.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) Success(msg string) { n.Logger.Info(msg, "notify", "success") }
func (n LogNotifier) Warning(msg string) { n.Logger.Warn(msg, "notify", "warning") }
func (n LogNotifier) Error(msg string)   { n.Logger.Error(msg, "notify", "error") }
