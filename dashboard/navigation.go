package dashboard

import (
	"context"
	"fmt"

	"github.com/deevus/orders-tui/internal/portal"
)

// TransitionState is the phase of a tab switch.
type TransitionState int

const (
	// TransitionCommitted means the target tab's orders arrived and are cached.
	TransitionCommitted TransitionState = iota
	// TransitionPending means the UI already shows the target tab while its
	// orders are loading.
	TransitionPending
	// TransitionRolledBack means loading failed and the previous tab was restored.
	TransitionRolledBack
)

func (s TransitionState) String() string {
	switch s {
	case TransitionCommitted:
		return "committed"
	case TransitionPending:
		return "pending"
	case TransitionRolledBack:
		return "rolled-back"
	default:
		return fmt.Sprintf("TransitionState(%d)", int(s))
	}
}

// Transition records the most recent tab switch.
type Transition struct {
	ID    uint64
	From  Tab
	To    Tab
	State TransitionState
}

// SwitchTab makes tab current. The UI switches immediately; the tab's orders
// load in the background and the switch is rolled back if they fail.
// Switching to the current tab or an unknown tab does nothing.
func (m *Manager) SwitchTab(tab Tab) {
	m.post(func() { m.switchTab(tab) })
}

// CurrentTab returns the tab the UI is showing.
func (m *Manager) CurrentTab() Tab {
	return m.Snapshot().Current
}

func (m *Manager) switchTab(target Tab) {
	if !target.IsValid() {
		m.logger.Debug("ignoring switch to unknown tab", "tab", target)
		return
	}
	if target == m.current {
		return
	}

	from := m.current
	m.previous = from
	m.current = target
	m.transitionSeq++
	t := Transition{ID: m.transitionSeq, From: from, To: target, State: TransitionPending}
	m.transition = t

	m.renderer.UpdateTabUI(target, from)

	m.spawn(func(ctx context.Context) {
		fctx, cancel := m.withTimeout(ctx)
		defer cancel()
		orders, err := m.transport.GetOrdersByStatus(fctx, target.Status())
		m.post(func() { m.finishSwitch(t, orders, err) })
	})
}

func (m *Manager) finishSwitch(t Transition, orders []portal.Order, err error) {
	latest := m.transition.ID == t.ID && m.transition.State == TransitionPending

	if err != nil {
		if !latest {
			m.logger.Debug("superseded tab load failed", "tab", t.To, "err", err)
			return
		}
		m.logger.Error("failed to load orders", "tab", t.To, "err", err)
		m.current = t.From
		m.previous = t.To
		m.transition.State = TransitionRolledBack
		m.renderer.UpdateTabUI(t.From, t.To)
		m.notify.Error(fmt.Sprintf("Failed to load %s orders", t.To))
		return
	}

	m.cache.Replace(t.To, orders)
	if latest {
		m.transition.State = TransitionCommitted
	}
	if m.current == t.To {
		m.renderer.RenderOrdersList(t.To, m.cache.Get(t.To))
	}
}

// loadTab fetches tab's orders outside of a switch: at startup and after a
// manual refresh. Failures show the tab's error state.
func (m *Manager) loadTab(tab Tab) {
	m.spawn(func(ctx context.Context) {
		fctx, cancel := m.withTimeout(ctx)
		defer cancel()
		orders, err := m.transport.GetOrdersByStatus(fctx, tab.Status())
		m.post(func() {
			if err != nil {
				m.logger.Error("failed to load orders", "tab", tab, "err", err)
				if m.current == tab {
					m.renderer.RenderOrdersError(tab, err)
				}
				m.notify.Error(fmt.Sprintf("Failed to load %s orders", tab))
				return
			}
			m.storeOrders(tab, orders)
		})
	})
}

// storeOrders replaces tab's cache slot and renders it if it is current.
func (m *Manager) storeOrders(tab Tab, orders []portal.Order) {
	m.cache.Replace(tab, orders)
	if m.current == tab {
		m.renderer.RenderOrdersList(tab, m.cache.Get(tab))
	}
}
