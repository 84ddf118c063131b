package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/deevus/orders-tui/internal/portal"
)

func (m *Manager) handleEvent(ev portal.Event) {
	switch e := ev.(type) {
	case portal.CountersChanged:
		m.applyCounters(m.nextCountersSeq(), e.Counters)
	case portal.OrderChanged:
		m.handleOrderChanged(e)
	case portal.OrderCreated:
		m.handleOrderCreated(e)
	case portal.ConnectionChanged:
		m.setConnected(e.Connected)
	default:
		m.logger.Debug("ignoring event", "type", fmt.Sprintf("%T", ev))
	}
}

func (m *Manager) handleOrderChanged(e portal.OrderChanged) {
	var affected []Tab
	cached, hasCached := m.cachedOrder(e.OrderID)

	if prev, ok := TabForStatus(e.PreviousStatus); ok {
		m.cache.Remove(prev, e.OrderID)
		affected = append(affected, prev)
	}

	if next, ok := TabForStatus(e.NewStatus); ok {
		var order portal.Order
		if e.Order != nil {
			order = *e.Order
			if order.ID == "" {
				order.ID = e.OrderID
			}
		} else if hasCached {
			// Without order data, move the cached record.
			order = cached
		}
		if order.ID != "" {
			order.Status = next.Status()
			affected = append(affected, m.cache.Insert(next, order)...)
		}
	}

	if slices.Contains(affected, m.current) {
		m.renderer.UpdateOrdersList(m.current, m.cache.Get(m.current))
	}
	m.refreshCounters()
}

func (m *Manager) handleOrderCreated(e portal.OrderCreated) {
	order := e.Order
	if order.ID == "" {
		order.ID = e.OrderID
	}

	if tab, ok := TabForStatus(order.Status); ok {
		changed := m.cache.Insert(tab, order)
		if slices.Contains(changed, m.current) {
			m.renderer.UpdateOrdersList(m.current, m.cache.Get(m.current))
		}
	} else {
		m.logger.Debug("new order with unknown status", "id", order.ID, "status", order.Status)
	}

	m.refreshCounters()

	name := strings.TrimSpace(order.ClientName)
	if name == "" {
		name = "client"
	}
	m.notify.Success(fmt.Sprintf("New order #%s from %s", order.ID, name))
}

func (m *Manager) setConnected(connected bool) {
	was := m.connected
	m.connected = connected
	m.renderer.UpdateConnectionStatus(connected)

	if connected {
		m.logger.Info("push channel connected", "was_connected", was)
		m.notify.Success("Real-time connection restored")
		return
	}
	m.logger.Warn("push channel disconnected, polling every interval", "was_connected", was)
	m.poller.start()
	m.notify.Warning("Real-time connection lost, falling back to polling")
}

func (m *Manager) cachedOrder(id portal.OrderID) (portal.Order, bool) {
	tab, ok := m.cache.Locate(id)
	if !ok {
		return portal.Order{}, false
	}
	for _, o := range m.cache.Get(tab) {
		if o.ID == id {
			return o, true
		}
	}
	return portal.Order{}, false
}
