package dashboard

import (
	"context"
	"fmt"

	"github.com/deevus/orders-tui/internal/portal"
	"golang.org/x/sync/errgroup"
)

// RefreshCounters re-fetches the counters from the portal.
func (m *Manager) RefreshCounters() {
	m.post(m.refreshCounters)
}

// RefreshDashboard invalidates the transport's response cache and reloads
// the dashboard and the current tab behind the loading indicator.
func (m *Manager) RefreshDashboard() {
	m.post(m.refreshDashboard)
}

// nextCountersSeq tags a counters source. Snapshots are applied only if
// their tag is newer than the last applied one, so a slow response cannot
// overwrite a newer snapshot.
func (m *Manager) nextCountersSeq() uint64 {
	m.countersIssued++
	return m.countersIssued
}

func (m *Manager) applyCounters(seq uint64, c portal.Counters) bool {
	if seq <= m.countersApplied {
		m.logger.Debug("discarding stale counters", "seq", seq, "applied", m.countersApplied)
		return false
	}
	m.countersApplied = seq
	m.counters = c.Clamp()
	m.renderer.UpdateCounters(m.counters)
	return true
}

func (m *Manager) refreshCounters() {
	seq := m.nextCountersSeq()
	m.spawn(func(ctx context.Context) {
		fctx, cancel := m.withTimeout(ctx)
		defer cancel()
		c, err := m.transport.GetCounters(fctx)
		m.post(func() {
			if err != nil {
				m.logger.Error("failed to refresh counters", "err", err)
				m.notify.Error("Failed to refresh order counters")
				return
			}
			m.applyCounters(seq, c)
		})
	})
}

func (m *Manager) loadDashboard(seq uint64) {
	m.spawn(func(ctx context.Context) {
		fctx, cancel := m.withTimeout(ctx)
		defer cancel()
		d, err := m.transport.GetFullDashboard(fctx)
		m.post(func() {
			if err != nil {
				m.logger.Error("failed to load dashboard", "err", err)
				m.notify.Error("Failed to load dashboard")
				return
			}
			m.applyDashboard(seq, *d)
		})
	})
}

func (m *Manager) applyDashboard(seq uint64, d portal.Dashboard) {
	m.applyCounters(seq, d.Counters)
	m.renderer.UpdateDailyStats(d)
}

// showLoading turns the loading indicator on and returns the function that
// turns it off again. The returned function must be deferred so the
// indicator is cleared on every exit path.
func (m *Manager) showLoading() func() {
	m.renderer.ShowLoadingIndicator(true)
	return func() {
		m.post(func() { m.renderer.ShowLoadingIndicator(false) })
	}
}

func (m *Manager) refreshDashboard() {
	done := m.showLoading()
	seq := m.nextCountersSeq()
	tab := m.current

	m.spawn(func(ctx context.Context) {
		defer done()

		m.transport.ClearCache()

		var (
			dash   *portal.Dashboard
			orders []portal.Order
		)
		fctx, cancel := m.withTimeout(ctx)
		defer cancel()
		g, gctx := errgroup.WithContext(fctx)
		g.Go(func() error {
			d, err := m.transport.GetFullDashboard(gctx)
			if err != nil {
				return fmt.Errorf("dashboard: %w", err)
			}
			dash = d
			return nil
		})
		g.Go(func() error {
			o, err := m.transport.GetOrdersByStatus(gctx, tab.Status())
			if err != nil {
				return fmt.Errorf("%s orders: %w", tab, err)
			}
			orders = o
			return nil
		})
		err := g.Wait()

		m.post(func() {
			if err != nil {
				m.logger.Error("dashboard refresh failed", "err", err)
				m.notify.Error("Failed to refresh dashboard")
				return
			}
			m.applyDashboard(seq, *dash)
			m.storeOrders(tab, orders)
			m.notify.Success("Dashboard refreshed")
		})
	})
}
