package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// tickerFunc creates a ticker channel and its stop function.
type tickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// poller fires onTick every interval while running. start and stop are
// idempotent and are only called from the manager's owner goroutine.
type poller struct {
	interval  time.Duration
	newTicker tickerFunc
	onTick    func()

	running bool
	done    chan struct{}
}

func newPoller(interval time.Duration, onTick func()) *poller {
	return &poller{interval: interval, newTicker: realTicker, onTick: onTick}
}

func (p *poller) start() {
	if p.running {
		return
	}
	p.running = true
	p.done = make(chan struct{})

	ticks, stop := p.newTicker(p.interval)
	go func(done <-chan struct{}) {
		defer stop()
		for {
			select {
			case <-done:
				return
			case <-ticks:
				p.onTick()
			}
		}
	}(p.done)
}

func (p *poller) stop() {
	if !p.running {
		return
	}
	p.running = false
	close(p.done)
}

func (p *poller) isRunning() bool {
	return p.running
}

// pollTick reloads every tab and then the counters, but only while the push
// channel is down. The ticker keeps running while connected so connection
// flapping never restarts it.
func (m *Manager) pollTick() {
	if m.connected || !m.poller.isRunning() {
		return
	}
	if m.polling {
		m.logger.Debug("previous fallback poll still running, skipping tick")
		return
	}
	m.polling = true
	seq := m.nextCountersSeq()
	m.logger.Debug("fallback poll")

	m.spawn(func(ctx context.Context) {
		var errs []error
		defer func() {
			err := errors.Join(errs...)
			m.post(func() {
				m.polling = false
				if err != nil {
					m.logger.Warn("fallback poll failed", "err", err)
					m.notify.Error("Failed to refresh orders")
				}
			})
		}()

		for _, tab := range Tabs {
			if ctx.Err() != nil {
				return
			}
			fctx, cancel := m.withTimeout(ctx)
			orders, err := m.transport.GetOrdersByStatus(fctx, tab.Status())
			cancel()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s orders: %w", tab, err))
				continue
			}
			m.post(func() { m.storeOrders(tab, orders) })
		}

		fctx, cancel := m.withTimeout(ctx)
		counters, err := m.transport.GetCounters(fctx)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("counters: %w", err))
			return
		}
		m.post(func() { m.applyCounters(seq, counters) })
	})
}
