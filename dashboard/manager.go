// Package dashboard coordinates the order dashboard: per-tab order caches,
// counters and connection state fed by the portal's push channel, with a
// polling fallback while the push channel is down.
//
// All state is owned by a single goroutine. Public methods enqueue work and
// return immediately; network calls run on their own goroutines and post
// their results back to the owner.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/deevus/orders-tui/internal/portal"
)

const (
	DefaultPollInterval = 30 * time.Second
	DefaultFetchTimeout = 10 * time.Second
)

// Params holds configuration for creating a Manager.
type Params struct {
	Transport Transport
	Renderer  Renderer
	Notifier  Notifier
	Logger    *log.Logger

	// InitialTab defaults to TabUrgent.
	InitialTab Tab
	// PollInterval is the fallback polling period while the push channel is down.
	PollInterval time.Duration
	// FetchTimeout bounds every transport call; a timeout is a normal failure.
	FetchTimeout time.Duration
}

// Manager is the dashboard state coordinator. Create one per session with
// New, start it with Initialize and release it with Destroy.
type Manager struct {
	transport    Transport
	renderer     Renderer
	notify       Notifier
	logger       *log.Logger
	fetchTimeout time.Duration

	ops      chan func()
	quit     chan struct{}
	loopDone chan struct{}
	running  atomic.Bool
	wg       sync.WaitGroup

	lifecycle   sync.Mutex
	initialized bool
	destroyed   bool
	ctx         context.Context
	cancel      context.CancelFunc
	sub         *portal.Subscription[portal.Event]

	// Owned by the loop goroutine.
	current         Tab
	previous        Tab
	transition      Transition
	transitionSeq   uint64
	cache           *OrderCache
	counters        portal.Counters
	countersIssued  uint64
	countersApplied uint64
	connected       bool
	poller          *poller
	polling         bool
}

// New creates a Manager. It does nothing until Initialize is called.
func New(p Params) *Manager {
	logger := p.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	var notify Notifier = nopNotifier{}
	if p.Notifier != nil {
		notify = p.Notifier
	}
	initial := p.InitialTab
	if !initial.IsValid() {
		initial = TabUrgent
	}
	pollInterval := p.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	fetchTimeout := p.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}

	m := &Manager{
		transport:    p.Transport,
		renderer:     p.Renderer,
		notify:       notify,
		logger:       logger.WithPrefix("dashboard"),
		fetchTimeout: fetchTimeout,
		ops:          make(chan func(), 64),
		quit:         make(chan struct{}),
		loopDone:     make(chan struct{}),
		current:      initial,
		previous:     initial,
		transition:   Transition{From: initial, To: initial, State: TransitionCommitted},
		cache:        NewOrderCache(),
	}
	m.poller = newPoller(pollInterval, func() { m.post(m.pollTick) })
	return m
}

// Initialize subscribes to the transport's event stream, starts the
// fallback poller and loads the initial dashboard and current tab.
func (m *Manager) Initialize(ctx context.Context) error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if m.destroyed {
		return ErrDestroyed
	}
	if m.initialized {
		return ErrAlreadyInitialized
	}
	if m.transport == nil || m.renderer == nil {
		return errors.New("dashboard: transport and renderer are required")
	}

	runCtx, cancel := context.WithCancel(ctx)
	sub, err := m.transport.Subscribe(runCtx)
	if err != nil {
		cancel()
		m.logger.Error("failed to subscribe to portal events", "err", err)
		m.notify.Error("Failed to initialize the dashboard")
		return fmt.Errorf("subscribing to portal events: %w", err)
	}

	m.ctx = runCtx
	m.cancel = cancel
	m.sub = sub
	m.initialized = true
	m.running.Store(true)

	go m.run()
	m.post(m.start)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.pump(runCtx, sub)
	}()

	m.logger.Info("dashboard initialized", "tab", m.current)
	return nil
}

// Destroy stops the poller, cancels in-flight fetches, releases the
// subscription and closes the transport. Later calls return nil.
// Destroy must not be called from a Renderer or Notifier callback.
func (m *Manager) Destroy() error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if m.destroyed {
		return nil
	}
	m.destroyed = true

	if m.initialized {
		m.cancel()
		close(m.quit)
		<-m.loopDone
		m.running.Store(false)
		m.wg.Wait()
		m.sub.Close()
	}
	m.poller.stop()
	m.cache.Reset()

	var err error
	if m.transport != nil {
		if cerr := m.transport.Close(); cerr != nil {
			err = fmt.Errorf("closing transport: %w", cerr)
		}
	}
	m.logger.Info("dashboard destroyed")
	return err
}

// run executes queued operations one at a time until Destroy.
func (m *Manager) run() {
	defer close(m.loopDone)
	for {
		select {
		case op := <-m.ops:
			op()
		case <-m.quit:
			m.poller.stop()
			return
		}
	}
}

// post enqueues op for the owner goroutine. It reports false when the
// manager is not running.
func (m *Manager) post(op func()) bool {
	if !m.running.Load() {
		return false
	}
	select {
	case m.ops <- op:
		return true
	case <-m.quit:
		return false
	}
}

// spawn runs fn on a tracked goroutine with the manager's run context.
// Must be called from the owner goroutine.
func (m *Manager) spawn(fn func(ctx context.Context)) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn(m.ctx)
	}()
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.fetchTimeout)
}

// pump forwards push events to the owner goroutine in arrival order.
func (m *Manager) pump(ctx context.Context, sub *portal.Subscription[portal.Event]) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				m.logger.Warn("portal event stream closed")
				return
			}
			if !m.post(func() { m.handleEvent(ev) }) {
				return
			}
		}
	}
}

// start runs first on the owner goroutine after Initialize.
func (m *Manager) start() {
	m.poller.start()
	m.renderer.UpdateTabUI(m.current, m.previous)
	m.renderer.UpdateConnectionStatus(m.connected)
	m.loadDashboard(m.nextCountersSeq())
	m.loadTab(m.current)
}

// State is a copy of the coordinator's state.
type State struct {
	Initialized bool
	Current     Tab
	Previous    Tab
	Transition  Transition
	Counters    portal.Counters
	Connected   bool
	// Polling reports whether the fallback poller is running.
	Polling bool
	Orders  map[Tab][]portal.Order
}

// Snapshot returns a copy of the current state, read on the owner goroutine.
func (m *Manager) Snapshot() State {
	ch := make(chan State, 1)
	if m.post(func() { ch <- m.state() }) {
		select {
		case s := <-ch:
			return s
		case <-m.loopDone:
		}
	}
	return m.state()
}

func (m *Manager) state() State {
	orders := make(map[Tab][]portal.Order, len(Tabs))
	for _, tab := range Tabs {
		orders[tab] = m.cache.Get(tab)
	}
	return State{
		Initialized: m.running.Load(),
		Current:     m.current,
		Previous:    m.previous,
		Transition:  m.transition,
		Counters:    m.counters,
		Connected:   m.connected,
		Polling:     m.poller.isRunning(),
		Orders:      orders,
	}
}
