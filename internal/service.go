package internal

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/deevus/orders-tui/config"
	"github.com/deevus/orders-tui/dashboard"
	"github.com/deevus/orders-tui/internal/portal"
)

// Services holds the portal client and dashboard manager for one portal.
type Services struct {
	Name      string
	Client    *portal.Client
	Dashboard *dashboard.Manager
}

// ClientConfig maps a portal profile to the portal client's configuration.
func ClientConfig(pc config.PortalConfig) portal.Config {
	cfg := portal.Config{
		BaseURL:            pc.BaseURL,
		WebSocketURL:       pc.WebSocketURL,
		APIKey:             pc.APIKey,
		InsecureSkipVerify: pc.InsecureSkipVerify,
		RequestTimeout:     pc.FetchTimeout,
		CacheTTL:           pc.CacheTTL,
		ReconnectDelay:     pc.ReconnectDelay,
		MaxReconnectDelay:  pc.MaxReconnectDelay,
		PingInterval:       pc.PingInterval,
	}
	if pc.DisablePush {
		cfg.WebSocketURL = ""
	}
	return cfg
}

// NewClient creates a portal client for a profile without a dashboard, for
// one-shot commands.
func NewClient(pc config.PortalConfig, logger *log.Logger) *portal.Client {
	return portal.NewClient(ClientConfig(pc), logger)
}

// NewServices creates the portal client and a dashboard manager that renders
// to r and notifies through n, or through the log when n is nil. Nothing
// touches the network until Start.
func NewServices(name string, pc config.PortalConfig, r dashboard.Renderer, n dashboard.Notifier, logger *log.Logger) *Services {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if n == nil {
		n = dashboard.LogNotifier{Logger: logger.WithPrefix("notify")}
	}
	client := NewClient(pc, logger)
	initial, _ := dashboard.ParseTab(pc.InitialTab)
	mgr := dashboard.New(dashboard.Params{
		Transport:    client,
		Renderer:     r,
		Notifier:     n,
		Logger:       logger,
		InitialTab:   initial,
		PollInterval: pc.PollInterval,
		FetchTimeout: pc.FetchTimeout,
	})
	return &Services{Name: name, Client: client, Dashboard: mgr}
}

// Start opens the push channel and initializes the dashboard.
func (s *Services) Start(ctx context.Context) error {
	if err := s.Client.Start(ctx); err != nil {
		return fmt.Errorf("starting push channel: %w", err)
	}
	if err := s.Dashboard.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing dashboard: %w", err)
	}
	return nil
}

// Close destroys the dashboard, which closes the client.
func (s *Services) Close() error {
	return s.Dashboard.Destroy()
}
