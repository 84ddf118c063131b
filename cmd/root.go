// Package cmd implements the orders-tui command line.
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/deevus/orders-tui/config"
	"github.com/deevus/orders-tui/internal"
	"github.com/deevus/orders-tui/internal/logging"
	"github.com/deevus/orders-tui/internal/portal"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	portal     string
}

// ordersClient is the part of the portal client the one-shot commands use.
type ordersClient interface {
	GetFullDashboard(ctx context.Context) (*portal.Dashboard, error)
	GetOrdersByStatus(ctx context.Context, status string) ([]portal.Order, error)
	Close() error
}

// clientOpener opens a client for the selected portal profile.
type clientOpener func() (ordersClient, error)

// NewRootCmd creates the root command. Without a subcommand it runs the
// dashboard.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "orders-tui",
		Short:         "Live terminal dashboard for the order portal",
		Long:          `Shows urgent, pending, confirmed and cancelled orders with live counters, kept current over the portal's push channel.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		Version:       Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath(), "path to config file")
	rootCmd.PersistentFlags().StringVarP(&opts.portal, "portal", "p", "", "portal profile name from config")

	open := func() (ordersClient, error) { return openClient(opts) }
	rootCmd.AddCommand(
		NewCountersCmd(open),
		NewOrdersCmd(open),
		NewVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command. main calls it once.
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

// loadPortal reads the config file and resolves the selected profile.
func loadPortal(opts *rootOptions) (*config.Config, string, config.PortalConfig, error) {
	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		return nil, "", config.PortalConfig{}, err
	}
	name, pc, err := cfg.Portal(opts.portal)
	if err != nil {
		return nil, "", config.PortalConfig{}, err
	}
	return cfg, name, pc, nil
}

// closingClient closes the log file along with the client.
type closingClient struct {
	*portal.Client
	logFile io.Closer
}

func (c closingClient) Close() error {
	err := c.Client.Close()
	if cerr := c.logFile.Close(); err == nil {
		err = cerr
	}
	return err
}

func openClient(opts *rootOptions) (ordersClient, error) {
	cfg, _, pc, err := loadPortal(opts)
	if err != nil {
		return nil, err
	}
	logger, logFile, err := logging.New(logging.Options{Path: cfg.Log.Path, Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}
	return closingClient{Client: internal.NewClient(pc, logger), logFile: logFile}, nil
}
