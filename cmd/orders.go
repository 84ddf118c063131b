package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/deevus/orders-tui/dashboard"
	"github.com/deevus/orders-tui/internal/portal"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

const ordersCommandLong = `Print the orders of one tab and exit.

TAB is one of urgent (default), pending, confirmed or cancelled.`

// NewOrdersCmd creates the orders command.
func NewOrdersCmd(open clientOpener) *cobra.Command {
	if open == nil {
		panic("NewOrdersCmd: open dependency cannot be nil")
	}

	return &cobra.Command{
		Use:       "orders [TAB]",
		Short:     "Print the orders of one tab",
		Long:      ordersCommandLong,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: tabNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			tab := dashboard.TabUrgent
			if len(args) == 1 {
				parsed, ok := dashboard.ParseTab(args[0])
				if !ok {
					return fmt.Errorf("unknown tab %q (want %s)", args[0], strings.Join(tabNames(), ", "))
				}
				tab = parsed
			}

			client, err := open()
			if err != nil {
				return err
			}
			defer client.Close()

			orders, err := client.GetOrdersByStatus(cmd.Context(), tab.Status())
			if err != nil {
				return err
			}
			printOrders(cmd.OutOrStdout(), tab, orders, time.Now())
			return nil
		},
	}
}

func tabNames() []string {
	names := make([]string, len(dashboard.Tabs))
	for i, tab := range dashboard.Tabs {
		names[i] = string(tab)
	}
	return names
}

func printOrders(w io.Writer, tab dashboard.Tab, orders []portal.Order, now time.Time) {
	if len(orders) == 0 {
		fmt.Fprintf(w, "No %s orders\n", tab)
		return
	}

	fmt.Fprintf(w, "%-10s  %-24s  %6s  %12s  %s\n", "ORDER", "CLIENT", "ITEMS", "TOTAL", "PLACED")
	for _, o := range orders {
		client := o.ClientName
		if client == "" {
			client = "-"
		}
		placed := "-"
		if !o.CreatedAt.IsZero() {
			placed = humanize.RelTime(o.CreatedAt, now, "ago", "from now")
		}
		fmt.Fprintf(w, "%-10s  %-24s  %6s  %12s  %s\n",
			"#"+string(o.ID),
			client,
			humanize.Comma(int64(o.ItemCount)),
			"$"+humanize.CommafWithDigits(o.Total, 2),
			placed,
		)
	}
}
