package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/deevus/orders-tui/dashboard"
	"github.com/deevus/orders-tui/internal/portal"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewCountersCmd creates the counters command, which prints the dashboard
// counters and daily figures once.
func NewCountersCmd(open clientOpener) *cobra.Command {
	if open == nil {
		panic("NewCountersCmd: open dependency cannot be nil")
	}

	var asJSON bool
	countersCmd := &cobra.Command{
		Use:   "counters",
		Short: "Print order counters and today's figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := open()
			if err != nil {
				return err
			}
			defer client.Close()

			d, err := client.GetFullDashboard(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}
			printDashboard(cmd.OutOrStdout(), *d)
			return nil
		},
	}
	countersCmd.Flags().BoolVar(&asJSON, "json", false, "print the raw dashboard as JSON")
	return countersCmd
}

func printDashboard(w io.Writer, d portal.Dashboard) {
	for _, tab := range dashboard.Tabs {
		fmt.Fprintf(w, "%-16s %10s\n", tab.Label(), humanize.Comma(int64(dashboard.CountFor(d.Counters, tab))))
	}
	fmt.Fprintf(w, "%-16s %10s\n\n", "TOTAL", humanize.Comma(int64(d.Counters.Total())))

	fmt.Fprintf(w, "%-16s %10s\n", "Orders today", humanize.Comma(int64(d.OrdersToday)))
	fmt.Fprintf(w, "%-16s %10s\n", "Revenue today", "$"+humanize.CommafWithDigits(d.RevenueToday, 2))
	fmt.Fprintf(w, "%-16s %10s\n", "Average ticket", "$"+humanize.CommafWithDigits(d.AverageTicket, 2))
	fmt.Fprintf(w, "%-16s %10s\n", "Items shipped", humanize.Comma(int64(d.ItemsShipped)))
}
