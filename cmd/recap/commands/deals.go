// ABOUTME: CLI command to list deal recaps
// ABOUTME: Shows counterparty, product, volume, and pricing per deal
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/atstrading/dealrecap/internal/models"
)

// NewDealsCmd creates the deals command
func NewDealsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deals",
		Short: "List deal recaps in the session",
		Long: `List deal recaps in the current session.

Examples:
  recap deals
  recap deals --format json`,
		RunE: runDeals,
	}
}

func runDeals(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	deals, err := st.Deals()
	if err != nil {
		return fmt.Errorf("listing deals: %w", err)
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(deals)
	}

	if len(deals) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No deals found")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOUNTERPARTY\tPRODUCT\tVOLUME\tPRICE\tCREATED")
	for _, d := range deals {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			d.ID,
			truncate(d.CounterPartyCompany, 24),
			d.Product,
			formatVolume(d.Volume, d.VolumeUOM),
			formatPrice(d),
			formatTime(d.CreatedAt))
	}
	return w.Flush()
}

// formatPrice renders fixed or basis pricing, whichever the deal carries
func formatPrice(d models.Deal) string {
	switch {
	case d.Price != nil:
		return fmt.Sprintf("%.2f %s", *d.Price, d.Currency)
	case d.PriceBasis != "":
		if d.PriceDiff != nil {
			return fmt.Sprintf("%s%+.2f", d.PriceBasis, *d.PriceDiff)
		}
		return d.PriceBasis
	default:
		return "-"
	}
}
