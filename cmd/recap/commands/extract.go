// ABOUTME: CLI command to run deal extraction on a chat or email
// ABOUTME: Prints the extracted deal or reports that none was found
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/atstrading/dealrecap/internal/core"
	"github.com/atstrading/dealrecap/internal/models"
)

var extractEmail bool

// NewExtractCmd creates the extract command
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <id>",
		Short: "Extract a deal recap from a chat or email",
		Long: `Extract a deal recap from a chat transcript or a seeded email chain.

Requires OPENAI_API_KEY. A source with no identifiable deal is reported
as such; nothing is written in that case.

Examples:
  recap extract 1
  recap extract 1 --email
  recap extract 1 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runExtract,
	}

	cmd.Flags().BoolVar(&extractEmail, "email", false, "Extract from an email chain instead of a chat")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}

	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	assembler := newAssembler(st, cfg)

	var deal *models.Deal
	if extractEmail {
		deal, err = assembler.ExtractDealFromEmail(cmd.Context(), id)
	} else {
		deal, err = assembler.ExtractDealForChat(cmd.Context(), id)
	}

	switch {
	case errors.Is(err, core.ErrNoDealFound):
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No deal found")
		}
		return nil
	case errors.Is(err, core.ErrModelUnavailable):
		return fmt.Errorf("extraction unavailable: set OPENAI_API_KEY")
	case err != nil:
		return fmt.Errorf("extraction failed: %w", err)
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(deal)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Deal %d\n", deal.ID)
	fmt.Fprintf(out, "  Counterparty: %s\n", deal.CounterPartyCompany)
	fmt.Fprintf(out, "  Office/Desk:  %s/%s\n", deal.Office, deal.Desk)
	fmt.Fprintf(out, "  Product:      %s\n", deal.Product)
	fmt.Fprintf(out, "  Volume:       %s\n", formatVolume(deal.Volume, deal.VolumeUOM))
	if price := formatPrice(*deal); price != "-" {
		fmt.Fprintf(out, "  Price:        %s\n", price)
	}
	if deal.DeliveryPort != "" {
		fmt.Fprintf(out, "  Delivery:     %s\n", deal.DeliveryPort)
	}
	return nil
}
