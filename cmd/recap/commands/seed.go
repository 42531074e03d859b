// ABOUTME: Seed command initializes or resets the session store
// ABOUTME: Reseeding wipes all collections back to fixture data
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedReset bool

// NewSeedCmd creates the seed command
func NewSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Initialize the session store with fixture data",
		Long: `Initialize the session store with fixture data.

Seeding is idempotent: an already-initialized session is left untouched
unless --reset is given, which wipes every collection first.

Examples:
  recap seed
  recap seed --reset`,
		RunE: runSeed,
	}

	cmd.Flags().BoolVar(&seedReset, "reset", false, "Wipe the session before seeding")

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if seedReset {
		if err := st.Reset(); err != nil {
			return fmt.Errorf("resetting session: %w", err)
		}
		if err := st.Initialize(); err != nil {
			return fmt.Errorf("reseeding session: %w", err)
		}
	}

	if !quiet {
		deals, err := st.Deals()
		if err != nil {
			return err
		}
		chats, err := st.Chats()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session ready: %d deals, %d chats\n", len(deals), len(chats))
	}
	return nil
}
