// ABOUTME: Root CLI command with global flags shared by all subcommands
// ABOUTME: Wires every subcommand into the recap command tree
package commands

import (
	"github.com/spf13/cobra"
)

var (
	outputFormat string
	quiet        bool
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recap",
		Short: "Deal recap extraction for energy trading conversations",
		Long: `Deal recap extraction for energy trading conversations.

Stores chats, users, and deals in a session-scoped key-value store and
uses an LLM to extract structured deal recaps from conversations, email
chains, and recorded calls.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Output format (table or json)")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")

	cmd.AddCommand(NewVersionCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewDealsCmd())
	cmd.AddCommand(NewChatsCmd())
	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewPromoteCmd())
	cmd.AddCommand(NewRecordCmd())
	cmd.AddCommand(NewMCPCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
