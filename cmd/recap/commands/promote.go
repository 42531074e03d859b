// ABOUTME: CLI command to promote a raw conversation into a structured chat
// ABOUTME: Creates chat, user, and message records and links the conversation
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/atstrading/dealrecap/internal/core"
)

// NewPromoteCmd creates the promote command
func NewPromoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <conversation-id>",
		Short: "Promote a conversation into a structured chat",
		Long: `Parse a raw conversation into a chat with users and messages.

Participants already in the session (matched by email) are reused; new
ones are created. Requires OPENAI_API_KEY.

Examples:
  recap promote 1
  recap promote 1 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runPromote,
	}
}

func runPromote(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid conversation id %q", args[0])
	}

	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	assembler := newAssembler(st, cfg)
	chat, err := assembler.PromoteConversationToChat(cmd.Context(), id)
	switch {
	case errors.Is(err, core.ErrAlreadyPromoted):
		return fmt.Errorf("conversation %d is already promoted", id)
	case errors.Is(err, core.ErrModelUnavailable):
		return fmt.Errorf("promotion unavailable: set OPENAI_API_KEY")
	case err != nil:
		return fmt.Errorf("promotion failed: %w", err)
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(chat)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Created chat %d: %s\n", chat.ID, chat.Title)
	}
	return nil
}
