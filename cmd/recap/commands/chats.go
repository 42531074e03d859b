// ABOUTME: CLI command to list chats or show one chat's transcript
// ABOUTME: Transcript lines carry resolved author names
package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/atstrading/dealrecap/internal/models"
)

// chatStore is the slice of the record store the transcript view needs.
type chatStore interface {
	ChatByID(id int) (*models.Chat, error)
	MessagesByChat(chatID int) ([]models.Message, error)
	UserByID(id int) (*models.User, error)
}

// NewChatsCmd creates the chats command
func NewChatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chats [id]",
		Short: "List chats or show a chat transcript",
		Long: `List chats in the session, or show one chat's full transcript.

Examples:
  recap chats
  recap chats 1
  recap chats --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChats,
	}
}

func runChats(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if len(args) == 1 {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid chat id %q", args[0])
		}
		return showChat(cmd, st, id)
	}

	chats, err := st.Chats()
	if err != nil {
		return fmt.Errorf("listing chats: %w", err)
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(chats)
	}

	if len(chats) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No chats found")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tUPDATED")
	for _, c := range chats {
		fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, truncate(c.Title, 50), formatTime(c.UpdatedAt))
	}
	return w.Flush()
}

func showChat(cmd *cobra.Command, st chatStore, id int) error {
	chat, err := st.ChatByID(id)
	if err != nil {
		return fmt.Errorf("getting chat %d: %w", id, err)
	}
	messages, err := st.MessagesByChat(id)
	if err != nil {
		return fmt.Errorf("getting messages: %w", err)
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"chat": chat, "messages": messages})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", chat.Title)
	for _, m := range messages {
		name := fmt.Sprintf("user %d", m.UserID)
		if u, err := st.UserByID(m.UserID); err == nil {
			name = u.Name
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, m.Content)
	}
	return nil
}
