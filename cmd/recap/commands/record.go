// ABOUTME: CLI command to transcribe an audio file into a conversation
// ABOUTME: Transcribes, formats with participant hints, and saves the row
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atstrading/dealrecap/internal/core"
)

var recordParticipants []string

// NewRecordCmd creates the record command
func NewRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record <audio-file>",
		Short: "Transcribe an audio recording into a conversation",
		Long: `Transcribe an audio recording and save it as a conversation.

The transcript is reformatted into speaker-labelled lines; participant
names improve attribution. If formatting fails the raw transcript is
kept. Requires OPENAI_API_KEY.

Examples:
  recap record call.mp3
  recap record call.mp3 --participants "Alice Chen,Bob Marsh"`,
		Args: cobra.ExactArgs(1),
		RunE: runRecord,
	}

	cmd.Flags().StringSliceVar(&recordParticipants, "participants", []string{}, "Speaker names (comma-separated)")

	return cmd
}

func runRecord(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	assembler := newAssembler(st, cfg)
	conv, err := assembler.RecordConversation(cmd.Context(), f, args[0], recordParticipants)
	switch {
	case errors.Is(err, core.ErrModelUnavailable):
		return fmt.Errorf("transcription unavailable: set OPENAI_API_KEY")
	case err != nil:
		return fmt.Errorf("transcription failed: %w", err)
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(conv)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Saved conversation %d (%d chars)\n", conv.ID, len(conv.Conversation))
	}
	return nil
}
