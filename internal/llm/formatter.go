// ABOUTME: Formats raw transcripts into speaker-labelled conversations
// ABOUTME: Degrades to the raw transcript when the model is unavailable
package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/atstrading/dealrecap/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

// FormatTranscript rewrites a raw transcript as a "Name: line" conversation.
// Participant names guide speaker attribution; with zero or one name the
// prompt falls back to inferring speakers. The transcript content must
// survive one-to-one, so on persistent failure the raw transcript is
// returned unchanged rather than an error.
func (c *Client) FormatTranscript(ctx context.Context, transcript string, participants []string) string {
	prompt := formatPrompt(transcript, participants)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return transcript
			case <-time.After(util.CalculateBackoff(c.retryDelay, attempt)):
			}
		}

		formatted, err := c.completeText(ctx, prompt)
		if err == nil && strings.TrimSpace(formatted) != "" {
			return formatted
		}
		lastErr = err
	}

	log.Printf("transcript formatting degraded to raw text: %v", lastErr)
	return transcript
}

func formatPrompt(transcript string, participants []string) string {
	var sb strings.Builder
	sb.WriteString("Format the following transcript as a conversation with one line per message, each prefixed with the speaker's name and a colon.\n\n")

	switch len(participants) {
	case 0:
		sb.WriteString("The speakers are unknown. Infer speaker changes from the content and label them Speaker 1, Speaker 2, and so on.\n")
	case 1:
		fmt.Fprintf(&sb, "One known speaker is %s. Attribute their lines to them and label any other voice Speaker 2.\n", participants[0])
	default:
		fmt.Fprintf(&sb, "The speakers are %s. Attribute every line to one of them.\n", strings.Join(participants, " and "))
	}

	sb.WriteString("Do not summarize, reorder, or drop any content. Output only the formatted conversation.\n\nTranscript:\n")
	sb.WriteString(transcript)
	return sb.String()
}

// completeText runs a plain completion without tools.
func (c *Client) completeText(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", transportError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &ValidationError{Tool: "completion", Reason: "model returned no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}
