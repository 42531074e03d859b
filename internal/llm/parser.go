// ABOUTME: Parses free-form conversation text into chat structure via a tool call
// ABOUTME: Produces title, user roster, and per-message author attribution
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const parseToolName = "parse_conversation"

// ParsedChat is the structured form of a raw conversation, ready to be
// promoted into chat, user, and message records.
type ParsedChat struct {
	Title    string          `json:"title"`
	Users    []ParsedUser    `json:"users"`
	Messages []ParsedMessage `json:"messages"`
}

type ParsedUser struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	IsCounterparty bool   `json:"is_counterparty"`
	Company        string `json:"company"`
	Office         string `json:"office"`
	Desk           string `json:"desk"`
}

type ParsedMessage struct {
	AuthorEmail string `json:"author_email"`
	Content     string `json:"content"`
	Timestamp   string `json:"timestamp"`
}

// ParseConversation turns raw conversation text into a ParsedChat. Unlike
// deal extraction, a missing tool call here is an error: promotion cannot
// proceed without structure.
func (c *Client) ParseConversation(ctx context.Context, text string) (*ParsedChat, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: `You are a conversation parsing assistant for an energy trading desk. Given a raw conversation transcript, identify the participants and split the text into individual messages attributed to each participant.

Rules:
- The title must summarize the conversation topic in at most 50 characters.
- Every participant gets a user entry. Infer company, office, and desk from context where possible; traders from our company belong to offices ATC, ATS, ATL, ATA, or ATF.
- If a participant's email is not stated, construct a plausible one from their name and company.
- Mark participants who are not from our company as counterparties.
- Preserve message content exactly; never merge or paraphrase messages.`,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "Parse this conversation into a structured chat:\n\n" + text,
			},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        parseToolName,
					Description: "Convert a raw conversation transcript into a structured chat with users and messages",
					Parameters:  parseToolSchema(),
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: parseToolName},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, transportError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ValidationError{Tool: parseToolName, Reason: "model returned no choices"}
	}
	for _, call := range resp.Choices[0].Message.ToolCalls {
		if call.Function.Name == parseToolName {
			return parseChatArguments(call.Function.Arguments)
		}
	}
	return nil, &ValidationError{Tool: parseToolName, Reason: "model did not invoke the tool"}
}

func parseToolSchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title": {Type: jsonschema.String, Description: "Conversation title, maximum 50 characters"},
			"users": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"name":            {Type: jsonschema.String, Description: "Participant full name"},
						"email":           {Type: jsonschema.String, Description: "Participant email address"},
						"is_counterparty": {Type: jsonschema.Boolean, Description: "True if the participant is not from our company"},
						"company":         {Type: jsonschema.String, Description: "Company name"},
						"office":          {Type: jsonschema.String, Description: "Trading office, for our company users"},
						"desk":            {Type: jsonschema.String, Description: "Trading desk, for our company users"},
					},
					Required: []string{"name", "email", "is_counterparty"},
				},
			},
			"messages": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"author_email": {Type: jsonschema.String, Description: "Email of the message author, matching a user entry"},
						"content":      {Type: jsonschema.String, Description: "Message text, verbatim"},
						"timestamp":    {Type: jsonschema.String, Description: "Message timestamp if present (YYYY-MM-DD or RFC3339)"},
					},
					Required: []string{"author_email", "content"},
				},
			},
		},
		Required: []string{"title", "users", "messages"},
	}
}

func parseChatArguments(raw string) (*ParsedChat, error) {
	var parsed ParsedChat
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &ValidationError{Tool: parseToolName, Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}
	if parsed.Title == "" {
		return nil, &ValidationError{Tool: parseToolName, Reason: "missing title"}
	}
	if len(parsed.Messages) == 0 {
		return nil, &ValidationError{Tool: parseToolName, Reason: "no messages parsed"}
	}
	if len(parsed.Title) > 50 {
		parsed.Title = parsed.Title[:50]
	}
	return &parsed, nil
}
