// ABOUTME: Tests for transcript formatting, parsing, and degrade behavior
// ABOUTME: Uses the fake endpoint helper from extractor_test.go
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func decodeJSONBody(t *testing.T, r *http.Request, v any) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		t.Fatalf("decoding request body: %v", err)
	}
}

func TestFormatTranscript_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(plainResponse("Alice: offer 500k\nBob: done"))
	})

	got := client.FormatTranscript(context.Background(), "offer 500k done", []string{"Alice", "Bob"})
	if got != "Alice: offer 500k\nBob: done" {
		t.Errorf("FormatTranscript() = %q, want formatted conversation", got)
	}
}

func TestFormatTranscript_DegradesToRaw(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"down","type":"server_error"}}`))
	})

	raw := "unformatted transcript text"
	if got := client.FormatTranscript(context.Background(), raw, nil); got != raw {
		t.Errorf("FormatTranscript() = %q, want raw transcript on failure", got)
	}
}

func TestFormatPrompt_ParticipantVariants(t *testing.T) {
	zero := formatPrompt("text", nil)
	if !strings.Contains(zero, "speakers are unknown") {
		t.Errorf("zero-participant prompt missing inference instruction:\n%s", zero)
	}

	one := formatPrompt("text", []string{"Alice"})
	if !strings.Contains(one, "One known speaker is Alice") {
		t.Errorf("one-participant prompt missing known speaker:\n%s", one)
	}

	two := formatPrompt("text", []string{"Alice", "Bob"})
	if !strings.Contains(two, "Alice and Bob") {
		t.Errorf("two-participant prompt missing speaker list:\n%s", two)
	}
}

func TestParseConversation_ToolCall(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(toolCallResponse(parseToolName, map[string]any{
			"title": "Crude spot negotiation",
			"users": []map[string]any{
				{"name": "Alice Chen", "email": "alice.chen@atstrading.com", "is_counterparty": false, "office": "ATS", "desk": "crude"},
				{"name": "Bob Marsh", "email": "bob.marsh@shell.com", "is_counterparty": true, "company": "Shell Trading"},
			},
			"messages": []map[string]any{
				{"author_email": "alice.chen@atstrading.com", "content": "500k bbl?"},
				{"author_email": "bob.marsh@shell.com", "content": "done"},
			},
		}))
	})

	parsed, err := client.ParseConversation(context.Background(), "Alice: 500k bbl?\nBob: done")
	if err != nil {
		t.Fatalf("ParseConversation() error = %v", err)
	}
	if parsed.Title != "Crude spot negotiation" {
		t.Errorf("Title = %q", parsed.Title)
	}
	if len(parsed.Users) != 2 || len(parsed.Messages) != 2 {
		t.Errorf("got %d users, %d messages, want 2 and 2", len(parsed.Users), len(parsed.Messages))
	}
	if !parsed.Users[1].IsCounterparty {
		t.Error("second user should be a counterparty")
	}
}

func TestParseConversation_NoToolCallIsError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(plainResponse("I cannot parse this."))
	})

	_, err := client.ParseConversation(context.Background(), "gibberish")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
}

func TestParseChatArguments_TitleTruncation(t *testing.T) {
	long := strings.Repeat("x", 80)
	parsed, err := parseChatArguments(`{"title":"` + long + `","users":[],"messages":[{"author_email":"a@b.c","content":"hi"}]}`)
	if err != nil {
		t.Fatalf("parseChatArguments() error = %v", err)
	}
	if len(parsed.Title) != 50 {
		t.Errorf("Title length = %d, want 50", len(parsed.Title))
	}
}

func TestGenerateMockConversation_Defaults(t *testing.T) {
	var gotPrompt string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		decodeJSONBody(t, r, &req)
		if len(req.Messages) > 0 {
			gotPrompt = req.Messages[len(req.Messages)-1].Content
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(plainResponse("Alice: 500k crude?\nBob: done"))
	})

	text, err := client.GenerateMockConversation(context.Background(), GenerateParams{})
	if err != nil {
		t.Fatalf("GenerateMockConversation() error = %v", err)
	}
	if text == "" {
		t.Error("GenerateMockConversation() returned empty text")
	}
	for _, want := range []string{"Shell Trading", "500000 BBL", "crude oil", "Rotterdam", "ATS"} {
		if !strings.Contains(gotPrompt, want) {
			t.Errorf("prompt missing default %q", want)
		}
	}
}
