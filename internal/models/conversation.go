// ABOUTME: Conversation holds raw conversation text before chat promotion
// ABOUTME: Audio is read-only fixture data referenced by conversations
package models

import "time"

// Conversation is a raw text blob, typically a formatted transcript. ChatID
// stays nil until the conversation is promoted to a chat. AudioPayload holds
// base64-encoded generated speech, if any.
type Conversation struct {
	ID               int        `json:"id"`
	Conversation     string     `json:"conversation"`
	ChatID           *int       `json:"chat_id,omitempty"`
	AudioID          *int       `json:"audio_id,omitempty"`
	AudioPayload     string     `json:"audio_payload,omitempty"`
	AudioGeneratedAt *time.Time `json:"audio_generated_at,omitempty"`
}

// Audio is a seeded recording fixture. The pipeline never creates Audio rows;
// conversations derived from audio are separate Conversation rows.
type Audio struct {
	ID               int       `json:"id"`
	Participants     []string  `json:"participants"`
	AudioPayload     string    `json:"audio_payload"`
	AudioGeneratedAt time.Time `json:"audio_generated_at"`
}
