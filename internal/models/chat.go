// ABOUTME: Chat and Message types for materialized trading conversations
// ABOUTME: Messages are stored flat and joined to chats by ChatID
package models

import "time"

// Chat groups the messages of one trading conversation.
type Chat struct {
	ID        int       `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one turn of a chat. UserID must resolve to a User row and
// ChatID to a Chat row within the same session.
type Message struct {
	ID      int       `json:"id"`
	ChatID  int       `json:"chat_id"`
	UserID  int       `json:"user_id"`
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
}
