// ABOUTME: Extraction records one attempt to derive a Deal from a Chat
// ABOUTME: DealID is set once extraction succeeds
package models

import "time"

// ExtractionStatus is the lifecycle state of an extraction attempt.
type ExtractionStatus string

const (
	StatusPending    ExtractionStatus = "PENDING"
	StatusProcessing ExtractionStatus = "PROCESSING"
	StatusCompleted  ExtractionStatus = "COMPLETED"
	StatusFailed     ExtractionStatus = "FAILED"
)

// Extraction links a chat to the deal extracted from it. ChatID 0 marks an
// email-sourced extraction, which has no originating chat. Confidence is in
// [0, 1].
type Extraction struct {
	ID         int              `json:"id"`
	ChatID     int              `json:"chat_id"`
	DealID     *int             `json:"deal_id,omitempty"`
	Status     ExtractionStatus `json:"status"`
	Confidence float64          `json:"confidence,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
