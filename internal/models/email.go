// ABOUTME: Email represents a seeded email chain fixture
// ABOUTME: Never mutated after ingestion; deals reference it by id
package models

import "time"

// Email is a full raw email chain. Content holds every email in the chain.
type Email struct {
	ID           int       `json:"id"`
	Subject      string    `json:"subject"`
	Content      string    `json:"content"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
