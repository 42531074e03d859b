// ABOUTME: User represents a trading conversation participant
// ABOUTME: Email is the natural key; ingestion must reuse rows with a matching email
package models

// User is either one of our traders (IsCounterparty false, with office/desk)
// or an external counterparty contact (IsCounterparty true, with company).
type User struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	IsCounterparty bool   `json:"is_counterparty"`
	Company        string `json:"company,omitempty"`
	Office         string `json:"office,omitempty"`
	Desk           string `json:"desk,omitempty"`
}
