// ABOUTME: Embedded JSON fixture data used to seed a fresh session
// ABOUTME: Emails and audio recordings are fixture-only and never persisted
package store

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/atstrading/dealrecap/internal/models"
)

//go:embed fixtures/*.json
var fixturesFS embed.FS

func loadFixture(name string, dest interface{}) error {
	data, err := fixturesFS.ReadFile("fixtures/" + name)
	if err != nil {
		return fmt.Errorf("failed to read fixture %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse fixture %s: %w", name, err)
	}
	return nil
}

// fixtureBytes returns the raw fixture file, used for verbatim seeding.
func fixtureBytes(name string) ([]byte, error) {
	data, err := fixturesFS.ReadFile("fixtures/" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", name, err)
	}
	return data, nil
}

// Emails returns the read-only email chain fixtures.
func (s *Store) Emails() ([]models.Email, error) {
	var emails []models.Email
	if err := loadFixture("emails.json", &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// EmailByID returns one email fixture or ErrNotFound.
func (s *Store) EmailByID(id int) (*models.Email, error) {
	emails, err := s.Emails()
	if err != nil {
		return nil, err
	}
	for i := range emails {
		if emails[i].ID == id {
			return &emails[i], nil
		}
	}
	return nil, fmt.Errorf("email %d: %w", id, ErrNotFound)
}

// Audios returns the read-only audio recording fixtures.
func (s *Store) Audios() ([]models.Audio, error) {
	var audios []models.Audio
	if err := loadFixture("audios.json", &audios); err != nil {
		return nil, err
	}
	return audios, nil
}

// AudioByID returns one audio fixture or ErrNotFound.
func (s *Store) AudioByID(id int) (*models.Audio, error) {
	audios, err := s.Audios()
	if err != nil {
		return nil, err
	}
	for i := range audios {
		if audios[i].ID == id {
			return &audios[i], nil
		}
	}
	return nil, fmt.Errorf("audio %d: %w", id, ErrNotFound)
}
