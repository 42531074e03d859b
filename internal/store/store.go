// ABOUTME: Record store over a session KV backend with six JSON-array collections
// ABOUTME: Handles idempotent fixture seeding and synthetic id assignment
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/atstrading/dealrecap/internal/models"
	"github.com/atstrading/dealrecap/internal/session"
)

// Persisted state layout: six string-keyed JSON arrays plus the initialized
// sentinel. Key names are part of the session data contract.
const (
	keyDeals         = "deal_recap_deals"
	keyUsers         = "deal_recap_users"
	keyChats         = "deal_recap_chats"
	keyMessages      = "deal_recap_messages"
	keyExtractions   = "deal_recap_extractions"
	keyConversations = "deal_recap_conversations"
	keyInitialized   = "deal_recap_initialized"
)

var (
	// ErrUnavailable indicates the session backend could not be reached.
	ErrUnavailable = errors.New("store: session storage unavailable")
	// ErrMalformed indicates a collection failed to serialize or deserialize.
	ErrMalformed = errors.New("store: malformed collection")
	// ErrNotFound indicates a row lookup missed.
	ErrNotFound = errors.New("store: not found")
)

// Store provides access to the six session collections. The mutex serializes
// every read-modify-write so concurrent save paths cannot produce duplicate
// ids or dropped rows.
type Store struct {
	backend session.Backend
	mu      sync.Mutex
}

// New creates a store over the given session backend. The handle is meant to
// be constructed once at startup and passed to every component that needs it.
func New(backend session.Backend) *Store {
	return &Store{backend: backend}
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// seedFiles maps collection keys to their fixture files.
var seedFiles = map[string]string{
	keyDeals:         "deals.json",
	keyUsers:         "users.json",
	keyChats:         "chats.json",
	keyMessages:      "messages.json",
	keyExtractions:   "extractions.json",
	keyConversations: "conversations.json",
}

// Initialize seeds every collection from the embedded fixtures exactly once
// per session. Re-entrant: the sentinel check and the writes happen under the
// store mutex, so concurrent entry points cannot double-seed.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	done, err := s.initialized()
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	for key, file := range seedFiles {
		data, err := fixtureBytes(file)
		if err != nil {
			return err
		}
		if err := s.backend.Set(key, data); err != nil {
			return fmt.Errorf("%w: seeding %s: %v", ErrUnavailable, key, err)
		}
	}

	if err := s.backend.Set(keyInitialized, []byte("true")); err != nil {
		return fmt.Errorf("%w: writing sentinel: %v", ErrUnavailable, err)
	}
	return nil
}

// Initialized reports whether the session has been seeded.
func (s *Store) Initialized() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized()
}

func (s *Store) initialized() (bool, error) {
	data, err := s.backend.Get(keyInitialized)
	if errors.Is(err, session.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: reading sentinel: %v", ErrUnavailable, err)
	}
	return string(data) == "true", nil
}

// Reset clears every collection and the sentinel. The next Initialize call
// reseeds from fixtures.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := []string{keyDeals, keyUsers, keyChats, keyMessages, keyExtractions, keyConversations, keyInitialized}
	for _, key := range keys {
		if err := s.backend.Delete(key); err != nil {
			return fmt.Errorf("%w: clearing %s: %v", ErrUnavailable, key, err)
		}
	}
	return nil
}

// getCollection reads a whole collection. An absent key yields an empty
// slice; backend failures and bad JSON surface as distinct errors.
func getCollection[T any](s *Store, key string) ([]T, error) {
	data, err := s.backend.Get(key)
	if errors.Is(err, session.ErrKeyNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnavailable, key, err)
	}

	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return rows, nil
}

// putCollection overwrites a whole collection. Callers must have merged.
func putCollection[T any](s *Store, key string, rows []T) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	if err := s.backend.Set(key, data); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// nextID returns max(existing ids) + 1, or 1 for an empty collection.
func nextID(ids []int) int {
	next := 1
	for _, id := range ids {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

// Deal accessors

func (s *Store) Deals() ([]models.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getCollection[models.Deal](s, keyDeals)
}

func (s *Store) ReplaceDeals(deals []models.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putCollection(s, keyDeals, deals)
}

// SaveDeal appends a deal with the next free id and returns the stored row.
func (s *Store) SaveDeal(deal models.Deal) (models.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deals, err := getCollection[models.Deal](s, keyDeals)
	if err != nil {
		return models.Deal{}, err
	}
	ids := make([]int, len(deals))
	for i, d := range deals {
		ids[i] = d.ID
	}
	deal.ID = nextID(ids)
	deals = append(deals, deal)
	if err := putCollection(s, keyDeals, deals); err != nil {
		return models.Deal{}, err
	}
	return deal, nil
}

func (s *Store) DealByID(id int) (*models.Deal, error) {
	deals, err := s.Deals()
	if err != nil {
		return nil, err
	}
	for i := range deals {
		if deals[i].ID == id {
			return &deals[i], nil
		}
	}
	return nil, fmt.Errorf("deal %d: %w", id, ErrNotFound)
}

// User accessors

func (s *Store) Users() ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getCollection[models.User](s, keyUsers)
}

func (s *Store) ReplaceUsers(users []models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putCollection(s, keyUsers, users)
}

func (s *Store) SaveUser(user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := getCollection[models.User](s, keyUsers)
	if err != nil {
		return models.User{}, err
	}
	ids := make([]int, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	user.ID = nextID(ids)
	users = append(users, user)
	if err := putCollection(s, keyUsers, users); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// UserByEmail looks a user up by their natural key.
func (s *Store) UserByEmail(email string) (*models.User, error) {
	users, err := s.Users()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
}

func (s *Store) UserByID(id int) (*models.User, error) {
	users, err := s.Users()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
}

// Chat accessors

func (s *Store) Chats() ([]models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getCollection[models.Chat](s, keyChats)
}

func (s *Store) ReplaceChats(chats []models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putCollection(s, keyChats, chats)
}

func (s *Store) SaveChat(chat models.Chat) (models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chats, err := getCollection[models.Chat](s, keyChats)
	if err != nil {
		return models.Chat{}, err
	}
	ids := make([]int, len(chats))
	for i, c := range chats {
		ids[i] = c.ID
	}
	chat.ID = nextID(ids)
	chats = append(chats, chat)
	if err := putCollection(s, keyChats, chats); err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

func (s *Store) ChatByID(id int) (*models.Chat, error) {
	chats, err := s.Chats()
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].ID == id {
			return &chats[i], nil
		}
	}
	return nil, fmt.Errorf("chat %d: %w", id, ErrNotFound)
}

// Message accessors

func (s *Store) Messages() ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getCollection[models.Message](s, keyMessages)
}

func (s *Store) ReplaceMessages(messages []models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putCollection(s, keyMessages, messages)
}

func (s *Store) SaveMessage(message models.Message) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, err := getCollection[models.Message](s, keyMessages)
	if err != nil {
		return models.Message{}, err
	}
	ids := make([]int, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}
	message.ID = nextID(ids)
	messages = append(messages, message)
	if err := putCollection(s, keyMessages, messages); err != nil {
		return models.Message{}, err
	}
	return message, nil
}

// MessagesByChat returns a chat's messages in chronological order. Ties on
// the timestamp fall back to id order.
func (s *Store) MessagesByChat(chatID int) ([]models.Message, error) {
	messages, err := s.Messages()
	if err != nil {
		return nil, err
	}
	var out []models.Message
	for _, m := range messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// Extraction accessors

func (s *Store) Extractions() ([]models.Extraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getCollection[models.Extraction](s, keyExtractions)
}

func (s *Store) ReplaceExtractions(extractions []models.Extraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putCollection(s, keyExtractions, extractions)
}

func (s *Store) SaveExtraction(extraction models.Extraction) (models.Extraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	extractions, err := getCollection[models.Extraction](s, keyExtractions)
	if err != nil {
		return models.Extraction{}, err
	}
	ids := make([]int, len(extractions))
	for i, e := range extractions {
		ids[i] = e.ID
	}
	extraction.ID = nextID(ids)
	extractions = append(extractions, extraction)
	if err := putCollection(s, keyExtractions, extractions); err != nil {
		return models.Extraction{}, err
	}
	return extraction, nil
}

// ExtractionByChat returns the first extraction recorded for a chat, or
// ErrNotFound when the chat has none.
func (s *Store) ExtractionByChat(chatID int) (*models.Extraction, error) {
	extractions, err := s.Extractions()
	if err != nil {
		return nil, err
	}
	for i := range extractions {
		if extractions[i].ChatID == chatID {
			return &extractions[i], nil
		}
	}
	return nil, fmt.Errorf("extraction for chat %d: %w", chatID, ErrNotFound)
}

// UpdateExtraction replaces the stored row with the same id.
func (s *Store) UpdateExtraction(extraction models.Extraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	extractions, err := getCollection[models.Extraction](s, keyExtractions)
	if err != nil {
		return err
	}
	for i := range extractions {
		if extractions[i].ID == extraction.ID {
			extractions[i] = extraction
			return putCollection(s, keyExtractions, extractions)
		}
	}
	return fmt.Errorf("extraction %d: %w", extraction.ID, ErrNotFound)
}

// Conversation accessors

func (s *Store) Conversations() ([]models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getCollection[models.Conversation](s, keyConversations)
}

func (s *Store) ReplaceConversations(conversations []models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putCollection(s, keyConversations, conversations)
}

func (s *Store) SaveConversation(conversation models.Conversation) (models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversations, err := getCollection[models.Conversation](s, keyConversations)
	if err != nil {
		return models.Conversation{}, err
	}
	ids := make([]int, len(conversations))
	for i, c := range conversations {
		ids[i] = c.ID
	}
	conversation.ID = nextID(ids)
	conversations = append(conversations, conversation)
	if err := putCollection(s, keyConversations, conversations); err != nil {
		return models.Conversation{}, err
	}
	return conversation, nil
}

func (s *Store) ConversationByID(id int) (*models.Conversation, error) {
	conversations, err := s.Conversations()
	if err != nil {
		return nil, err
	}
	for i := range conversations {
		if conversations[i].ID == id {
			return &conversations[i], nil
		}
	}
	return nil, fmt.Errorf("conversation %d: %w", id, ErrNotFound)
}

// UpdateConversation replaces the stored row with the same id.
func (s *Store) UpdateConversation(conversation models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversations, err := getCollection[models.Conversation](s, keyConversations)
	if err != nil {
		return err
	}
	for i := range conversations {
		if conversations[i].ID == conversation.ID {
			conversations[i] = conversation
			return putCollection(s, keyConversations, conversations)
		}
	}
	return fmt.Errorf("conversation %d: %w", conversation.ID, ErrNotFound)
}
