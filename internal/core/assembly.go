// ABOUTME: Orchestrates extraction, promotion, and recording against the store
// ABOUTME: Owns the per-chat in-flight guard and all record linking rules
package core

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/atstrading/dealrecap/internal/llm"
	"github.com/atstrading/dealrecap/internal/models"
	"github.com/atstrading/dealrecap/internal/store"
)

var (
	// ErrNoDealFound means the model analyzed the source and reported no
	// deal. Nothing is written in that case.
	ErrNoDealFound = errors.New("core: no deal found")

	// ErrExtractionInFlight guards against concurrent extraction of the
	// same chat.
	ErrExtractionInFlight = errors.New("core: extraction already in flight for this chat")

	// ErrModelUnavailable is returned when the operation needs a model
	// client that was never configured.
	ErrModelUnavailable = errors.New("core: model client is not configured")

	// ErrAlreadyPromoted means the conversation is already linked to a chat.
	ErrAlreadyPromoted = errors.New("core: conversation already promoted to a chat")
)

// DealExtractor analyzes text and returns a partial deal, or nil when no
// deal is present.
type DealExtractor interface {
	ExtractDealFromConversation(ctx context.Context, conversation string, users []models.User) (*models.Deal, error)
	ExtractDealFromEmail(ctx context.Context, emailContent string, users []models.User) (*models.Deal, error)
}

// ConversationParser structures raw conversation text into chat form.
type ConversationParser interface {
	ParseConversation(ctx context.Context, text string) (*llm.ParsedChat, error)
}

// AudioServices covers the speech-adjacent model operations.
type AudioServices interface {
	TranscribeAudio(ctx context.Context, audio io.Reader, name string) (string, error)
	FormatTranscript(ctx context.Context, transcript string, participants []string) string
	GenerateSpeech(ctx context.Context, text, voice string) ([]byte, error)
	GenerateMockConversation(ctx context.Context, params llm.GenerateParams) (string, error)
}

// Assembler ties the model operations to the record store. Any of the model
// interfaces may be nil, in which case the operations needing them return
// ErrModelUnavailable.
type Assembler struct {
	store     *store.Store
	extractor DealExtractor
	parser    ConversationParser
	audio     AudioServices

	mu       sync.Mutex
	inFlight map[int]bool
}

// NewAssembler builds an assembler. A *llm.Client satisfies all three model
// interfaces; pass nil for each when no API key is configured.
func NewAssembler(st *store.Store, extractor DealExtractor, parser ConversationParser, audio AudioServices) *Assembler {
	return &Assembler{
		store:     st,
		extractor: extractor,
		parser:    parser,
		audio:     audio,
		inFlight:  make(map[int]bool),
	}
}

// ExtractionAvailable reports whether deal extraction can run.
func (a *Assembler) ExtractionAvailable() bool { return a.extractor != nil }

// claimChat marks a chat as busy; returns false if already claimed.
func (a *Assembler) claimChat(chatID int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inFlight[chatID] {
		return false
	}
	a.inFlight[chatID] = true
	return true
}

func (a *Assembler) releaseChat(chatID int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.inFlight, chatID)
}

// ExtractDealForChat reassembles a chat transcript, runs extraction, and on
// success persists the deal plus a completed extraction record. Extraction
// runs once; transport failures surface to the caller unretried.
func (a *Assembler) ExtractDealForChat(ctx context.Context, chatID int) (*models.Deal, error) {
	if a.extractor == nil {
		return nil, ErrModelUnavailable
	}
	if !a.claimChat(chatID) {
		return nil, ErrExtractionInFlight
	}
	defer a.releaseChat(chatID)

	if _, err := a.store.ChatByID(chatID); err != nil {
		return nil, err
	}
	transcript, err := a.chatTranscript(chatID)
	if err != nil {
		return nil, err
	}
	users, err := a.store.Users()
	if err != nil {
		return nil, err
	}

	partial, err := a.extractor.ExtractDealFromConversation(ctx, transcript, users)
	if err != nil {
		return nil, err
	}
	if partial == nil {
		return nil, ErrNoDealFound
	}

	applyDealDefaults(partial)
	now := time.Now().UTC()
	partial.ChatID = &chatID
	partial.CreatedAt = now
	partial.UpdatedAt = now

	deal, err := a.store.SaveDeal(*partial)
	if err != nil {
		return nil, err
	}
	if err := a.recordExtraction(chatID, deal.ID, 0.95); err != nil {
		return nil, err
	}
	return &deal, nil
}

// ExtractDealFromEmail extracts from a seeded email chain. The deal links to
// the email only; the extraction row carries chat id 0 and lower confidence
// since email threads are noisier than live chats.
func (a *Assembler) ExtractDealFromEmail(ctx context.Context, emailID int) (*models.Deal, error) {
	if a.extractor == nil {
		return nil, ErrModelUnavailable
	}

	email, err := a.store.EmailByID(emailID)
	if err != nil {
		return nil, err
	}
	users, err := a.store.Users()
	if err != nil {
		return nil, err
	}

	content := email.Subject + "\n\n" + email.Content
	partial, err := a.extractor.ExtractDealFromEmail(ctx, content, users)
	if err != nil {
		return nil, err
	}
	if partial == nil {
		return nil, ErrNoDealFound
	}

	applyDealDefaults(partial)
	now := time.Now().UTC()
	partial.EmailID = &emailID
	partial.CreatedAt = now
	partial.UpdatedAt = now

	deal, err := a.store.SaveDeal(*partial)
	if err != nil {
		return nil, err
	}
	if err := a.recordExtraction(0, deal.ID, 0.85); err != nil {
		return nil, err
	}
	return &deal, nil
}

// recordExtraction upserts the extraction row for a chat. Chat-linked
// extractions replace any previous row for the same chat; email extractions
// (chat id 0) always append.
func (a *Assembler) recordExtraction(chatID, dealID int, confidence float64) error {
	now := time.Now().UTC()
	row := models.Extraction{
		ChatID:     chatID,
		DealID:     &dealID,
		Status:     models.StatusCompleted,
		Confidence: confidence,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if chatID != 0 {
		existing, err := a.store.ExtractionByChat(chatID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if existing != nil {
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
			return a.store.UpdateExtraction(row)
		}
	}
	_, err := a.store.SaveExtraction(row)
	return err
}

// chatTranscript rebuilds the "<name>: <content>" transcript in stored
// message order, falling back to the author email when no user row matches.
func (a *Assembler) chatTranscript(chatID int) (string, error) {
	messages, err := a.store.MessagesByChat(chatID)
	if err != nil {
		return "", err
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("core: chat %d has no messages", chatID)
	}

	var sb strings.Builder
	for _, m := range messages {
		name := fmt.Sprintf("user %d", m.UserID)
		if u, err := a.store.UserByID(m.UserID); err == nil {
			name = u.Name
		}
		fmt.Fprintf(&sb, "%s: %s\n", name, m.Content)
	}
	return sb.String(), nil
}

// applyDealDefaults fills the fields a recap must carry even when the model
// could not determine them.
func applyDealDefaults(d *models.Deal) {
	if d.Office == "" {
		d.Office = "ATS"
	}
	if d.Desk == "" {
		d.Desk = "crude"
	}
	if d.Product == "" {
		d.Product = "crude"
	}
}

// PromoteConversationToChat structures a raw conversation into chat, user,
// and message records, then links the conversation to the new chat. Users
// are deduplicated by email; an author email with no roster entry gets a
// placeholder counterparty user so attribution is never silently wrong.
func (a *Assembler) PromoteConversationToChat(ctx context.Context, conversationID int) (*models.Chat, error) {
	if a.parser == nil {
		return nil, ErrModelUnavailable
	}

	conv, err := a.store.ConversationByID(conversationID)
	if err != nil {
		return nil, err
	}
	if conv.ChatID != nil {
		return nil, ErrAlreadyPromoted
	}

	parsed, err := a.parser.ParseConversation(ctx, conv.Conversation)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	chat, err := a.store.SaveChat(models.Chat{Title: parsed.Title, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return nil, err
	}

	idsByEmail := make(map[string]int, len(parsed.Users))
	for _, pu := range parsed.Users {
		id, err := a.upsertUser(pu)
		if err != nil {
			return nil, err
		}
		idsByEmail[pu.Email] = id
	}

	for _, pm := range parsed.Messages {
		userID, ok := idsByEmail[pm.AuthorEmail]
		if !ok {
			id, err := a.upsertUser(llm.ParsedUser{
				Name:           pm.AuthorEmail,
				Email:          pm.AuthorEmail,
				IsCounterparty: true,
			})
			if err != nil {
				return nil, err
			}
			idsByEmail[pm.AuthorEmail] = id
			userID = id
		}

		date := now
		if t := parseMessageTime(pm.Timestamp); t != nil {
			date = *t
		}
		if _, err := a.store.SaveMessage(models.Message{
			ChatID:  chat.ID,
			UserID:  userID,
			Date:    date,
			Content: pm.Content,
		}); err != nil {
			return nil, err
		}
	}

	conv.ChatID = &chat.ID
	if err := a.store.UpdateConversation(*conv); err != nil {
		return nil, err
	}
	return &chat, nil
}

// upsertUser reuses an existing user row by email or creates one.
func (a *Assembler) upsertUser(pu llm.ParsedUser) (int, error) {
	existing, err := a.store.UserByEmail(pu.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	user, err := a.store.SaveUser(models.User{
		Name:           pu.Name,
		Email:          pu.Email,
		IsCounterparty: pu.IsCounterparty,
		Company:        pu.Company,
		Office:         pu.Office,
		Desk:           pu.Desk,
	})
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

func parseMessageTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	return nil
}

// RecordConversation transcribes uploaded audio, formats the transcript, and
// saves it as a new conversation row.
func (a *Assembler) RecordConversation(ctx context.Context, audio io.Reader, name string, participants []string) (*models.Conversation, error) {
	if a.audio == nil {
		return nil, ErrModelUnavailable
	}

	transcript, err := a.audio.TranscribeAudio(ctx, audio, name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("core: transcription produced no text")
	}

	formatted := a.audio.FormatTranscript(ctx, transcript, participants)
	conv, err := a.store.SaveConversation(models.Conversation{Conversation: formatted})
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// CreateConversation saves raw conversation text with no audio provenance.
func (a *Assembler) CreateConversation(text string) (*models.Conversation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("core: conversation text is empty")
	}
	conv, err := a.store.SaveConversation(models.Conversation{Conversation: text})
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// GenerateConversation produces a mock negotiation and stores it.
func (a *Assembler) GenerateConversation(ctx context.Context, params llm.GenerateParams) (*models.Conversation, error) {
	if a.audio == nil {
		return nil, ErrModelUnavailable
	}

	text, err := a.audio.GenerateMockConversation(ctx, params)
	if err != nil {
		return nil, err
	}
	conv, err := a.store.SaveConversation(models.Conversation{Conversation: text})
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// AttachSpeech synthesizes audio for a conversation and stores the payload
// base64-encoded on the row.
func (a *Assembler) AttachSpeech(ctx context.Context, conversationID int, voice string) (*models.Conversation, error) {
	if a.audio == nil {
		return nil, ErrModelUnavailable
	}

	conv, err := a.store.ConversationByID(conversationID)
	if err != nil {
		return nil, err
	}

	payload, err := a.audio.GenerateSpeech(ctx, conv.Conversation, voice)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	conv.AudioPayload = encodeAudio(payload)
	conv.AudioGeneratedAt = &now
	if err := a.store.UpdateConversation(*conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func encodeAudio(payload []byte) string {
	return base64.StdEncoding.EncodeToString(payload)
}
