// ABOUTME: HTTP handler tests against a seeded in-memory store
// ABOUTME: Covers status mapping for extraction, promotion, and reset
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/atstrading/dealrecap/internal/core"
	"github.com/atstrading/dealrecap/internal/llm"
	"github.com/atstrading/dealrecap/internal/models"
	"github.com/atstrading/dealrecap/internal/session"
	"github.com/atstrading/dealrecap/internal/store"
)

type fixedExtractor struct {
	deal *models.Deal
	err  error
}

func (f *fixedExtractor) ExtractDealFromConversation(ctx context.Context, conversation string, users []models.User) (*models.Deal, error) {
	if f.deal == nil {
		return nil, f.err
	}
	d := *f.deal
	return &d, f.err
}

func (f *fixedExtractor) ExtractDealFromEmail(ctx context.Context, emailContent string, users []models.User) (*models.Deal, error) {
	return f.ExtractDealFromConversation(ctx, emailContent, users)
}

type fixedParser struct {
	parsed *llm.ParsedChat
	err    error
}

func (f *fixedParser) ParseConversation(ctx context.Context, text string) (*llm.ParsedChat, error) {
	return f.parsed, f.err
}

func newTestServer(t *testing.T, extractor core.DealExtractor, parser core.ConversationParser) (http.Handler, *store.Store) {
	t.Helper()
	st := store.New(session.NewMemory())
	if err := st.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	assembler := core.NewAssembler(st, extractor, parser, nil)
	return NewRouter(NewAPIHandler(st, assembler)), st
}

func TestHealthHandler(t *testing.T) {
	router, _ := newTestServer(t, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["extraction_enabled"] != false {
		t.Errorf("extraction_enabled = %v, want false without model client", body["extraction_enabled"])
	}
}

func TestListDealsHandler_Seeded(t *testing.T) {
	router, _ := newTestServer(t, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/deals", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var deals []models.Deal
	if err := json.Unmarshal(rec.Body.Bytes(), &deals); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(deals) != 2 {
		t.Errorf("got %d seeded deals, want 2", len(deals))
	}
}

func TestGetChatHandler_IncludesMessages(t *testing.T) {
	router, _ := newTestServer(t, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chats/1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Chat     models.Chat      `json:"chat"`
		Messages []models.Message `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Chat.ID != 1 {
		t.Errorf("chat id = %d, want 1", body.Chat.ID)
	}
	if len(body.Messages) == 0 {
		t.Error("chat 1 should have seeded messages")
	}
}

func TestGetDealHandler_NotFound(t *testing.T) {
	router, _ := newTestServer(t, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/deals/999", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestExtractChatHandler_NoModelClient(t *testing.T) {
	router, _ := newTestServer(t, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chats/1/extract", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without model client", rec.Code)
	}
}

func TestExtractChatHandler_FoundDeal(t *testing.T) {
	extractor := &fixedExtractor{deal: &models.Deal{
		CounterPartyCompany: "Shell Trading",
		Office:              "ATS",
		Desk:                "crude",
		Product:             "crude",
		Volume:              500000,
	}}
	router, _ := newTestServer(t, extractor, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chats/1/extract", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Found bool        `json:"found"`
		Deal  models.Deal `json:"deal"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if !body.Found {
		t.Error("found = false, want true")
	}
	if body.Deal.ChatID == nil || *body.Deal.ChatID != 1 {
		t.Errorf("deal ChatID = %v, want 1", body.Deal.ChatID)
	}
}

func TestExtractChatHandler_NoDealFound(t *testing.T) {
	router, _ := newTestServer(t, &fixedExtractor{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chats/1/extract", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["found"] != false {
		t.Errorf("found = %v, want false", body["found"])
	}
}

func TestExtractChatHandler_ChatNotFound(t *testing.T) {
	router, _ := newTestServer(t, &fixedExtractor{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chats/999/extract", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCreateConversationHandler(t *testing.T) {
	router, st := newTestServer(t, nil, nil)

	body := strings.NewReader(`{"conversation":"Alice: 500k bbl?\nBob: done"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/conversations", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	var conv models.Conversation
	if err := json.Unmarshal(rec.Body.Bytes(), &conv); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if conv.ID == 0 {
		t.Error("conversation was not assigned an id")
	}

	stored, err := st.ConversationByID(conv.ID)
	if err != nil {
		t.Fatalf("ConversationByID() error = %v", err)
	}
	if stored.Conversation == "" {
		t.Error("conversation text not persisted")
	}
}

func TestCreateConversationHandler_EmptyBody(t *testing.T) {
	router, _ := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/conversations", strings.NewReader(`{"conversation":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPromoteConversationHandler(t *testing.T) {
	parser := &fixedParser{parsed: &llm.ParsedChat{
		Title: "Promoted chat",
		Users: []llm.ParsedUser{
			{Name: "Alice Chen", Email: "alice.chen@atstrading.com"},
		},
		Messages: []llm.ParsedMessage{
			{AuthorEmail: "alice.chen@atstrading.com", Content: "hello"},
		},
	}}
	router, st := newTestServer(t, nil, parser)

	conv, err := st.SaveConversation(models.Conversation{Conversation: "Alice: hello"})
	if err != nil {
		t.Fatalf("SaveConversation() error = %v", err)
	}

	url := "/api/conversations/" + strconv.Itoa(conv.ID) + "/promote"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, url, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	// Second promotion conflicts.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, url, nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("second promotion status = %d, want 409", rec.Code)
	}
}

func TestResetSessionHandler_Reseeds(t *testing.T) {
	router, st := newTestServer(t, nil, nil)

	if _, err := st.SaveConversation(models.Conversation{Conversation: "scratch"}); err != nil {
		t.Fatalf("SaveConversation() error = %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session/reset", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	conversations, err := st.Conversations()
	if err != nil {
		t.Fatalf("Conversations() error = %v", err)
	}
	// Back to the single seeded conversation.
	if len(conversations) != 1 {
		t.Errorf("got %d conversations after reset, want 1", len(conversations))
	}
}
