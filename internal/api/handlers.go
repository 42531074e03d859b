// ABOUTME: HTTP handlers bridging the router to the assembly layer
// ABOUTME: Maps assembly and store errors onto status codes
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atstrading/dealrecap/internal/core"
	"github.com/atstrading/dealrecap/internal/store"
)

type APIHandler struct {
	store     *store.Store
	assembler *core.Assembler
}

func NewAPIHandler(st *store.Store, assembler *core.Assembler) *APIHandler {
	return &APIHandler{store: st, assembler: assembler}
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "ok",
		"extraction_enabled": h.assembler.ExtractionAvailable(),
	})
}

func (h *APIHandler) ListDealsHandler(w http.ResponseWriter, r *http.Request) {
	deals, err := h.store.Deals()
	if err != nil {
		h.storeError(w, "listing deals", err)
		return
	}
	writeJSON(w, http.StatusOK, deals)
}

func (h *APIHandler) GetDealHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "dealID")
	if !ok {
		return
	}
	deal, err := h.store.DealByID(id)
	if err != nil {
		h.storeError(w, "getting deal", err)
		return
	}
	writeJSON(w, http.StatusOK, deal)
}

func (h *APIHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.Users()
	if err != nil {
		h.storeError(w, "listing users", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *APIHandler) ListChatsHandler(w http.ResponseWriter, r *http.Request) {
	chats, err := h.store.Chats()
	if err != nil {
		h.storeError(w, "listing chats", err)
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

// GetChatHandler returns a chat with its messages in chronological order.
func (h *APIHandler) GetChatHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "chatID")
	if !ok {
		return
	}
	chat, err := h.store.ChatByID(id)
	if err != nil {
		h.storeError(w, "getting chat", err)
		return
	}
	messages, err := h.store.MessagesByChat(id)
	if err != nil {
		h.storeError(w, "getting chat messages", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"chat":     chat,
		"messages": messages,
	})
}

func (h *APIHandler) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.store.Conversations()
	if err != nil {
		h.storeError(w, "listing conversations", err)
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

func (h *APIHandler) ListEmailsHandler(w http.ResponseWriter, r *http.Request) {
	emails, err := h.store.Emails()
	if err != nil {
		h.storeError(w, "listing emails", err)
		return
	}
	writeJSON(w, http.StatusOK, emails)
}

func (h *APIHandler) ListAudiosHandler(w http.ResponseWriter, r *http.Request) {
	audios, err := h.store.Audios()
	if err != nil {
		h.storeError(w, "listing audios", err)
		return
	}
	writeJSON(w, http.StatusOK, audios)
}

// ExtractChatHandler runs deal extraction for a chat. A model that finds no
// deal is a successful request with found:false, not an error.
func (h *APIHandler) ExtractChatHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "chatID")
	if !ok {
		return
	}

	deal, err := h.assembler.ExtractDealForChat(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"found": true, "deal": deal})
	case errors.Is(err, core.ErrNoDealFound):
		writeJSON(w, http.StatusOK, map[string]any{"found": false})
	case errors.Is(err, core.ErrExtractionInFlight):
		http.Error(w, "extraction already in progress for this chat", http.StatusConflict)
	case errors.Is(err, core.ErrModelUnavailable):
		http.Error(w, "extraction unavailable: no API key configured", http.StatusServiceUnavailable)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "chat not found", http.StatusNotFound)
	default:
		log.Printf("extracting deal for chat %d: %v", id, err)
		http.Error(w, "extraction failed", http.StatusBadGateway)
	}
}

func (h *APIHandler) ExtractEmailHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "emailID")
	if !ok {
		return
	}

	deal, err := h.assembler.ExtractDealFromEmail(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"found": true, "deal": deal})
	case errors.Is(err, core.ErrNoDealFound):
		writeJSON(w, http.StatusOK, map[string]any{"found": false})
	case errors.Is(err, core.ErrModelUnavailable):
		http.Error(w, "extraction unavailable: no API key configured", http.StatusServiceUnavailable)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "email not found", http.StatusNotFound)
	default:
		log.Printf("extracting deal from email %d: %v", id, err)
		http.Error(w, "extraction failed", http.StatusBadGateway)
	}
}

type createConversationRequest struct {
	Conversation string `json:"conversation"`
}

func (h *APIHandler) CreateConversationHandler(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Conversation == "" {
		http.Error(w, "conversation text is required", http.StatusBadRequest)
		return
	}

	conv, err := h.assembler.CreateConversation(req.Conversation)
	if err != nil {
		h.storeError(w, "creating conversation", err)
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (h *APIHandler) PromoteConversationHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "conversationID")
	if !ok {
		return
	}

	chat, err := h.assembler.PromoteConversationToChat(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, chat)
	case errors.Is(err, core.ErrAlreadyPromoted):
		http.Error(w, "conversation already promoted", http.StatusConflict)
	case errors.Is(err, core.ErrModelUnavailable):
		http.Error(w, "promotion unavailable: no API key configured", http.StatusServiceUnavailable)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "conversation not found", http.StatusNotFound)
	default:
		log.Printf("promoting conversation %d: %v", id, err)
		http.Error(w, "promotion failed", http.StatusBadGateway)
	}
}

type generateSpeechRequest struct {
	Voice string `json:"voice"`
}

func (h *APIHandler) GenerateSpeechHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "conversationID")
	if !ok {
		return
	}

	var req generateSpeechRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	conv, err := h.assembler.AttachSpeech(r.Context(), id, req.Voice)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, conv)
	case errors.Is(err, core.ErrModelUnavailable):
		http.Error(w, "speech unavailable: no API key configured", http.StatusServiceUnavailable)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "conversation not found", http.StatusNotFound)
	default:
		log.Printf("generating speech for conversation %d: %v", id, err)
		http.Error(w, "speech generation failed", http.StatusBadGateway)
	}
}

// TranscribeHandler accepts a multipart audio upload, transcribes it, and
// saves the formatted transcript as a conversation.
func (h *APIHandler) TranscribeHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		http.Error(w, "audio file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Give the upload a unique name so the model can infer the container
	// format from the original extension.
	name := uuid.NewString() + filepath.Ext(header.Filename)
	participants := r.MultipartForm.Value["participant"]

	conv, err := h.assembler.RecordConversation(r.Context(), file, name, participants)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, conv)
	case errors.Is(err, core.ErrModelUnavailable):
		http.Error(w, "transcription unavailable: no API key configured", http.StatusServiceUnavailable)
	default:
		log.Printf("transcribing upload %s: %v", name, err)
		http.Error(w, "transcription failed", http.StatusBadGateway)
	}
}

// ResetSessionHandler wipes all session keys and reseeds from fixtures.
func (h *APIHandler) ResetSessionHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Reset(); err != nil {
		h.storeError(w, "resetting session", err)
		return
	}
	if err := h.store.Initialize(); err != nil {
		h.storeError(w, "reseeding session", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// storeError maps record store failures onto status codes.
func (h *APIHandler) storeError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, store.ErrUnavailable):
		log.Printf("%s: %v", action, err)
		http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
	default:
		log.Printf("%s: %v", action, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id <= 0 {
		http.Error(w, "invalid "+param, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}
