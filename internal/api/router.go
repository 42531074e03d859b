// ABOUTME: HTTP route table for the deal recap API
// ABOUTME: All routes live under /api with standard chi middleware
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HealthHandler)

		r.Get("/deals", h.ListDealsHandler)
		r.Get("/deals/{dealID}", h.GetDealHandler)
		r.Get("/users", h.ListUsersHandler)
		r.Get("/chats", h.ListChatsHandler)
		r.Get("/chats/{chatID}", h.GetChatHandler)
		r.Get("/conversations", h.ListConversationsHandler)
		r.Get("/emails", h.ListEmailsHandler)
		r.Get("/audios", h.ListAudiosHandler)

		r.Post("/chats/{chatID}/extract", h.ExtractChatHandler)
		r.Post("/emails/{emailID}/extract", h.ExtractEmailHandler)
		r.Post("/conversations", h.CreateConversationHandler)
		r.Post("/conversations/{conversationID}/promote", h.PromoteConversationHandler)
		r.Post("/conversations/{conversationID}/speech", h.GenerateSpeechHandler)
		r.Post("/transcriptions", h.TranscribeHandler)

		r.Post("/session/reset", h.ResetSessionHandler)
	})

	return r
}
