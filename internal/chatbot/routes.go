package chatbot

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/chatbot", h.HandleChatbot)
	r.Post("/reset-memory", h.HandleReset)
	r.Get("/health", h.HandleHealth)
}
