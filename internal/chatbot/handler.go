package chatbot

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// HandleChatbot — answers one question
func (h *Handler) HandleChatbot(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Question string `json:"question"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}

	if blank(payload.Question) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "question is required"})
		return
	}

	answer, err := h.svc.Ask(r.Context(), payload.Question)
	if err != nil {
		log.Error().Str("component", "chatbot").Err(err).Msg("ask failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"type": "text", "data": answer})
}

// HandleReset — drops the in-memory set and reloads it from the database
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Reset(r.Context()); err != nil {
		log.Error().Str("component", "chatbot").Err(err).Msg("reset failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"records": h.svc.Records()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Str("component", "chatbot").Err(err).Msg("write response")
	}
}
