// Package handlers exposes the assistant, recommendation engine and chat
// history over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/bookworm-ai/bookworm/internal/chatlog"
	"github.com/bookworm-ai/bookworm/internal/models"
	"github.com/bookworm-ai/bookworm/internal/recommend"
)

// Assistant is the chat entry point shared by every front-end.
type Assistant interface {
	Handle(ctx context.Context, userID, text string) (models.ChatResult, error)
}

// Recommender computes recommendations for one user.
type Recommender interface {
	Recommend(ctx context.Context, userID string) (recommend.Result, error)
}

// ChatHistory is the chat-history surface the HTTP layer needs.
type ChatHistory interface {
	Save(ctx context.Context, userID, message, role string) (string, error)
	History(ctx context.Context, userID string, limit int) ([]chatlog.Message, error)
	Search(ctx context.Context, userID, query string, k int) ([]chatlog.Message, error)
}

// VoiceRunner runs the voice loop to completion. Started at most once.
type VoiceRunner func(ctx context.Context) error

type Handler struct {
	assistant   Assistant
	recommender Recommender
	history     ChatHistory
	voice       VoiceRunner

	voiceRunning atomic.Bool
}

// New creates a Handler. history and voice may be nil; their routes then
// report the feature as unavailable.
func New(assistant Assistant, recommender Recommender, history ChatHistory, voice VoiceRunner) *Handler {
	return &Handler{
		assistant:   assistant,
		recommender: recommender,
		history:     history,
		voice:       voice,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}
