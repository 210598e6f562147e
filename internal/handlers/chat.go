package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type saveRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
	Role    string `json:"role"`
}

type searchRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
	Limit  int    `json:"limit"`
}

// HandleChat processes one chat turn and returns the assistant's result.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Message == "" {
		h.writeError(w, "user_id and message are required", http.StatusBadRequest)
		return
	}

	result, err := h.assistant.Handle(r.Context(), req.UserID, req.Message)
	if err != nil {
		h.writeError(w, "Failed to process message", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"request_id":       uuid.NewString(),
		"message":          result.Message,
		"quantity":         result.RequestedQuantity,
		"topic":            result.RequestedTopic,
		"found_books":      result.FoundBooks,
		"purchase_details": result.PurchaseDetails,
	})
}

// HandleChatSave stores a single chat message without running the assistant.
func (h *Handler) HandleChatSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.history == nil {
		h.writeError(w, "Chat history is not configured", http.StatusServiceUnavailable)
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Message == "" {
		h.writeError(w, "user_id and message are required", http.StatusBadRequest)
		return
	}

	id, err := h.history.Save(r.Context(), req.UserID, req.Message, req.Role)
	if err != nil {
		h.writeError(w, "Failed to save message", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]string{"id": id})
}

// HandleChatHistory returns a user's recent messages, oldest first.
func (h *Handler) HandleChatHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.history == nil {
		h.writeError(w, "Chat history is not configured", http.StatusServiceUnavailable)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.writeError(w, "user_id is required", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.history.History(r.Context(), userID, limit)
	if err != nil {
		h.writeError(w, "Failed to load history", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]interface{}{"user_id": userID, "messages": messages})
}

// HandleSearch runs a similarity search over a user's chat history.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.history == nil {
		h.writeError(w, "Chat history is not configured", http.StatusServiceUnavailable)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Query == "" {
		h.writeError(w, "user_id and query are required", http.StatusBadRequest)
		return
	}

	messages, err := h.history.Search(r.Context(), req.UserID, req.Query, req.Limit)
	if err != nil {
		h.writeError(w, "Failed to search history", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]interface{}{"user_id": req.UserID, "messages": messages})
}
