package handlers

import (
	"encoding/json"
	"net/http"
)

type recommendRequest struct {
	UserID string `json:"user_id"`
}

// HandleRecommend computes and persists recommendations for a user. GET
// takes the user id as a query parameter, POST as a JSON body.
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	var userID string

	switch r.Method {
	case http.MethodGet:
		userID = r.URL.Query().Get("user_id")
	case http.MethodPost:
		var req recommendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		userID = req.UserID
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if userID == "" {
		h.writeError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.recommender.Recommend(r.Context(), userID)
	if err != nil {
		h.writeError(w, "Failed to compute recommendations", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"user_id":         userID,
		"recommendations": result.Books,
		"degraded":        result.Degraded,
	})
}
