package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

// HandleStartVoice launches the voice loop in the background. Only one loop
// runs at a time; repeated requests while it is active are rejected.
func (h *Handler) HandleStartVoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.voice == nil {
		h.writeError(w, "Voice assistant is not configured", http.StatusServiceUnavailable)
		return
	}

	if !h.voiceRunning.CompareAndSwap(false, true) {
		h.writeJSON(w, map[string]string{"status": "already running"})
		return
	}

	go func() {
		defer h.voiceRunning.Store(false)
		if err := h.voice(context.Background()); err != nil {
			slog.Error("Voice loop exited with error", "err", err)
		}
	}()

	h.writeJSON(w, map[string]string{"status": "started"})
}

// HandleHealthcheck reports liveness.
func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}
