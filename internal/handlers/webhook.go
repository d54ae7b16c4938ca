// internal/handlers/webhook.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/launchcast/stealgame/internal/webhook"
)

// StealWebhookHandler receives the signed inbound cast and drives the
// command processor. Client-input failures return 4xx with a short
// reason; anything unexpected is a generic 500.
func (s *Server) StealWebhookHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	resolution, err := s.processor.Process(r.Context(), body, r.Header.Get(webhook.SignatureHeader))
	if err != nil {
		status := webhook.StatusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.WithError(err).Error("webhook processing failed")
			http.Error(w, "failed to process steal", status)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resolution)
}
