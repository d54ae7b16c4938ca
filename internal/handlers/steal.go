// internal/handlers/steal.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/launchcast/stealgame/internal/auth"
)

// CandidatesHandler returns up to three steal candidates for a token.
// The requester is identified from the optional auth_token cookie; an
// absent or invalid token selects the anonymous (non-personalized)
// path rather than failing.
func (s *Server) CandidatesHandler(w http.ResponseWriter, r *http.Request) {
	tokenID, err := strconv.ParseInt(r.URL.Query().Get("tokenId"), 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid tokenId parameter", http.StatusBadRequest)
		return
	}

	var requester *uuid.UUID
	if cookie, err := r.Cookie("auth_token"); err == nil {
		if userIDStr, err := auth.AuthenticateJWT(cookie.Value); err == nil {
			if id, err := uuid.Parse(userIDStr); err == nil {
				requester = &id
			}
		}
	}

	candidates, err := s.selector.Select(r.Context(), tokenID, requester)
	if err != nil {
		s.logger.WithError(err).Error("failed to select candidates")
		http.Error(w, "failed to fetch steal candidates", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(candidates)
}
