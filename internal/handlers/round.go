// internal/handlers/round.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/launchcast/stealgame/internal/round"
)

// CurrentRoundHandler gets-or-creates the round at the current boundary
// for a token.
func (s *Server) CurrentRoundHandler(w http.ResponseWriter, r *http.Request) {
	tokenID, err := strconv.ParseInt(r.URL.Query().Get("tokenId"), 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid tokenId parameter", http.StatusBadRequest)
		return
	}

	rd, err := s.rounds.GetOrCreate(r.Context(), tokenID)
	if err != nil {
		if errors.Is(err, round.ErrRoundCreation) {
			s.logger.WithError(err).Error("round creation failed")
		}
		http.Error(w, "failed to get or create round", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rd)
}

// LeaderboardHandler returns the round's entries ordered by balance.
func (s *Server) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	roundID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid round id", http.StatusBadRequest)
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	rows, err := s.store.Leaderboard(r.Context(), roundID, limit)
	if err != nil {
		s.logger.WithError(err).Error("leaderboard query failed")
		http.Error(w, "failed to fetch leaderboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

// RankHandler returns a user's position in the round.
func (s *Server) RankHandler(w http.ResponseWriter, r *http.Request) {
	roundID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid round id", http.StatusBadRequest)
		return
	}
	userID, err := uuid.Parse(r.URL.Query().Get("userId"))
	if err != nil {
		http.Error(w, "missing or invalid userId parameter", http.StatusBadRequest)
		return
	}

	rank, err := s.store.Rank(r.Context(), roundID, userID)
	if err != nil {
		s.logger.WithError(err).Error("rank query failed")
		http.Error(w, "failed to fetch rank", http.StatusInternalServerError)
		return
	}
	if rank == 0 {
		http.Error(w, "user has no entry in this round", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"rank": rank})
}
