// internal/handlers/server.go
package handlers

import (
	"net/http"

	"github.com/launchcast/stealgame/internal/database"
	"github.com/launchcast/stealgame/internal/middleware"
	"github.com/launchcast/stealgame/internal/round"
	"github.com/launchcast/stealgame/internal/steal"
	"github.com/launchcast/stealgame/internal/webhook"
	"github.com/sirupsen/logrus"
)

// Server bundles the HTTP surface: the signed webhook plus the
// round/points read API consumed by the web frontend.
type Server struct {
	store     *database.Store
	rounds    *round.Manager
	selector  *steal.Selector
	processor *webhook.Processor
	logger    *logrus.Logger
}

func NewServer(store *database.Store, rounds *round.Manager, selector *steal.Selector, processor *webhook.Processor, logger *logrus.Logger) *Server {
	return &Server{
		store:     store,
		rounds:    rounds,
		selector:  selector,
		processor: processor,
		logger:    logger,
	}
}

// Routes builds the mux with request logging on every endpoint.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /webhook/steal", s.StealWebhookHandler)
	mux.HandleFunc("GET /steal/candidates", s.CandidatesHandler)
	mux.HandleFunc("GET /rounds/current", s.CurrentRoundHandler)
	mux.HandleFunc("GET /rounds/{id}/leaderboard", s.LeaderboardHandler)
	mux.HandleFunc("GET /rounds/{id}/rank", s.RankHandler)

	return middleware.LogMiddleware(s.logger)(mux)
}
