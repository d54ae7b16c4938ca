package models

import "github.com/google/uuid"

// LeaderboardRow is a points entry joined with its user, ordered by
// balance. Served by the read API and consumed by the selector.
type LeaderboardRow struct {
	Rank      int       `json:"rank"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	Points    int64     `json:"points"`
}
