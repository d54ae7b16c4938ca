package models

import "github.com/google/uuid"

// PointsEntry is a player's balance within one round. Rows are created
// lazily with the configured starting balance and only ever mutated by
// additive deltas; they are never deleted while the round exists.
type PointsEntry struct {
	RoundID    int64     `json:"round_id"`
	UserID     uuid.UUID `json:"user_id"`
	Points     int64     `json:"points"`
	IsEligible bool      `json:"is_eligible"`
}
