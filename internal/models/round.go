package models

import "time"

// Round statuses. A round is ACTIVE from creation until an external
// scheduler closes it after its end time passes.
const (
	RoundActive = "ACTIVE"
	RoundClosed = "CLOSED"
)

// Round is one scoring window for a token. At most one ACTIVE round
// exists per (token, end_time); the partial unique index on sg_rounds
// enforces it.
type Round struct {
	ID        int64     `json:"id"`
	TokenID   int64     `json:"token_id"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
