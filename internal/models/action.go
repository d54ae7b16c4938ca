package models

import (
	"time"

	"github.com/google/uuid"
)

// ActionRecord is the append-only record of one resolved steal attempt.
// (attacker_id, target_id, cast_ref, round_id) is unique and serves as
// the replay-protection key; the only mutation ever applied is
// attaching ReplyRef after the outbound reply is published.
type ActionRecord struct {
	ID         uuid.UUID `json:"id"`
	RoundID    int64     `json:"round_id"`
	AttackerID uuid.UUID `json:"attacker_id"`
	TargetID   uuid.UUID `json:"target_id"`
	Amount     int64     `json:"amount"`
	Successful bool      `json:"successful"`
	CastRef    string    `json:"cast_ref"`
	ReplyRef   *string   `json:"reply_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
