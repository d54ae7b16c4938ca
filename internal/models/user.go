package models

import "github.com/google/uuid"

// User statuses. PREMADE rows are created on demand when an external id
// is first seen; the row flips to ACTIVE the first time its owner sends
// a command.
const (
	UserPremade = "PREMADE"
	UserActive  = "ACTIVE"
)

type User struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	FarcasterID int64     `json:"farcaster_id"`
	Status      string    `json:"status"`
}
