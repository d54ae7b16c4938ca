package models

import "github.com/google/uuid"

// Candidate sources, in selection priority order.
const (
	SourceTopCreator     = "top_creator"
	SourceRoundLeader    = "round_leader"
	SourceRecentAttacker = "recent_attacker"
	SourceFollowee       = "followee"
	SourceRandom         = "random"
)

// Candidate is an opponent suggestion. It is ephemeral: nothing is
// persisted beyond ensuring the candidate's PointsEntry exists.
type Candidate struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	Points    int64     `json:"points"`
	Source    string    `json:"source"`
}
