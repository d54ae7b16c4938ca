// internal/database/action.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/launchcast/stealgame/internal/models"
)

// Exists reports whether a record with the replay key
// (attacker, target, cast_ref, round) already exists.
func (s *Store) Exists(ctx context.Context, roundID int64, attackerID, targetID uuid.UUID, castRef string) (bool, error) {
	q := `
	SELECT EXISTS (
		SELECT 1 FROM sg_player_actions
		WHERE attacker_id=$1 AND target_id=$2 AND cast_ref=$3 AND round_id=$4
	)
	`
	var exists bool
	if err := s.pool.QueryRow(ctx, q, attackerID, targetID, castRef, roundID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// InsertAction appends an action record. The unique index on the replay key
// backstops the pre-check in the resolver.
func (s *Store) InsertAction(ctx context.Context, rec *models.ActionRecord) error {
	q := `
	INSERT INTO sg_player_actions (id, round_id, attacker_id, target_id, amount, successful, cast_ref)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at
	`
	err := s.pool.QueryRow(ctx, q,
		rec.ID, rec.RoundID, rec.AttackerID, rec.TargetID,
		rec.Amount, rec.Successful, rec.CastRef,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert action record: %w", err)
	}
	return nil
}

// AttachReply back-fills the published reply reference on every record
// created for the given inbound cast.
func (s *Store) AttachReply(ctx context.Context, castRef, replyRef string) error {
	q := `
	UPDATE sg_player_actions
	SET reply_ref=$2
	WHERE cast_ref=$1 AND reply_ref IS NULL
	`
	if _, err := s.pool.Exec(ctx, q, castRef, replyRef); err != nil {
		return fmt.Errorf("failed to attach reply ref: %w", err)
	}
	return nil
}

// RecentSuccessfulAttacker returns the most recent user who stole from
// targetID in the round since the given time, excluding the given ids.
// Returns uuid.Nil when nobody qualifies.
func (s *Store) RecentSuccessfulAttacker(ctx context.Context, roundID int64, targetID uuid.UUID, since time.Time, excluding []uuid.UUID) (uuid.UUID, error) {
	q := `
	SELECT attacker_id
	FROM sg_player_actions
	WHERE round_id=$1 AND target_id=$2 AND successful=true
	  AND created_at >= $3
	  AND NOT (attacker_id = ANY($4))
	ORDER BY created_at DESC
	LIMIT 1
	`
	if excluding == nil {
		excluding = []uuid.UUID{}
	}
	var attackerID uuid.UUID
	err := s.pool.QueryRow(ctx, q, roundID, targetID, since, excluding).Scan(&attackerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	return attackerID, nil
}

// ActionsForCast returns the records created for one inbound cast.
func (s *Store) ActionsForCast(ctx context.Context, castRef string) ([]models.ActionRecord, error) {
	q := `
	SELECT id, round_id, attacker_id, target_id, amount, successful, cast_ref, reply_ref, created_at
	FROM sg_player_actions
	WHERE cast_ref=$1
	ORDER BY created_at
	`
	rows, err := s.pool.Query(ctx, q, castRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ActionRecord
	for rows.Next() {
		var rec models.ActionRecord
		if err := rows.Scan(&rec.ID, &rec.RoundID, &rec.AttackerID, &rec.TargetID,
			&rec.Amount, &rec.Successful, &rec.CastRef, &rec.ReplyRef, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
