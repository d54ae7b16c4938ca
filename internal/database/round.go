// internal/database/round.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/launchcast/stealgame/internal/models"
)

// uniqueViolation is the Postgres error code raised by the partial
// unique index on (token_id, end_time) WHERE status='ACTIVE'.
const uniqueViolation = "23505"

// FindActive returns the ACTIVE round for (tokenID, endTime), or nil.
func (s *Store) FindActive(ctx context.Context, tokenID int64, endTime time.Time) (*models.Round, error) {
	q := `
	SELECT id, token_id, end_time, status, created_at
	FROM sg_rounds
	WHERE token_id=$1 AND end_time=$2 AND status='ACTIVE'
	`
	var r models.Round
	err := s.pool.QueryRow(ctx, q, tokenID, endTime).Scan(
		&r.ID, &r.TokenID, &r.EndTime, &r.Status, &r.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Insert creates an ACTIVE round. The second return is true when the
// unique index rejected a concurrent duplicate; callers refetch then.
func (s *Store) Insert(ctx context.Context, tokenID int64, endTime time.Time) (*models.Round, bool, error) {
	q := `
	INSERT INTO sg_rounds (token_id, end_time, status)
	VALUES ($1, $2, 'ACTIVE')
	RETURNING id, token_id, end_time, status, created_at
	`
	var r models.Round
	err := s.pool.QueryRow(ctx, q, tokenID, endTime).Scan(
		&r.ID, &r.TokenID, &r.EndTime, &r.Status, &r.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("failed to insert round: %w", err)
	}
	return &r, false, nil
}

// LatestActive returns the most recent ACTIVE round for a token, or nil.
func (s *Store) LatestActive(ctx context.Context, tokenID int64) (*models.Round, error) {
	q := `
	SELECT id, token_id, end_time, status, created_at
	FROM sg_rounds
	WHERE token_id=$1 AND status='ACTIVE'
	ORDER BY end_time DESC
	LIMIT 1
	`
	var r models.Round
	err := s.pool.QueryRow(ctx, q, tokenID).Scan(
		&r.ID, &r.TokenID, &r.EndTime, &r.Status, &r.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRound looks a round up by id, or nil.
func (s *Store) GetRound(ctx context.Context, id int64) (*models.Round, error) {
	q := `
	SELECT id, token_id, end_time, status, created_at
	FROM sg_rounds
	WHERE id=$1
	`
	var r models.Round
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&r.ID, &r.TokenID, &r.EndTime, &r.Status, &r.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
