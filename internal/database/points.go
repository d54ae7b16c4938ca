// internal/database/points.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/launchcast/stealgame/internal/models"
)

// startingPoints is the balance a lazily created entry begins with.
// Configured once at startup.
var startingPoints int64 = 100

// SetStartingPoints sets the lazy-creation balance. Called from main
// before the server accepts traffic.
func SetStartingPoints(v int64) { startingPoints = v }

// EnsureEntry creates the (round, user) points row with the starting
// balance if it does not exist, then returns it. Idempotent under
// concurrent callers via ON CONFLICT DO NOTHING.
func (s *Store) EnsureEntry(ctx context.Context, roundID int64, userID uuid.UUID) (*models.PointsEntry, error) {
	insQ := `
	INSERT INTO sg_player_points (round_id, user_id, points, is_eligible)
	VALUES ($1, $2, $3, true)
	ON CONFLICT (round_id, user_id) DO NOTHING
	`
	if _, err := s.pool.Exec(ctx, insQ, roundID, userID, startingPoints); err != nil {
		return nil, fmt.Errorf("failed to ensure points entry: %w", err)
	}
	return s.GetEntry(ctx, roundID, userID)
}

// GetEntry returns the points row, or nil when absent.
func (s *Store) GetEntry(ctx context.Context, roundID int64, userID uuid.UUID) (*models.PointsEntry, error) {
	q := `
	SELECT round_id, user_id, points, is_eligible
	FROM sg_player_points
	WHERE round_id=$1 AND user_id=$2
	`
	var e models.PointsEntry
	err := s.pool.QueryRow(ctx, q, roundID, userID).Scan(
		&e.RoundID, &e.UserID, &e.Points, &e.IsEligible,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ApplyDelta mutates the balance with a single atomic additive update
// and returns the new balance. Concurrent deltas to the same row
// serialize on the row lock; there is no client-side read-modify-write.
func (s *Store) ApplyDelta(ctx context.Context, roundID int64, userID uuid.UUID, delta int64) (int64, error) {
	q := `
	UPDATE sg_player_points
	SET points = points + $3
	WHERE round_id=$1 AND user_id=$2
	RETURNING points
	`
	var balance int64
	err := s.pool.QueryRow(ctx, q, roundID, userID, delta).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("no points entry for user %v in round %d", userID, roundID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to apply points delta: %w", err)
	}
	return balance, nil
}

// TotalPoints sums the round's balances; the share metric denominator.
func (s *Store) TotalPoints(ctx context.Context, roundID int64) (int64, error) {
	q := `SELECT COALESCE(SUM(points), 0) FROM sg_player_points WHERE round_id=$1`
	var total int64
	if err := s.pool.QueryRow(ctx, q, roundID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Leaderboard returns entries joined with users, highest balance first.
func (s *Store) Leaderboard(ctx context.Context, roundID int64, limit int) ([]models.LeaderboardRow, error) {
	q := `
	SELECT p.user_id, u.username, u.avatar_url, p.points
	FROM sg_player_points p
	JOIN users u ON u.id = p.user_id
	WHERE p.round_id=$1
	ORDER BY p.points DESC, p.user_id
	LIMIT $2
	`
	rows, err := s.pool.Query(ctx, q, roundID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LeaderboardRow
	rank := 1
	for rows.Next() {
		var row models.LeaderboardRow
		if err := rows.Scan(&row.UserID, &row.Username, &row.AvatarURL, &row.Points); err != nil {
			return nil, err
		}
		row.Rank = rank
		rank++
		out = append(out, row)
	}
	return out, rows.Err()
}

// Rank returns a user's 1-based position in the round by balance, or 0
// when the user has no entry.
func (s *Store) Rank(ctx context.Context, roundID int64, userID uuid.UUID) (int, error) {
	q := `
	SELECT rank FROM (
		SELECT user_id, RANK() OVER (ORDER BY points DESC) AS rank
		FROM sg_player_points
		WHERE round_id=$1
	) ranked
	WHERE user_id=$2
	`
	var rank int
	err := s.pool.QueryRow(ctx, q, roundID, userID).Scan(&rank)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rank, nil
}
