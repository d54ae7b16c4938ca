// internal/database/user.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/launchcast/stealgame/internal/models"
)

const userColumns = `id, username, display_name, avatar_url, COALESCE(farcaster_id, 0), status`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL, &u.FarcasterID, &u.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user row, minting an id if absent.
func (s *Store) Create(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Status == "" {
		u.Status = models.UserPremade
	}
	q := `
	INSERT INTO users (id, username, display_name, avatar_url, farcaster_id, status)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.pool.Exec(ctx, q,
		u.ID, u.Username, u.DisplayName, u.AvatarURL, u.FarcasterID, u.Status,
	); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username)=LOWER($1)`
	return scanUser(s.pool.QueryRow(ctx, q, username))
}

func (s *Store) GetByFarcasterID(ctx context.Context, fid int64) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE farcaster_id=$1`
	return scanUser(s.pool.QueryRow(ctx, q, fid))
}

// SetStatus flips a user's lifecycle status.
func (s *Store) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	q := `UPDATE users SET status=$2 WHERE id=$1`
	ct, err := s.pool.Exec(ctx, q, id, status)
	if err != nil {
		return fmt.Errorf("failed to set user status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("no user %v", id)
	}
	return nil
}

// RandomExcluding returns up to limit user rows excluding the given ids.
func (s *Store) RandomExcluding(ctx context.Context, excluding []uuid.UUID, limit int) ([]models.User, error) {
	if excluding == nil {
		excluding = []uuid.UUID{}
	}
	q := `
	SELECT ` + userColumns + `
	FROM users
	WHERE NOT (id = ANY($1))
	ORDER BY random()
	LIMIT $2
	`
	rows, err := s.pool.Query(ctx, q, excluding, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL, &u.FarcasterID, &u.Status); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
