// internal/round/manager.go
package round

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/launchcast/stealgame/internal/models"
)

// ErrRoundCreation wraps store failures that are not the benign
// duplicate-insert race.
var ErrRoundCreation = errors.New("failed to create round")

// Store is the persistence surface the manager needs. The pgx
// implementation lives in internal/database.
type Store interface {
	// FindActive returns the ACTIVE round for (tokenID, endTime), or
	// (nil, nil) when none exists.
	FindActive(ctx context.Context, tokenID int64, endTime time.Time) (*models.Round, error)
	// Insert creates an ACTIVE round. It returns errDuplicate=true when
	// the partial unique index rejected a concurrent duplicate.
	Insert(ctx context.Context, tokenID int64, endTime time.Time) (*models.Round, bool, error)
	// LatestActive returns the most recent ACTIVE round for a token
	// regardless of boundary, or (nil, nil).
	LatestActive(ctx context.Context, tokenID int64) (*models.Round, error)
}

// Manager lazily gets-or-creates the round at the current boundary.
type Manager struct {
	store  Store
	cutoff Cutoff
	now    func() time.Time
}

func NewManager(store Store, cutoff Cutoff) *Manager {
	return &Manager{store: store, cutoff: cutoff, now: time.Now}
}

// GetOrCreate converges concurrent callers onto a single logical round
// per (token, boundary): insert, and on a duplicate-insert conflict
// refetch the row the winner created.
func (m *Manager) GetOrCreate(ctx context.Context, tokenID int64) (*models.Round, error) {
	boundary := NextBoundary(m.now(), m.cutoff)

	r, err := m.store.FindActive(ctx, tokenID, boundary)
	if err != nil {
		return nil, fmt.Errorf("failed to look up round: %w", err)
	}
	if r != nil {
		return r, nil
	}

	r, duplicate, err := m.store.Insert(ctx, tokenID, boundary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoundCreation, err)
	}
	if !duplicate {
		return r, nil
	}

	// Lost the insert race; the winner's row must exist now.
	r, err = m.store.FindActive(ctx, tokenID, boundary)
	if err != nil {
		return nil, fmt.Errorf("failed to refetch round after conflict: %w", err)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: conflicting round vanished", ErrRoundCreation)
	}
	return r, nil
}

// LatestActive exposes the latest ACTIVE round lookup used by the
// webhook processor, which resolves rounds by token rather than by
// computing a boundary.
func (m *Manager) LatestActive(ctx context.Context, tokenID int64) (*models.Round, error) {
	return m.store.LatestActive(ctx, tokenID)
}
