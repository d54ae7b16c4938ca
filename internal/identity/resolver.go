// internal/identity/resolver.go
package identity

import (
	"context"

	"github.com/launchcast/stealgame/internal/models"
)

// Resolver maps external Farcaster ids onto local user rows. The
// engine only calls this surface; the identity graph, profile fetching,
// and avatar re-hosting all live behind it.
type Resolver interface {
	// ResolveOrCreate returns the local user for an external id,
	// creating the row (profile fields included) when it is first seen.
	ResolveOrCreate(ctx context.Context, fid int64) (*models.User, error)

	// Followees lists external ids the given account follows.
	Followees(ctx context.Context, fid int64, limit int) ([]int64, error)

	// TopCreators lists external ids from the platform's top-creators
	// feed.
	TopCreators(ctx context.Context) ([]int64, error)
}
