// internal/steal/selector.go
package steal

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/launchcast/stealgame/internal/identity"
	"github.com/launchcast/stealgame/internal/models"
	"github.com/sirupsen/logrus"
)

// CandidateCount is the target size of a candidate list.
const CandidateCount = 3

// recentAttackWindow bounds the recent_attacker source lookback.
const recentAttackWindow = 24 * time.Hour

// RoundProvider gets-or-creates the round the candidates belong to.
type RoundProvider interface {
	GetOrCreate(ctx context.Context, tokenID int64) (*models.Round, error)
}

// SelectorPointsStore is the ledger surface the selector needs: lazy
// entry creation plus the round leaderboard.
type SelectorPointsStore interface {
	EnsureEntry(ctx context.Context, roundID int64, userID uuid.UUID) (*models.PointsEntry, error)
	Leaderboard(ctx context.Context, roundID int64, limit int) ([]models.LeaderboardRow, error)
}

// SelectorActionStore answers the recent_attacker query.
type SelectorActionStore interface {
	// RecentSuccessfulAttacker returns the most recent user who stole
	// from targetID in the round since the given time, excluding the
	// given ids, or uuid.Nil when none.
	RecentSuccessfulAttacker(ctx context.Context, roundID int64, targetID uuid.UUID, since time.Time, excluding []uuid.UUID) (uuid.UUID, error)
}

// SelectorUserStore resolves local user rows.
type SelectorUserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	RandomExcluding(ctx context.Context, excluding []uuid.UUID, limit int) ([]models.User, error)
}

// Selector builds a short opponent list from a prioritized source
// chain: top_creator, round_leader, recent_attacker, then random, with
// followee as the fallback for the two personalized sources. Sources
// that error or come up empty are skipped, never fatal.
type Selector struct {
	rounds   RoundProvider
	points   SelectorPointsStore
	actions  SelectorActionStore
	users    SelectorUserStore
	identity identity.Resolver
	logger   *logrus.Logger
	now      func() time.Time

	// randInt picks a uniform index in [0,n). Injected for tests.
	randInt func(n int) int
}

func NewSelector(rounds RoundProvider, points SelectorPointsStore, actions SelectorActionStore, users SelectorUserStore, id identity.Resolver, logger *logrus.Logger) *Selector {
	return &Selector{
		rounds:   rounds,
		points:   points,
		actions:  actions,
		users:    users,
		identity: id,
		logger:   logger,
		now:      time.Now,
		randInt:  rand.IntN,
	}
}

// Select returns up to CandidateCount opponents for the requester, each
// from a distinct source. A nil requester means an anonymous read: the
// personalized sources are skipped and the highest balances (padded
// with random users) are returned instead.
func (s *Selector) Select(ctx context.Context, tokenID int64, requester *uuid.UUID) ([]models.Candidate, error) {
	rd, err := s.rounds.GetOrCreate(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	if requester == nil {
		return s.selectAnonymous(ctx, rd.ID)
	}

	picked := make([]uuid.UUID, 0, CandidateCount)
	exclude := func() []uuid.UUID { return append([]uuid.UUID{*requester}, picked...) }
	candidates := make([]models.Candidate, 0, CandidateCount)

	add := func(userID uuid.UUID, source string) bool {
		if userID == uuid.Nil || userID == *requester {
			return false
		}
		for _, p := range picked {
			if p == userID {
				return false
			}
		}
		u, err := s.users.GetByID(ctx, userID)
		if err != nil || u == nil {
			s.logger.WithError(err).WithField("user", userID).Warn("candidate user lookup failed")
			return false
		}
		entry, err := s.points.EnsureEntry(ctx, rd.ID, userID)
		if err != nil {
			s.logger.WithError(err).WithField("user", userID).Warn("failed to ensure candidate points entry")
			return false
		}
		picked = append(picked, userID)
		candidates = append(candidates, models.Candidate{
			UserID:    u.ID,
			Username:  u.Username,
			AvatarURL: u.AvatarURL,
			Points:    entry.Points,
			Source:    source,
		})
		return true
	}

	// 1. A random winner from the external top-creators list.
	if fids, err := s.identity.TopCreators(ctx); err != nil {
		s.logger.WithError(err).Warn("top creators lookup failed")
	} else if len(fids) > 0 {
		fid := fids[s.randInt(len(fids))]
		if u, err := s.identity.ResolveOrCreate(ctx, fid); err != nil {
			s.logger.WithError(err).WithField("fid", fid).Warn("failed to resolve top creator")
		} else {
			add(u.ID, models.SourceTopCreator)
		}
	}

	// 2. The round's current leader, else a random followee.
	if leader := s.roundLeader(ctx, rd.ID, exclude()); leader != uuid.Nil {
		add(leader, models.SourceRoundLeader)
	} else if followee := s.randomFollowee(ctx, *requester); followee != uuid.Nil {
		add(followee, models.SourceFollowee)
	}

	// 3. Whoever stole from the requester most recently, else a followee.
	since := s.now().Add(-recentAttackWindow)
	if thief, err := s.actions.RecentSuccessfulAttacker(ctx, rd.ID, *requester, since, exclude()); err != nil {
		s.logger.WithError(err).Warn("recent attacker lookup failed")
	} else if thief != uuid.Nil {
		add(thief, models.SourceRecentAttacker)
	} else if followee := s.randomFollowee(ctx, *requester); followee != uuid.Nil {
		add(followee, models.SourceFollowee)
	}

	// 4. Last resort: any other user.
	if len(candidates) == 0 {
		if randoms, err := s.users.RandomExcluding(ctx, exclude(), 1); err != nil {
			s.logger.WithError(err).Warn("random candidate lookup failed")
		} else if len(randoms) > 0 {
			add(randoms[0].ID, models.SourceRandom)
		}
	}

	// The requester plays too; make sure they have a balance.
	if _, err := s.points.EnsureEntry(ctx, rd.ID, *requester); err != nil {
		s.logger.WithError(err).Warn("failed to ensure requester points entry")
	}

	return candidates, nil
}

// selectAnonymous returns the highest balances in the round, padded
// with random users when fewer than CandidateCount entries exist.
func (s *Selector) selectAnonymous(ctx context.Context, roundID int64) ([]models.Candidate, error) {
	candidates := make([]models.Candidate, 0, CandidateCount)
	seen := make([]uuid.UUID, 0, CandidateCount)

	rows, err := s.points.Leaderboard(ctx, roundID, CandidateCount)
	if err != nil {
		s.logger.WithError(err).Warn("anonymous leaderboard lookup failed")
	}
	for _, row := range rows {
		candidates = append(candidates, models.Candidate{
			UserID:    row.UserID,
			Username:  row.Username,
			AvatarURL: row.AvatarURL,
			Points:    row.Points,
			Source:    models.SourceRandom,
		})
		seen = append(seen, row.UserID)
	}

	if len(candidates) < CandidateCount {
		randoms, err := s.users.RandomExcluding(ctx, seen, CandidateCount-len(candidates))
		if err != nil {
			s.logger.WithError(err).Warn("anonymous random lookup failed")
			return candidates, nil
		}
		for _, u := range randoms {
			entry, err := s.points.EnsureEntry(ctx, roundID, u.ID)
			if err != nil {
				s.logger.WithError(err).WithField("user", u.ID).Warn("failed to ensure points entry")
				continue
			}
			candidates = append(candidates, models.Candidate{
				UserID:    u.ID,
				Username:  u.Username,
				AvatarURL: u.AvatarURL,
				Points:    entry.Points,
				Source:    models.SourceRandom,
			})
		}
	}
	return candidates, nil
}

func (s *Selector) roundLeader(ctx context.Context, roundID int64, excluding []uuid.UUID) uuid.UUID {
	rows, err := s.points.Leaderboard(ctx, roundID, CandidateCount+len(excluding))
	if err != nil {
		s.logger.WithError(err).Warn("leaderboard lookup failed")
		return uuid.Nil
	}
	for _, row := range rows {
		skip := false
		for _, ex := range excluding {
			if row.UserID == ex {
				skip = true
				break
			}
		}
		if !skip {
			return row.UserID
		}
	}
	return uuid.Nil
}

// randomFollowee picks a random account the requester follows and
// resolves it to a local user, creating one on demand.
func (s *Selector) randomFollowee(ctx context.Context, requester uuid.UUID) uuid.UUID {
	u, err := s.users.GetByID(ctx, requester)
	if err != nil || u == nil || u.FarcasterID == 0 {
		return uuid.Nil
	}
	fids, err := s.identity.Followees(ctx, u.FarcasterID, 100)
	if err != nil {
		s.logger.WithError(err).Warn("followee lookup failed")
		return uuid.Nil
	}
	if len(fids) == 0 {
		return uuid.Nil
	}
	followee, err := s.identity.ResolveOrCreate(ctx, fids[s.randInt(len(fids))])
	if err != nil {
		s.logger.WithError(err).Warn("failed to resolve followee")
		return uuid.Nil
	}
	return followee.ID
}
