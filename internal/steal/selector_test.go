package steal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/launchcast/stealgame/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeRoundProvider struct {
	round models.Round
}

func (f *fakeRoundProvider) GetOrCreate(_ context.Context, tokenID int64) (*models.Round, error) {
	r := f.round
	r.TokenID = tokenID
	return &r, nil
}

type fakeSelectorPoints struct {
	leaderboard []models.LeaderboardRow
	ensured     map[uuid.UUID]bool
}

func newFakeSelectorPoints() *fakeSelectorPoints {
	return &fakeSelectorPoints{ensured: make(map[uuid.UUID]bool)}
}

func (f *fakeSelectorPoints) EnsureEntry(_ context.Context, roundID int64, userID uuid.UUID) (*models.PointsEntry, error) {
	f.ensured[userID] = true
	return &models.PointsEntry{RoundID: roundID, UserID: userID, Points: 100, IsEligible: true}, nil
}

func (f *fakeSelectorPoints) Leaderboard(_ context.Context, _ int64, limit int) ([]models.LeaderboardRow, error) {
	if limit > len(f.leaderboard) {
		limit = len(f.leaderboard)
	}
	return f.leaderboard[:limit], nil
}

type fakeSelectorActions struct {
	recentAttacker uuid.UUID
}

func (f *fakeSelectorActions) RecentSuccessfulAttacker(_ context.Context, _ int64, _ uuid.UUID, _ time.Time, excluding []uuid.UUID) (uuid.UUID, error) {
	for _, ex := range excluding {
		if ex == f.recentAttacker {
			return uuid.Nil, nil
		}
	}
	return f.recentAttacker, nil
}

type fakeSelectorUsers struct {
	users   map[uuid.UUID]*models.User
	randoms []models.User
}

func newFakeSelectorUsers() *fakeSelectorUsers {
	return &fakeSelectorUsers{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeSelectorUsers) add(u *models.User) { f.users[u.ID] = u }

func (f *fakeSelectorUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeSelectorUsers) RandomExcluding(_ context.Context, excluding []uuid.UUID, limit int) ([]models.User, error) {
	var out []models.User
	for _, u := range f.randoms {
		excluded := false
		for _, ex := range excluding {
			if u.ID == ex {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, u)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeIdentity struct {
	topCreators []int64
	followees   []int64
	byFID       map[int64]*models.User
	createErr   error
}

func (f *fakeIdentity) ResolveOrCreate(_ context.Context, fid int64) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u, ok := f.byFID[fid]
	if !ok {
		return nil, errors.New("unknown fid")
	}
	return u, nil
}

func (f *fakeIdentity) Followees(_ context.Context, _ int64, _ int) ([]int64, error) {
	return f.followees, nil
}

func (f *fakeIdentity) TopCreators(_ context.Context) ([]int64, error) {
	return f.topCreators, nil
}

func newUser(username string, fid int64) *models.User {
	return &models.User{ID: uuid.New(), Username: username, FarcasterID: fid, Status: models.UserActive}
}

func TestSelectDistinctSourcesInOrder(t *testing.T) {
	requester := newUser("me", 1)
	creator := newUser("creator", 10)
	leader := newUser("leader", 20)
	thief := newUser("thief", 30)

	users := newFakeSelectorUsers()
	for _, u := range []*models.User{requester, creator, leader, thief} {
		users.add(u)
	}

	points := newFakeSelectorPoints()
	points.leaderboard = []models.LeaderboardRow{
		{Rank: 1, UserID: leader.ID, Username: "leader", Points: 900},
	}

	id := &fakeIdentity{
		topCreators: []int64{10},
		byFID:       map[int64]*models.User{10: creator},
	}

	s := NewSelector(&fakeRoundProvider{round: models.Round{ID: 1, Status: models.RoundActive}},
		points, &fakeSelectorActions{recentAttacker: thief.ID}, users, id, quietLogger())
	s.randInt = func(n int) int { return 0 }

	candidates, err := s.Select(context.Background(), 5, &requester.ID)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	require.Equal(t, models.SourceTopCreator, candidates[0].Source)
	require.Equal(t, creator.ID, candidates[0].UserID)
	require.Equal(t, models.SourceRoundLeader, candidates[1].Source)
	require.Equal(t, leader.ID, candidates[1].UserID)
	require.Equal(t, models.SourceRecentAttacker, candidates[2].Source)
	require.Equal(t, thief.ID, candidates[2].UserID)

	// Every candidate and the requester have a round balance.
	for _, u := range []uuid.UUID{creator.ID, leader.ID, thief.ID, requester.ID} {
		require.True(t, points.ensured[u], "expected EnsureEntry for %v", u)
	}
}

func TestSelectNeverPicksRequesterOrDuplicates(t *testing.T) {
	requester := newUser("me", 1)
	other := newUser("other", 10)

	users := newFakeSelectorUsers()
	users.add(requester)
	users.add(other)

	points := newFakeSelectorPoints()
	// Requester leads the board; the leader source must skip them.
	points.leaderboard = []models.LeaderboardRow{
		{Rank: 1, UserID: requester.ID, Username: "me", Points: 900},
		{Rank: 2, UserID: other.ID, Username: "other", Points: 500},
	}

	id := &fakeIdentity{
		topCreators: []int64{10},
		byFID:       map[int64]*models.User{10: other},
	}

	s := NewSelector(&fakeRoundProvider{round: models.Round{ID: 1, Status: models.RoundActive}},
		points, &fakeSelectorActions{recentAttacker: other.ID}, users, id, quietLogger())
	s.randInt = func(n int) int { return 0 }

	candidates, err := s.Select(context.Background(), 5, &requester.ID)
	require.NoError(t, err)
	// other qualifies via top_creator only; leader and recent_attacker
	// would duplicate it and the requester is never eligible.
	require.Len(t, candidates, 1)
	require.Equal(t, other.ID, candidates[0].UserID)
}

func TestSelectFolloweeFallback(t *testing.T) {
	requester := newUser("me", 1)
	followee := newUser("friend", 40)

	users := newFakeSelectorUsers()
	users.add(requester)
	users.add(followee)

	id := &fakeIdentity{
		followees: []int64{40},
		byFID:     map[int64]*models.User{40: followee},
	}

	s := NewSelector(&fakeRoundProvider{round: models.Round{ID: 1, Status: models.RoundActive}},
		newFakeSelectorPoints(), &fakeSelectorActions{}, users, id, quietLogger())
	s.randInt = func(n int) int { return 0 }

	candidates, err := s.Select(context.Background(), 5, &requester.ID)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	require.Equal(t, models.SourceFollowee, candidates[0].Source)
	require.Equal(t, followee.ID, candidates[0].UserID)
}

func TestSelectRandomLastResort(t *testing.T) {
	requester := newUser("me", 1)
	stranger := newUser("stranger", 0)

	users := newFakeSelectorUsers()
	users.add(requester)
	users.add(stranger)
	users.randoms = []models.User{*stranger}

	id := &fakeIdentity{createErr: errors.New("api down")}

	s := NewSelector(&fakeRoundProvider{round: models.Round{ID: 1, Status: models.RoundActive}},
		newFakeSelectorPoints(), &fakeSelectorActions{}, users, id, quietLogger())
	s.randInt = func(n int) int { return 0 }

	candidates, err := s.Select(context.Background(), 5, &requester.ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, models.SourceRandom, candidates[0].Source)
	require.Equal(t, stranger.ID, candidates[0].UserID)
}

func TestSelectAnonymousTopBalances(t *testing.T) {
	a, b := newUser("a", 1), newUser("b", 2)
	filler := newUser("filler", 3)

	users := newFakeSelectorUsers()
	for _, u := range []*models.User{a, b, filler} {
		users.add(u)
	}
	users.randoms = []models.User{*filler}

	points := newFakeSelectorPoints()
	points.leaderboard = []models.LeaderboardRow{
		{Rank: 1, UserID: a.ID, Username: "a", Points: 900},
		{Rank: 2, UserID: b.ID, Username: "b", Points: 400},
	}

	s := NewSelector(&fakeRoundProvider{round: models.Round{ID: 1, Status: models.RoundActive}},
		points, &fakeSelectorActions{}, users, &fakeIdentity{}, quietLogger())

	candidates, err := s.Select(context.Background(), 5, nil)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	require.Equal(t, a.ID, candidates[0].UserID)
	require.Equal(t, b.ID, candidates[1].UserID)
	require.Equal(t, filler.ID, candidates[2].UserID)
}
