package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/launchcast/stealgame/internal/models"
	"github.com/launchcast/stealgame/internal/steal"
	"github.com/launchcast/stealgame/internal/webhook"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testSecret = "webhook-secret"

func sign(body []byte) string {
	mac := hmac.New(sha512.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type stubUsers struct {
	byName map[string]*models.User
}

func (s *stubUsers) GetByUsername(_ context.Context, name string) (*models.User, error) {
	return s.byName[name], nil
}

func (s *stubUsers) SetStatus(_ context.Context, _ uuid.UUID, _ string) error { return nil }

type stubReplies struct{}

func (stubReplies) AttachReply(_ context.Context, _, _ string) error { return nil }

type stubRounds struct {
	round *models.Round
}

func (s *stubRounds) LatestActive(_ context.Context, _ int64) (*models.Round, error) {
	return s.round, nil
}

type stubResolver struct {
	resolution *steal.Resolution
}

func (s *stubResolver) Resolve(_ context.Context, _ int64, _ uuid.UUID, _ []uuid.UUID, _ string) (*steal.Resolution, error) {
	return s.resolution, nil
}

type stubIdentity struct {
	user *models.User
}

func (s *stubIdentity) ResolveOrCreate(_ context.Context, _ int64) (*models.User, error) {
	return s.user, nil
}

func (s *stubIdentity) Followees(_ context.Context, _ int64, _ int) ([]int64, error) {
	return nil, nil
}

func (s *stubIdentity) TopCreators(_ context.Context) ([]int64, error) { return nil, nil }

type stubPublisher struct{}

func (stubPublisher) PublishReply(_ context.Context, _, _, _ string) (string, error) {
	return "0xreply", nil
}

func testServer() *Server {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	attacker := &models.User{ID: uuid.New(), Username: "attacker", FarcasterID: 1, Status: models.UserActive}
	target := &models.User{ID: uuid.New(), Username: "victim", FarcasterID: 2, Status: models.UserActive}

	processor := webhook.NewProcessor(
		testSecret,
		&stubUsers{byName: map[string]*models.User{"victim": target}},
		stubReplies{},
		&stubRounds{round: &models.Round{ID: 9, TokenID: 7, Status: models.RoundActive}},
		&stubResolver{resolution: &steal.Resolution{
			Outcomes:        []steal.Outcome{{TargetID: target.ID, Successful: true, Amount: 100}},
			AttackerBalance: 1100,
		}},
		&stubIdentity{user: attacker},
		stubPublisher{},
		logger,
	)
	return NewServer(nil, nil, nil, processor, logger)
}

func stealBody(text string) []byte {
	p := webhook.Payload{Type: "cast.created"}
	p.Data.Hash = "0xcast"
	p.Data.Text = text
	p.Data.Author.FID = 1
	p.Data.Embeds = []webhook.PayloadEmbed{{URL: "https://launchcast.xyz/token/7/steal"}}
	body, _ := json.Marshal(p)
	return body
}

func TestStealWebhookHandlerHappyPath(t *testing.T) {
	s := testServer()
	body := stealBody(webhook.Marker + "steal from victim on @launchtoken")

	req := httptest.NewRequest(http.MethodPost, "/webhook/steal", bytes.NewReader(body))
	req.Header.Set(webhook.SignatureHeader, sign(body))
	rec := httptest.NewRecorder()

	s.StealWebhookHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res steal.Resolution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.EqualValues(t, 1100, res.AttackerBalance)
	require.Len(t, res.Outcomes, 1)
}

func TestStealWebhookHandlerBadSignature(t *testing.T) {
	s := testServer()
	body := stealBody(webhook.Marker + "steal from victim on @launchtoken")

	req := httptest.NewRequest(http.MethodPost, "/webhook/steal", bytes.NewReader(body))
	req.Header.Set(webhook.SignatureHeader, "deadbeef")
	rec := httptest.NewRecorder()

	s.StealWebhookHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStealWebhookHandlerUnknownTarget(t *testing.T) {
	s := testServer()
	body := stealBody(webhook.Marker + "steal from nobody on @launchtoken")

	req := httptest.NewRequest(http.MethodPost, "/webhook/steal", bytes.NewReader(body))
	req.Header.Set(webhook.SignatureHeader, sign(body))
	rec := httptest.NewRecorder()

	s.StealWebhookHandler(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStealWebhookHandlerIgnoresPlainCast(t *testing.T) {
	s := testServer()
	body := stealBody("steal from victim on @launchtoken")

	req := httptest.NewRequest(http.MethodPost, "/webhook/steal", bytes.NewReader(body))
	req.Header.Set(webhook.SignatureHeader, sign(body))
	rec := httptest.NewRecorder()

	s.StealWebhookHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCandidatesHandlerRequiresTokenID(t *testing.T) {
	s := testServer()

	req := httptest.NewRequest(http.MethodGet, "/steal/candidates", nil)
	rec := httptest.NewRecorder()

	s.CandidatesHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCurrentRoundHandlerRequiresTokenID(t *testing.T) {
	s := testServer()

	req := httptest.NewRequest(http.MethodGet, "/rounds/current?tokenId=abc", nil)
	rec := httptest.NewRecorder()

	s.CurrentRoundHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRankHandlerRejectsBadIDs(t *testing.T) {
	s := testServer()

	req := httptest.NewRequest(http.MethodGet, "/rounds/abc/rank?userId=1", nil)
	req.SetPathValue("id", "abc")
	rec := httptest.NewRecorder()
	s.RankHandler(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/rounds/9/rank?userId=not-a-uuid", nil)
	req.SetPathValue("id", "9")
	rec = httptest.NewRecorder()
	s.RankHandler(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
